package model

// indexer interface is design to give a unique index to a combination of scheduling variable's attributes and vice versa
type indexer interface {
	// Returns a unique index to a combination of scheduling variable's attributes
	Index(session, slot uint64) uint64
	// Returns a combination of scheduling variable's attributes from a unique index
	Attributes(index uint64) (session uint64, slot uint64)
}

func newIndexer(sessions, slots uint64) indexer {
	return &indexerImplementation{
		sessions: sessions,
		slots:    slots,
	}
}

type indexerImplementation struct {
	sessions uint64
	slots    uint64
}

// Index is one-based since zero terminates DIMACS clauses
func (indexer *indexerImplementation) Index(session, slot uint64) uint64 {
	return slot + indexer.slots*session + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (session, slot uint64) {
	index = index - 1
	slot = index % indexer.slots
	session = index / indexer.slots
	return session, slot
}
