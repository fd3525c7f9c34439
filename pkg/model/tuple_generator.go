package model

const unassignedValue = -1

type tupleGenerator interface {
	// Returns every tuple (one value per domain) accepted by all the constraints.
	// All the constraints must take into account that if the value of tuple[i] is unassignedValue then the tuple is not ready to be evaluated if this evaluation involves tuple[i]
	//
	// Example:
	//
	//	generator := newTupleGenerator([][]int{{0, 1, 2}, {0, 1, 2}})
	//
	//	tuples := generator.ConstrainedTuples([]func(tuple []int) bool{
	//		func(tuple []int) bool {
	//			// Verify "tuple[1] == unassignedValue", since the predicate "tuple[1] == 1" relies in this index
	//			return tuple[1] == unassignedValue || tuple[1] == 1
	//		},
	//	})
	ConstrainedTuples(constraints []func(tuple []int) bool) [][]int
}

func newTupleGenerator(domains [][]int) tupleGenerator {
	return &tupleGeneratorImplementation{domains: domains}
}

type tupleGeneratorImplementation struct {
	domains [][]int
}

func (generator *tupleGeneratorImplementation) ConstrainedTuples(constraints []func(tuple []int) bool) [][]int {
	tuples := make([][]int, 0)
	tuple := make([]int, len(generator.domains))
	for i := range tuple {
		tuple[i] = unassignedValue
	}
	generator.constrainedTuples(constraints, 0, tuple, &tuples)
	return tuples
}

func (generator *tupleGeneratorImplementation) constrainedTuples(
	constraints []func(tuple []int) bool,
	currentDomain int,
	tuple []int,
	tuples *[][]int) {

	if currentDomain >= len(generator.domains) {
		tupleCopy := make([]int, len(tuple))
		copy(tupleCopy, tuple)
		*tuples = append(*tuples, tupleCopy)
		return
	}

	for _, value := range generator.domains[currentDomain] {
		tuple[currentDomain] = value
		constraintViolated := false
		for _, constraint := range constraints {
			if !constraint(tuple) {
				constraintViolated = true
				break
			}
		}

		if constraintViolated {
			continue
		}

		generator.constrainedTuples(constraints, currentDomain+1, tuple, tuples)
	}

	tuple[currentDomain] = unassignedValue
}
