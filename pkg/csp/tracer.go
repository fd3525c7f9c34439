package csp

import (
	"fmt"
	"io"
)

type EventKind int

const (
	AssignEvent EventKind = iota
	RejectEvent
	BacktrackEvent
	SolutionEvent
)

func (kind EventKind) String() string {
	switch kind {
	case AssignEvent:
		return "assign"
	case RejectEvent:
		return "reject"
	case BacktrackEvent:
		return "backtrack"
	case SolutionEvent:
		return "solution"
	}
	return "unknown"
}

// Event describes one step of the search
type Event struct {
	Kind     EventKind
	Variable Variable
	Value    int // -1 for backtrack events
	Depth    int
}

// Tracer observes the search. Trace is called synchronously from the solving goroutine.
type Tracer interface {
	Trace(event Event)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Event) {}

// LoggingTracer writes one line per event, naming variables through Problem when set
type LoggingTracer struct {
	Writer  io.Writer
	Problem *Problem
}

func (tracer LoggingTracer) Trace(event Event) {
	name := fmt.Sprint(event.Variable)
	if tracer.Problem != nil {
		name = tracer.Problem.Name(event.Variable)
	}
	if event.Kind == BacktrackEvent {
		fmt.Fprintf(tracer.Writer, "%*s%v %v\n", event.Depth*2, "", event.Kind, name)
		return
	}
	fmt.Fprintf(tracer.Writer, "%*s%v %v = %v\n", event.Depth*2, "", event.Kind, name, event.Value)
}

// CountingTracer tallies events per kind
type CountingTracer struct {
	Counts map[EventKind]int
}

func NewCountingTracer() *CountingTracer {
	return &CountingTracer{Counts: make(map[EventKind]int)}
}

func (tracer *CountingTracer) Trace(event Event) {
	tracer.Counts[event.Kind]++
}
