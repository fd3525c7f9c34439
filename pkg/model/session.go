package model

import "fmt"

type SessionKind int

const (
	Lecture SessionKind = iota
	Tutorial
	Practical
)

func (kind SessionKind) String() string {
	switch kind {
	case Lecture:
		return "lecture"
	case Tutorial:
		return "tutorial"
	case Practical:
		return "practical"
	}
	return "unknown"
}

// Session is one weekly meeting of a course
type Session struct {
	Course string
	Kind   SessionKind
}

func (session Session) String() string {
	return fmt.Sprintf("%v_%v", session.Course, session.Kind)
}

// Kinds returns the session kinds a course holds each week
func (course Course) Kinds() []SessionKind {
	if course.HasPractical {
		return []SessionKind{Lecture, Tutorial, Practical}
	}
	return []SessionKind{Lecture, Tutorial}
}

func (course Course) Sessions() []Session {
	sessions := make([]Session, 0, 3)
	for _, kind := range course.Kinds() {
		sessions = append(sessions, Session{Course: course.Name, Kind: kind})
	}
	return sessions
}
