package core

// Responder classifies how a subject answers a method name before injection.
type Responder int

// Responder values.
const (
	// Absent means the subject does not respond to the name at all.
	Absent Responder = iota
	// Deferred means the subject claims to respond, but has no concrete method yet.
	Deferred
	// Implemented means the subject has a concrete method for the name right now.
	Implemented
)

func (r Responder) String() string {
	switch r {
	case Absent:
		return "absent"
	case Deferred:
		return "deferred"
	case Implemented:
		return "implemented"
	default:
		return "unknown"
	}
}

// Inspect classifies subject's current answer for name.
//
// A materialized method always classifies as Implemented. Otherwise the
// subject's own RespondsTo decides, so subjects that override it are honored.
func Inspect(subject Subject, name string) Responder {
	if _, ok := subject.Method(name); ok {
		return Implemented
	}

	if subject.RespondsTo(name) {
		return Deferred
	}

	return Absent
}
