package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver  Scope = iota + 1 // commands and batch builds
	ScopeFile                     // one document
	ScopeSection                  // one pipeline phase of a document
	ScopeDetail                   // collaborator calls
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopeSection:
		return "section"
	case ScopeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Event is one trace record. File is inherited from the enclosing file span
// so concurrent compiles can be told apart.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the recorder
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // "compile", "sections", "script", ...
	File     string
	Detail   string
	Elapsed  time.Duration // set on span ends
	Extra    map[string]string
}
