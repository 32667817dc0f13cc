package trace

import (
	"sync"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span is an open begin/end pair. All methods accept a nil receiver and a
// span whose tracer filtered it out, so callers never check.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	file    string
	started time.Time

	mu    sync.Mutex
	extra map[string]string
	ended bool
}

var disabled = &Span{tracer: Nop}

func begin(t Tracer, scope Scope, name string, parent uint64, file string) *Span {
	if !emits(t, scope) {
		return disabled
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		file:    file,
		started: time.Now(),
	}
	t.Emit(Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
		File:     file,
	})
	return s
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s == disabled {
		return s
	}
	s.mu.Lock()
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	s.mu.Unlock()
	return s
}

// End emits the end event once and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s == disabled {
		return 0
	}
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return 0
	}
	s.ended = true
	extra := s.extra
	file := s.file
	s.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.started)
	s.tracer.Emit(Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		File:     file,
		Detail:   detail,
		Elapsed:  elapsed,
		Extra:    extra,
	})
	return elapsed
}

// ID returns the span id, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// File returns the document name the span carries.
func (s *Span) File() string {
	if s == nil {
		return ""
	}
	return s.file
}
