package trace

import "context"

// Tracer receives events. Emit must be safe for concurrent use; it is
// only called with events the tracer's level admits.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

type nopTracer struct{}

func (nopTracer) Emit(Event)   {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Close() error { return nil }

// Nop discards everything. It is what FromContext returns when no tracer
// was attached.
var Nop Tracer = nopTracer{}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Level().ShouldEmit(scope)
}

type tracerKey struct{}

type spanKey struct{}

// WithTracer attaches t to ctx. A nil t attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// Start opens a span under the span carried by ctx and returns a context
// carrying the new one.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	return start(ctx, scope, name, parent.File())
}

// StartFile opens the file-scoped span for one document. Spans started
// below it carry the document name.
func StartFile(ctx context.Context, name, file string) (context.Context, *Span) {
	return start(ctx, ScopeFile, name, file)
}

func start(ctx context.Context, scope Scope, name, file string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	span := begin(FromContext(ctx), scope, name, parent.ID(), file)
	if span == disabled {
		return ctx, span
	}
	return context.WithValue(ctx, spanKey{}, span), span
}

// SpanFromContext returns the innermost span started with Start, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}
