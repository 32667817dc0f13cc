package section

import (
	"errors"

	"sfcc/internal/sfc"
)

// Policy decides what a section failure does to the whole compilation.
type Policy uint8

const (
	// PolicyFatal propagates the error and aborts the call.
	PolicyFatal Policy = iota
	// PolicyRecoverable replaces the result with a fallback and continues.
	PolicyRecoverable
)

func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// TemplatePlaceholder replaces the render function of a template that failed
// to compile.
const TemplatePlaceholder = "/* Failed to compile template */"

// PolicyFor returns the failure policy of a section kind.
func PolicyFor(kind sfc.Kind) Policy {
	if kind == sfc.KindTemplate {
		return PolicyRecoverable
	}
	return PolicyFatal
}

// Guard runs compile under policy p. A recoverable failure is turned into the
// value returned by fallback; a fatal one is returned unchanged. Failures to
// load an external reference are fatal under every policy.
func Guard[T any](p Policy, compile func() (T, error), fallback func(error) T) (T, error) {
	v, err := compile()
	if err == nil {
		return v, nil
	}
	if p == PolicyRecoverable && fallback != nil && !errors.Is(err, ErrLoad) {
		return fallback(err), nil
	}
	return v, err
}
