package section

import (
	"errors"
	"fmt"

	"sfcc/internal/diag"
	"sfcc/internal/sfc"
)

var (
	ErrScript   = errors.New("script compilation failed")
	ErrTemplate = errors.New("template compilation failed")
	ErrStyle    = errors.New("style compilation failed")
	ErrCustom   = errors.New("custom block compilation failed")
	ErrLoad     = errors.New("external source could not be loaded")
)

// CompileError reports a failed section. It matches the sentinel of its kind
// and, for external references, ErrLoad.
type CompileError struct {
	Kind        sfc.Kind
	Filename    string
	Diagnostics []diag.Diagnostic
	Err         error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Filename, e.Kind, e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{sentinelFor(e.Kind), e.Err}
}

func sentinelFor(kind sfc.Kind) error {
	switch kind {
	case sfc.KindScript:
		return ErrScript
	case sfc.KindTemplate:
		return ErrTemplate
	case sfc.KindStyle:
		return ErrStyle
	default:
		return ErrCustom
	}
}

func loadError(kind sfc.Kind, filename string, err error) *CompileError {
	return &CompileError{Kind: kind, Filename: filename, Err: fmt.Errorf("%w: %w", ErrLoad, err)}
}
