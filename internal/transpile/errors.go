package transpile

import (
	"fmt"

	"sfcc/internal/diag"
)

// Error reports a failed transformation; it implements section.DiagnosticError.
type Error struct {
	Filename string
	Diags    []diag.Diagnostic
}

func (e *Error) Error() string {
	if len(e.Diags) == 0 {
		return "transpile failed"
	}
	msg := e.Diags[0].Message
	if len(e.Diags) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(e.Diags)-1)
	}
	return msg
}

func (e *Error) Diagnostics() []diag.Diagnostic { return e.Diags }
