package diag

import (
	"fmt"

	"sfcc/internal/source"
)

type Note struct {
	Msg string
	Pos source.LineCol
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Primary  source.Span
	Pos      source.LineCol
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}

// Locate binds the diagnostic to a document: the span is shifted from
// section-relative coordinates by base and Pos is resolved.
func (d Diagnostic) Locate(doc *source.Document, base uint32) Diagnostic {
	if doc == nil {
		return d
	}
	d.Primary = d.Primary.Rebase(base)
	d.File = doc.Path
	d.Pos = doc.Resolve(d.Primary.Start)
	return d
}

// String renders "<file>:<line>:<col>: <SEV> <CODE>: <msg>".
func (d Diagnostic) String() string {
	if d.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s %s: %s", d.File, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", d.File, d.Pos.Line, d.Pos.Col, d.Severity, d.Code, d.Message)
}
