package section

import (
	"sfcc/internal/diag"
)

// ScriptResult is the compiled script section.
type ScriptResult struct {
	Code        string
	Map         []byte // transpiler source map, relative to Source
	Source      string // the text that was compiled
	External    bool
	ExternalSrc string // path of the external reference, when External
	StartLine   int    // document line of the first content byte
	Diagnostics []diag.Diagnostic
}

// TemplateResult is the compiled template section. When Failed is set Code
// holds TemplatePlaceholder and no render function exists.
type TemplateResult struct {
	Code        string
	External    bool
	ExternalSrc string
	StartLine   int
	Failed      bool
	Diagnostics []diag.Diagnostic
}

// StyleResult is one module-scoped style block.
type StyleResult struct {
	ModuleName string
	Code       string // JS object literal mapping class names to identifiers
	CSS        string
}

// CustomResult is the payload of one custom block.
type CustomResult struct {
	Type string
	Lang string
	Code string
}
