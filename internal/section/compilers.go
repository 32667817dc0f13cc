package section

import (
	"sfcc/internal/diag"
)

// TranspileResult is the output of a ScriptTranspiler.
type TranspileResult struct {
	Code     string
	Map      []byte            // source map JSON relative to the input, nil if none
	Warnings []diag.Diagnostic // spans relative to the input
}

// ScriptTranspiler translates script-dialect code. The same instance, and
// therefore the same configuration, serves the script section and the
// template's render code.
type ScriptTranspiler interface {
	Transpile(code, filename, lang string) (*TranspileResult, error)
}

// TemplateInput is handed to a TemplateCompiler.
type TemplateInput struct {
	Source     string
	Filename   string
	Lang       string
	Functional bool
}

// TemplateOutput defines `render` and `staticRenderFns` in Code.
type TemplateOutput struct {
	Code   string
	Errors []diag.Diagnostic // spans relative to Source
	Tips   []diag.Diagnostic
}

// TemplateCompiler compiles markup into render-function code written in the
// script dialect.
type TemplateCompiler interface {
	Compile(in TemplateInput) (*TemplateOutput, error)
}

// StyleInput is handed to a StylePreprocessor.
type StyleInput struct {
	Source   string
	Filename string
	Lang     string
	Module   string
}

// StyleOutput carries the compiled CSS and the class-name map of a module.
type StyleOutput struct {
	CSS    string
	Locals map[string]string
}

// StylePreprocessor compiles one style block.
type StylePreprocessor interface {
	Process(in StyleInput) (*StyleOutput, error)
}

// CustomInput is handed to a CustomHandler.
type CustomInput struct {
	Type     string
	Lang     string
	Content  string
	Attrs    map[string]string
	Filename string
}

// CustomConfig is passed unchanged to every custom handler.
type CustomConfig map[string]any

// CustomHandler turns a custom block into module code appended after the
// component definition. Handlers may refer to `__options__`.
type CustomHandler interface {
	Process(in CustomInput, cfg CustomConfig) (string, error)
}

// CustomHandlerFunc adapts a function to CustomHandler.
type CustomHandlerFunc func(in CustomInput, cfg CustomConfig) (string, error)

func (f CustomHandlerFunc) Process(in CustomInput, cfg CustomConfig) (string, error) {
	return f(in, cfg)
}

// DiagnosticError is implemented by collaborator errors that carry
// positioned diagnostics (spans relative to the compiled input).
type DiagnosticError interface {
	error
	Diagnostics() []diag.Diagnostic
}
