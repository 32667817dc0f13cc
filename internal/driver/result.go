package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sfcc/internal/diag"
	"sfcc/internal/observ"
	"sfcc/internal/section"
	"sfcc/internal/sfc"
	"sfcc/internal/sourcemap"
)

// trailerSep separates the module code from the JSON source map.
const trailerSep = "\n//"

var (
	ErrNoTrailer  = errors.New("output has no source map trailer")
	ErrBadTrailer = errors.New("malformed source map trailer")
)

// Result is a successful compilation.
type Result struct {
	Filename   string
	Code       string
	Map        *sourcemap.Map
	Descriptor *sfc.Descriptor // with external references resolved
	Functional bool

	TemplateLine      int // 0 without a template
	RenderFnStartLine int // 0 without a render fragment
	RenderFnEndLine   int

	Script   *section.ScriptResult
	Template *section.TemplateResult
	Styles   []section.StyleResult
	Custom   []section.CustomResult

	Diagnostics *diag.Bag
	Timing      observ.Report

	legacyTrailer bool
}

// Output returns Code followed by the source map trailer. With the legacy
// trailer the JSON is followed by one extra closing brace.
func (r *Result) Output() (string, error) {
	data, err := r.Map.JSON()
	if err != nil {
		return "", fmt.Errorf("%s: encode source map: %w", r.Filename, err)
	}
	var b strings.Builder
	b.Grow(len(r.Code) + len(trailerSep) + len(data) + 1)
	b.WriteString(r.Code)
	b.WriteString(trailerSep)
	b.Write(data)
	if r.legacyTrailer {
		b.WriteByte('}')
	}
	return b.String(), nil
}

// SplitTrailer separates an Output string into code and source map. Both the
// default and the legacy trailer are accepted.
func SplitTrailer(out string) (string, *sourcemap.Map, error) {
	i := strings.LastIndex(out, trailerSep)
	if i < 0 {
		return "", nil, ErrNoTrailer
	}
	code, payload := out[:i], out[i+len(trailerSep):]
	m := new(sourcemap.Map)
	err := json.Unmarshal([]byte(payload), m)
	if err != nil {
		trimmed, ok := strings.CutSuffix(payload, "}")
		if !ok {
			return "", nil, fmt.Errorf("%w: %w", ErrBadTrailer, err)
		}
		m = new(sourcemap.Map)
		if err2 := json.Unmarshal([]byte(trimmed), m); err2 != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBadTrailer, err)
		}
	}
	return code, m, nil
}
