package section

import (
	"encoding/json"
	"fmt"

	"sfcc/internal/sfc"
)

// DefaultModuleName is the export name of a style marked with a bare
// `module` attribute.
const DefaultModuleName = "$style"

// StyleAdapter compiles module-scoped style blocks.
type StyleAdapter struct {
	Preprocessor StylePreprocessor
	// DefaultModule overrides DefaultModuleName when set.
	DefaultModule string
	// ValidatePlain also runs non-module styles through the preprocessor;
	// their output is discarded.
	ValidatePlain bool
}

func (StyleAdapter) Policy() Policy { return PolicyFor(sfc.KindStyle) }

// ModuleName returns the export name of s, or "" when s is not module-scoped.
func (a StyleAdapter) ModuleName(s *sfc.Style) string {
	switch {
	case s == nil || !s.IsModule:
		return ""
	case s.Module != "":
		return s.Module
	case a.DefaultModule != "":
		return a.DefaultModule
	default:
		return DefaultModuleName
	}
}

// Compile returns one result per module-scoped style in document order, or
// nil when no style qualifies.
func (a StyleAdapter) Compile(env Env, styles []*sfc.Style) ([]StyleResult, error) {
	var out []StyleResult
	for _, s := range styles {
		name := a.ModuleName(s)
		if name == "" {
			if a.ValidatePlain {
				if _, err := a.process(env, s, ""); err != nil {
					return nil, err
				}
			}
			continue
		}
		compiled, err := a.process(env, s, name)
		if err != nil {
			return nil, err
		}
		code, err := json.Marshal(compiled.Locals)
		if err != nil {
			return nil, &CompileError{Kind: sfc.KindStyle, Filename: env.filename(), Err: err}
		}
		out = append(out, StyleResult{ModuleName: name, Code: string(code), CSS: compiled.CSS})
	}
	return out, nil
}

func (a StyleAdapter) process(env Env, s *sfc.Style, name string) (*StyleOutput, error) {
	resolved, err := env.resolve(sfc.KindStyle, s.Block)
	if err != nil {
		return nil, err
	}
	compiled, err := a.Preprocessor.Process(StyleInput{
		Source:   resolved.Content,
		Filename: env.filename(),
		Lang:     resolved.Lang,
		Module:   name,
	})
	if err != nil {
		return nil, &CompileError{
			Kind:        sfc.KindStyle,
			Filename:    env.filename(),
			Diagnostics: env.collect(err, &resolved),
			Err:         fmt.Errorf("module %q: %w", name, err),
		}
	}
	if compiled.Locals == nil {
		compiled.Locals = map[string]string{}
	}
	return compiled, nil
}
