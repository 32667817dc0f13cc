package section

import (
	"encoding/base64"
	"regexp"
	"strings"

	"sfcc/internal/sfc"
)

// inlineMapRE matches a data-URI source map comment emitted by a transpiler.
var inlineMapRE = regexp.MustCompile(`(?m)^[ \t]*//[#@] sourceMappingURL=data:application/json[^,\n]*,([A-Za-z0-9+/=]*)[ \t]*\r?\n?`)

// ScriptAdapter compiles the script section.
type ScriptAdapter struct {
	Transpiler ScriptTranspiler
}

func (ScriptAdapter) Policy() Policy { return PolicyFor(sfc.KindScript) }

// Compile transpiles blk. A nil block yields a nil result.
func (a ScriptAdapter) Compile(env Env, blk *sfc.Script) (*ScriptResult, error) {
	if blk == nil {
		return nil, nil
	}
	resolved, err := env.resolve(sfc.KindScript, blk.Block)
	if err != nil {
		return nil, err
	}

	out, err := a.Transpiler.Transpile(resolved.Content, env.filename(), resolved.Lang)
	if err != nil {
		return nil, &CompileError{
			Kind:        sfc.KindScript,
			Filename:    env.filename(),
			Diagnostics: env.collect(err, &resolved),
			Err:         err,
		}
	}

	code, inline := StripInlineSourceMap(out.Code)
	sourceMap := out.Map
	if len(sourceMap) == 0 && inline != nil {
		sourceMap = inline
	}

	res := &ScriptResult{
		Code:      code,
		Map:       sourceMap,
		Source:    resolved.Content,
		External:  resolved.External,
		StartLine: env.startLine(&resolved),
	}
	if resolved.External {
		res.ExternalSrc = resolved.Src
	}
	for _, w := range out.Warnings {
		d := env.locate(w, &resolved)
		res.Diagnostics = append(res.Diagnostics, d)
		env.reporter().Report(d)
	}
	return res, nil
}

// StripInlineSourceMap removes every data-URI source map comment from code
// and returns the decoded payload of the last one.
func StripInlineSourceMap(code string) (string, []byte) {
	matches := inlineMapRE.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return code, nil
	}
	var payload []byte
	if decoded, err := base64.StdEncoding.DecodeString(matches[len(matches)-1][1]); err == nil {
		payload = decoded
	}
	stripped := inlineMapRE.ReplaceAllString(code, "")
	return strings.TrimRight(stripped, "\n"), payload
}
