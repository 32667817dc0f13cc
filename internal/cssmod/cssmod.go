// Package cssmod is the default style preprocessor. It scopes the class
// selectors of module styles by suffixing them with a content hash and
// returns the class mapping as the module locals.
//
// `:global(.name)` and `:global .name` leave selectors untouched; the
// `:global` marker itself is dropped from the output.
package cssmod

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
	"github.com/zeebo/blake3"

	"sfcc/internal/diag"
	"sfcc/internal/section"
	"sfcc/internal/source"
)

// DefaultHashLength is the number of hex digits in a scoped class suffix.
const DefaultHashLength = 8

// Config is the `[style]` table of sfcc.toml that concerns scoping.
type Config struct {
	HashLength int `toml:"hash_length"`
}

// Preprocessor implements section.StylePreprocessor for plain CSS.
type Preprocessor struct {
	hashLen int
}

func New(cfg Config) (*Preprocessor, error) {
	n := cfg.HashLength
	switch {
	case n == 0:
		n = DefaultHashLength
	case n < 4 || n > 64:
		return nil, fmt.Errorf("style hash_length %d out of range [4, 64]", n)
	}
	return &Preprocessor{hashLen: n}, nil
}

// ScopedName returns the class name emitted for class in filename.
func (p *Preprocessor) ScopedName(filename, class string) string {
	sum := blake3.Sum256([]byte(filename + "\x00" + class))
	return class + "_" + hex.EncodeToString(sum[:])[:p.hashLen]
}

// Process implements section.StylePreprocessor. Non-module input is checked
// for well-formedness and returned unchanged.
func (p *Preprocessor) Process(in section.StyleInput) (*section.StyleOutput, error) {
	switch strings.ToLower(in.Lang) {
	case "", "css", "postcss":
	default:
		return nil, &Error{Diags: []diag.Diagnostic{
			diag.NewError(diag.StyUnsupported, source.Span{}, fmt.Sprintf("style lang %q is not supported", in.Lang)),
		}}
	}

	r := &rewriter{p: p, in: in, doc: source.NewDocument(in.Filename, in.Source)}
	out, err := r.run()
	if err != nil {
		return nil, err
	}
	if in.Module == "" {
		return &section.StyleOutput{CSS: in.Source}, nil
	}
	return &section.StyleOutput{CSS: out, Locals: r.locals}, nil
}

type context uint8

const (
	ctxRules context = iota // selectors and at-rules
	ctxDecls                // declaration block
	ctxFrames               // @keyframes body
)

// nestedAt are at-rules whose block holds rules rather than declarations.
var nestedAt = map[string]bool{
	"@media": true, "@supports": true, "@document": true, "@layer": true,
	"@container": true, "@scope": true,
}

type rewriter struct {
	p      *Preprocessor
	in     section.StyleInput
	doc    *source.Document
	locals map[string]string

	out   strings.Builder
	stack []context
	at    string // pending at-rule keyword

	global       int  // depth inside :global(...)
	globalParens int  // functional pseudo-classes open inside :global(...)
	globalBare   bool // after a bare :global until the end of the selector
}

func (r *rewriter) ctx() context {
	if len(r.stack) == 0 {
		return ctxRules
	}
	return r.stack[len(r.stack)-1]
}

func (r *rewriter) tokens() ([]*scanner.Token, error) {
	s := scanner.New(r.in.Source)
	var toks []*scanner.Token
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return toks, nil
		case scanner.TokenError:
			return nil, r.fail(tok, "invalid token %q", tok.Value)
		}
		toks = append(toks, tok)
	}
}

func isChar(tok *scanner.Token, c string) bool {
	return tok != nil && tok.Type == scanner.TokenChar && tok.Value == c
}

func (r *rewriter) run() (string, error) {
	toks, err := r.tokens()
	if err != nil {
		return "", err
	}
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		var prev, next *scanner.Token
		if i > 0 {
			prev = toks[i-1]
		}
		if i+1 < len(toks) {
			next = toks[i+1]
		}
		inSelector := r.ctx() == ctxRules && r.at == ""

		switch {
		case tok.Type == scanner.TokenAtKeyword && r.ctx() != ctxDecls:
			r.at = strings.ToLower(tok.Value)
			r.out.WriteString(tok.Value)

		case isChar(tok, "{"):
			switch {
			case r.at == "@keyframes" || strings.HasSuffix(r.at, "-keyframes"):
				r.stack = append(r.stack, ctxFrames)
			case nestedAt[r.at]:
				r.stack = append(r.stack, ctxRules)
			default:
				r.stack = append(r.stack, ctxDecls)
			}
			r.at, r.globalBare = "", false
			r.out.WriteString(tok.Value)

		case isChar(tok, "}"):
			if len(r.stack) == 0 {
				return "", r.fail(tok, "unexpected '}'")
			}
			r.stack = r.stack[:len(r.stack)-1]
			r.out.WriteString(tok.Value)

		case isChar(tok, ";"):
			r.at = ""
			r.out.WriteString(tok.Value)

		case inSelector && isChar(tok, ":") && next != nil && next.Type == scanner.TokenFunction && strings.EqualFold(next.Value, "global("):
			r.global++
			i++

		case inSelector && isChar(tok, ":") && next != nil && next.Type == scanner.TokenIdent && strings.EqualFold(next.Value, "global"):
			r.globalBare = true
			i++
			if i+1 < len(toks) && toks[i+1].Type == scanner.TokenS {
				i++
			}

		case r.global > 0 && tok.Type == scanner.TokenFunction:
			r.globalParens++
			r.out.WriteString(tok.Value)

		case r.global > 0 && isChar(tok, ")"):
			if r.globalParens > 0 {
				r.globalParens--
				r.out.WriteString(tok.Value)
			} else {
				r.global--
			}

		case inSelector && tok.Type == scanner.TokenIdent && isChar(prev, ".") && r.global == 0 && !r.globalBare:
			r.out.WriteString(r.class(tok.Value))

		default:
			if inSelector && isChar(tok, ",") {
				r.globalBare = false
			}
			r.out.WriteString(tok.Value)
		}
	}
	if len(r.stack) > 0 {
		return "", r.fail(toks[len(toks)-1], "unexpected end of style sheet: %d unclosed block(s)", len(r.stack))
	}
	return r.out.String(), nil
}

func (r *rewriter) class(name string) string {
	if r.in.Module == "" {
		return name
	}
	if r.locals == nil {
		r.locals = make(map[string]string)
	}
	scoped, ok := r.locals[name]
	if !ok {
		scoped = r.p.ScopedName(r.in.Filename, name)
		r.locals[name] = scoped
	}
	return scoped
}

func (r *rewriter) fail(tok *scanner.Token, format string, args ...any) error {
	start := r.offset(tok.Line, tok.Column)
	sp := source.Span{Start: start, End: start + source.Offset32(len(tok.Value))}
	return &Error{Diags: []diag.Diagnostic{diag.NewError(diag.StyMalformed, sp, fmt.Sprintf(format, args...))}}
}

// offset converts the scanner's 1-based line and column to a byte offset.
func (r *rewriter) offset(line, col int) uint32 {
	var start uint32
	if line > 1 && len(r.doc.LineIdx) >= line-1 {
		start = r.doc.LineIdx[line-2] + 1
	}
	if col > 1 {
		start += source.Offset32(col - 1)
	}
	return min(start, r.doc.Len())
}

// Error is a style sheet that could not be processed. It implements
// section.DiagnosticError.
type Error struct {
	Diags []diag.Diagnostic
}

func (e *Error) Error() string {
	if len(e.Diags) == 0 {
		return "style processing failed"
	}
	return e.Diags[0].Message
}

func (e *Error) Diagnostics() []diag.Diagnostic { return e.Diags }
