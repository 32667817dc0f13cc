package template

import (
	"regexp"
	"strings"
)

// globals are left untouched by the instance rewrite.
var globals = toSet(
	"Infinity", "undefined", "NaN", "isFinite", "isNaN", "parseFloat", "parseInt",
	"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent",
	"Math", "Number", "Date", "Array", "Object", "Boolean", "String", "RegExp",
	"Map", "Set", "JSON", "Intl", "BigInt", "require", "console",
)

var keywords = toSet(
	"true", "false", "null", "this", "typeof", "instanceof", "in", "of", "new",
	"delete", "void", "function", "return", "var", "let", "const", "if", "else",
	"arguments", "await", "async", "yield",
)

func toSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// scope is the set of local names visible to an expression.
type scope map[string]bool

func (s scope) with(names ...string) scope {
	out := make(scope, len(s)+len(names))
	for k := range s {
		out[k] = true
	}
	for _, n := range names {
		if n != "" {
			out[n] = true
		}
	}
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// rewriter prefixes free identifiers of a JavaScript expression with `_vm.`.
type rewriter struct {
	src   string
	out   strings.Builder
	stack []byte // '(', '[', '{' and 't' for a template literal substitution
	prev  byte   // last significant source byte, 'a' after an identifier
	last  string // last identifier
	sc    scope
}

func rewrite(expr string, sc scope) string {
	r := &rewriter{src: expr, sc: sc}
	r.run()
	return r.out.String()
}

func (r *rewriter) run() {
	s := r.src
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			j := skipString(s, i)
			r.out.WriteString(s[i:j])
			i, r.prev = j, '"'
		case c == '`':
			i = r.templateLiteral(i + 1)
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && (isIdentPart(s[j]) || s[j] == '.') {
				j++
			}
			r.out.WriteString(s[i:j])
			i, r.prev = j, 'a'
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			r.ident(s[i:j], j)
			i = j
		case c == '(':
			if params, end, ok := r.params(i); ok {
				r.out.WriteString(s[i:end])
				r.sc = r.sc.with(params...)
				i, r.prev = end, ')'
				continue
			}
			r.push(c)
			i++
		case c == '[' || c == '{':
			r.push(c)
			i++
		case c == ')' || c == ']':
			r.pop()
			r.out.WriteByte(c)
			i, r.prev = i+1, c
		case c == '}':
			if len(r.stack) > 0 && r.stack[len(r.stack)-1] == 't' {
				r.stack = r.stack[:len(r.stack)-1]
				r.out.WriteByte(c)
				i = r.templateLiteral(i + 1)
				continue
			}
			r.pop()
			r.out.WriteByte(c)
			i, r.prev = i+1, c
		default:
			r.out.WriteByte(c)
			if !isSpace(c) {
				r.prev = c
			}
			i++
		}
	}
}

func (r *rewriter) push(c byte) {
	r.stack = append(r.stack, c)
	r.out.WriteByte(c)
	r.prev = c
}

func (r *rewriter) pop() {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *rewriter) ident(id string, next int) {
	defer func() { r.prev, r.last = 'a', id }()

	if r.isMember(next-len(id)) || r.last == "function" {
		r.out.WriteString(id)
		return
	}
	after := r.peek(next)
	if len(r.stack) > 0 && r.stack[len(r.stack)-1] == '{' && (r.prev == '{' || r.prev == ',') {
		switch after {
		case ':':
			r.out.WriteString(id)
			return
		case ',', '}':
			r.out.WriteString(id)
			r.out.WriteByte(':')
			r.out.WriteString(r.resolve(id))
			return
		}
	}
	if after == '=' && strings.HasPrefix(r.src[r.skipSpace(next):], "=>") {
		r.sc = r.sc.with(id)
	}
	r.out.WriteString(r.resolve(id))
}

func (r *rewriter) resolve(id string) string {
	if keywords[id] || globals[id] || r.sc[id] {
		return id
	}
	return "_vm." + id
}

// isMember reports whether the identifier starting at i follows a property
// access dot. A spread `...` is not a member access.
func (r *rewriter) isMember(i int) bool {
	j := i - 1
	for j >= 0 && isSpace(r.src[j]) {
		j--
	}
	if j < 0 || r.src[j] != '.' {
		return false
	}
	return !(j >= 2 && r.src[j-1] == '.' && r.src[j-2] == '.')
}

// params recognises an arrow function or function expression parameter list
// starting at the '(' at i.
func (r *rewriter) params(i int) ([]string, int, bool) {
	depth := 0
	end := -1
	for j := i; j < len(r.src); j++ {
		switch r.src[j] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			end = j + 1
			break
		}
	}
	if end < 0 {
		return nil, 0, false
	}
	isFunc := r.last == "function" || (r.prev == 'a' && r.lastIsFunctionName())
	if !isFunc && !strings.HasPrefix(r.src[r.skipSpace(end):], "=>") {
		return nil, 0, false
	}
	return identifiers(r.src[i+1 : end-1]), end, true
}

func (r *rewriter) lastIsFunctionName() bool {
	out := strings.TrimRight(r.out.String(), " \t")
	return strings.HasSuffix(out, "function "+r.last)
}

func (r *rewriter) templateLiteral(i int) int {
	s := r.src
	if s[i-1] == '`' {
		r.out.WriteByte('`')
	}
	for i < len(s) {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			r.out.WriteString(s[i : i+2])
			i += 2
		case s[i] == '`':
			r.out.WriteByte('`')
			r.prev = '"'
			return i + 1
		case strings.HasPrefix(s[i:], "${"):
			r.out.WriteString("${")
			r.stack = append(r.stack, 't')
			r.prev = '{'
			return i + 2
		default:
			r.out.WriteByte(s[i])
			i++
		}
	}
	return i
}

func (r *rewriter) peek(i int) byte {
	i = r.skipSpace(i)
	if i < len(r.src) {
		return r.src[i]
	}
	return 0
}

func (r *rewriter) skipSpace(i int) int {
	for i < len(r.src) && isSpace(r.src[i]) {
		i++
	}
	return i
}

func skipString(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// identifiers returns the binding names of a parameter list or destructuring
// pattern: every identifier not used as a property key or default value source.
func identifiers(pattern string) []string {
	var out []string
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '=':
			// skip a default value up to the next separator
			depth := 0
			for i < len(pattern) {
				ch := pattern[i]
				if depth == 0 && (ch == ',' || ch == ')' || ch == '}' || ch == ']') {
					break
				}
				if ch == '(' || ch == '[' || ch == '{' {
					depth++
				} else if ch == ')' || ch == ']' || ch == '}' {
					depth--
				}
				i++
			}
		case isIdentStart(c):
			j := i
			for j < len(pattern) && isIdentPart(pattern[j]) {
				j++
			}
			k := j
			for k < len(pattern) && isSpace(pattern[k]) {
				k++
			}
			if k >= len(pattern) || pattern[k] != ':' {
				out = append(out, pattern[i:j])
			}
			i = j
		default:
			i++
		}
	}
	return out
}

// forClause is a parsed v-for expression.
type forClause struct {
	Alias     string
	Iterator1 string
	Iterator2 string
	Source    string
}

var (
	forAliasRE    = regexp.MustCompile(`^([\s\S]*?)\s+(?:in|of)\s+([\s\S]*)$`)
	forIteratorRE = regexp.MustCompile(`,([^,}\]]*)(?:,([^,}\]]*))?$`)
)

func parseFor(exp string) (*forClause, bool) {
	m := forAliasRE.FindStringSubmatch(strings.TrimSpace(exp))
	if m == nil {
		return nil, false
	}
	fc := &forClause{Source: strings.TrimSpace(m[2])}
	alias := strings.TrimSpace(m[1])
	alias = strings.TrimSuffix(strings.TrimPrefix(alias, "("), ")")
	if it := forIteratorRE.FindStringSubmatchIndex(alias); it != nil {
		fc.Iterator1 = strings.TrimSpace(alias[it[2]:it[3]])
		if it[4] >= 0 {
			fc.Iterator2 = strings.TrimSpace(alias[it[4]:it[5]])
		}
		alias = alias[:it[0]]
	}
	fc.Alias = strings.TrimSpace(alias)
	if fc.Alias == "" || fc.Source == "" {
		return nil, false
	}
	return fc, true
}

// names returns the locals the clause introduces.
func (fc *forClause) names() []string {
	out := identifiers(fc.Alias)
	return append(out, fc.Iterator1, fc.Iterator2)
}

var simplePathRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\??\.[A-Za-z_$][\w$]*|\['[^']*'\]|\["[^"]*"\]|\[\d+\]|\[[A-Za-z_$][\w$]*\])*$`)

var fnExpRE = regexp.MustCompile(`^(?:[\w$]+|\([^)]*\))\s*=>|^function\s*(?:[\w$]+)?\s*\(`)

func isSimplePath(exp string) bool { return simplePathRE.MatchString(strings.TrimSpace(exp)) }

func isFunctionExp(exp string) bool { return fnExpRE.MatchString(strings.TrimSpace(exp)) }
