package template

import (
	"errors"
	"strings"
	"testing"

	"sfcc/internal/diag"
	"sfcc/internal/section"
)

const prologue = "var render = function render(){var _vm=this;var _h=_vm.$createElement;var _c=_vm._self._c||_h;return "

func compile(t *testing.T, src string) *section.TemplateOutput {
	t.Helper()
	out, err := (&Compiler{}).Compile(section.TemplateInput{Source: src, Filename: "T.vue"})
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return out
}

// body strips the fixed render prologue and epilogue.
func body(t *testing.T, out *section.TemplateOutput) string {
	t.Helper()
	code := out.Code
	if !strings.HasPrefix(code, prologue) {
		t.Fatalf("unexpected prologue:\n%s", code)
	}
	code = strings.TrimPrefix(code, prologue)
	return strings.TrimSuffix(code, "}\nvar staticRenderFns = []\n")
}

func TestCompileInterpolation(t *testing.T) {
	out := compile(t, "<div>{{ msg }}</div>")
	want := prologue + "_c('div',[_vm._v(_vm._s(_vm.msg))])}\nvar staticRenderFns = []\n"
	if out.Code != want {
		t.Errorf("Code =\n%s\nwant\n%s", out.Code, want)
	}
	if len(out.Errors) != 0 || len(out.Tips) != 0 {
		t.Errorf("unexpected diagnostics: %v %v", out.Errors, out.Tips)
	}
}

func TestCompileBodies(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{
			name: "static attributes",
			src:  `<div id="app" class="a  b" style="color: red">x</div>`,
			want: `_c('div',{staticClass:"a b",staticStyle:{"color":"red"},attrs:{"id":"app"}},[_vm._v("x")])`,
		},
		{
			name: "if chain",
			src:  `<div v-if="a">A</div><p v-else>B</p>`,
			want: `(_vm.a)?_c('div',[_vm._v("A")]):_c('p',[_vm._v("B")])`,
		},
		{
			name: "if without else",
			src:  `<div><span v-if="ok">y</span></div>`,
			want: `_c('div',[(_vm.ok)?_c('span',[_vm._v("y")]):_vm._e()])`,
		},
		{
			name: "for with key",
			src:  `<ul><li v-for="(item, i) in items" :key="item.id">{{ item.name }}</li></ul>`,
			want: `_c('ul',[_vm._l((_vm.items),function(item,i){return _c('li',{key:item.id},[_vm._v(_vm._s(item.name))])})],2)`,
		},
		{
			name: "whitespace between tags",
			src:  "<div>\n  <span>a</span>\n</div>",
			want: `_c('div',[_c('span',[_vm._v("a")])])`,
		},
		{
			name: "inline whitespace condensed",
			src:  "<p>a  <b>x</b> c</p>",
			want: `_c('p',[_vm._v("a "),_c('b',[_vm._v("x")]),_vm._v(" c")])`,
		},
		{
			name: "mixed text",
			src:  "<p>Hello {{ name }}!</p>",
			want: `_c('p',[_vm._v("Hello "+_vm._s(_vm.name)+"!")])`,
		},
		{
			name: "simple handler",
			src:  `<button @click="onClick">go</button>`,
			want: `_c('button',{on:{"click":_vm.onClick}},[_vm._v("go")])`,
		},
		{
			name: "handler with modifier",
			src:  `<button @click.stop="count++"></button>`,
			want: `_c('button',{on:{"click":function($event){$event.stopPropagation();_vm.count++}}})`,
		},
		{
			name: "inline call",
			src:  `<button v-on:click="say('hi')"></button>`,
			want: `_c('button',{on:{"click":function($event){return _vm.say('hi')}}})`,
		},
		{
			name: "case preserved",
			src:  `<MyComp :fooBar="x"/>`,
			want: `_c('MyComp',{attrs:{"fooBar":_vm.x}})`,
		},
		{
			name: "class binding",
			src:  `<div :class="{ active: isActive }"></div>`,
			want: `_c('div',{class:{ active: _vm.isActive }})`,
		},
		{
			name: "v-show",
			src:  `<div v-show="visible"></div>`,
			want: `_c('div',{directives:[{name:"show",rawName:"v-show",value:(_vm.visible),expression:"visible"}]})`,
		},
		{
			name: "v-html owns children",
			src:  `<div v-html="raw">ignored</div>`,
			want: `_c('div',{domProps:{"innerHTML":_vm._s(_vm.raw)}})`,
		},
		{
			name: "slot with fallback",
			src:  `<div><slot>none</slot></div>`,
			want: `_c('div',[_vm._t("default",function(){return [_vm._v("none")]})],2)`,
		},
		{
			name: "entities in text",
			src:  `<p>a &amp; b</p>`,
			want: `_c('p',[_vm._v("a & b")])`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := body(t, compile(t, tt.src)); got != tt.want {
				t.Errorf("body =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestCompileModel(t *testing.T) {
	got := body(t, compile(t, `<input v-model="msg">`))
	for _, part := range []string{
		`directives:[{name:"model",rawName:"v-model",value:(_vm.msg),expression:"msg"}]`,
		`domProps:{"value":(_vm.msg)}`,
		`"input":function($event){if($event.target.composing)return;_vm.msg=$event.target.value}`,
	} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %s in\n%s", part, got)
		}
	}
	got = body(t, compile(t, `<my-input v-model.trim="msg"/>`))
	if !strings.Contains(got, `model:{value:(_vm.msg),callback:function ($$v) {_vm.msg=(typeof $$v === 'string'? $$v.trim(): $$v)},expression:"msg"}`) {
		t.Errorf("component model not generated:\n%s", got)
	}
}

func TestCompileFunctionalPrologue(t *testing.T) {
	out, err := (&Compiler{}).Compile(section.TemplateInput{Source: "<div/>", Functional: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.Code, "var render = function render(_h,_vm){var _c=_vm._c;return _c('div')}") {
		t.Errorf("functional prologue missing:\n%s", out.Code)
	}
}

func TestCompileHardErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		lang string
		code diag.Code
	}{
		{"unterminated interpolation", "<div>{{</div>", "", diag.TplUnterminatedInterp},
		{"no root", "   ", "", diag.TplNoRoot},
		{"multiple roots", "<div></div><p></p>", "", diag.TplMultipleRoots},
		{"unclosed nested", "<div><span></div>", "", diag.TplUnclosedElement},
		{"unclosed at eof", "<div>", "", diag.TplUnclosedElement},
		{"stray end tag", "<div></p></div>", "", diag.TplStrayEndTag},
		{"bad v-for", `<ul><li v-for="items">x</li></ul>`, "", diag.TplBadFor},
		{"template root", "<template><div/></template>", "", diag.TplNoRoot},
		{"unsupported lang", "div hello", "pug", diag.TplUnsupportedLang},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Compiler{}).Compile(section.TemplateInput{Source: tt.src, Lang: tt.lang})
			var te *Error
			if !errors.As(err, &te) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if got := te.Diagnostics()[0].Code; got != tt.code {
				t.Errorf("code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestUnterminatedInterpolationSpan(t *testing.T) {
	_, err := (&Compiler{}).Compile(section.TemplateInput{Source: "<div>\n{{ oops</div>"})
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("err = %v", err)
	}
	if got := te.Diags[0].Primary.Start; got != 6 {
		t.Errorf("span start = %d, want 6", got)
	}
}

func TestCompileSoftErrorsAndTips(t *testing.T) {
	out := compile(t, `<div><p v-else>x</p><span title="{{ t }}"></span><i v-for="x in xs"></i></div>`)
	if len(out.Errors) != 1 || out.Errors[0].Code != diag.TplElseWithoutIf {
		t.Errorf("Errors = %v, want one TplElseWithoutIf", out.Errors)
	}
	codes := map[diag.Code]bool{}
	for _, d := range out.Tips {
		codes[d.Code] = true
		if d.Severity != diag.SevWarning {
			t.Errorf("tip %v has severity %v", d.Code, d.Severity)
		}
	}
	if !codes[diag.TplInterpolationInAttr] || !codes[diag.TplForWithoutKey] {
		t.Errorf("tips = %v", out.Tips)
	}
	if strings.Contains(out.Code, "_c('p'") {
		t.Errorf("orphan v-else element should be dropped:\n%s", out.Code)
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		in, want string
		locals   []string
	}{
		{in: "a + b", want: "_vm.a + _vm.b"},
		{in: "a.b.c", want: "_vm.a.b.c"},
		{in: "foo(bar, 'x')", want: "_vm.foo(_vm.bar, 'x')"},
		{in: "{ active: isActive, b }", want: "{ active: _vm.isActive, b:_vm.b }"},
		{in: "Math.max(x, 1)", want: "Math.max(_vm.x, 1)"},
		{in: "items.map(i => i * 2)", want: "_vm.items.map(i => i * 2)"},
		{in: "`hi ${name}`", want: "`hi ${_vm.name}`"},
		{in: "typeof x === 'undefined'", want: "typeof _vm.x === 'undefined'"},
		{in: "[...rest]", want: "[..._vm.rest]"},
		{in: "a?.b", want: "_vm.a?.b"},
		{in: "function(x){ return x + y }", want: "function(x){ return x + _vm.y }"},
		{in: "item.id + n", want: "item.id + _vm.n", locals: []string{"item"}},
		{in: "$event.target.value", want: "$event.target.value", locals: []string{"$event"}},
		{in: "ok ? 'yes' : no", want: "_vm.ok ? 'yes' : _vm.no"},
	}
	for _, tt := range tests {
		if got := rewrite(tt.in, scope(nil).with(tt.locals...)); got != tt.want {
			t.Errorf("rewrite(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFor(t *testing.T) {
	tests := []struct {
		in   string
		want forClause
		ok   bool
	}{
		{"item in items", forClause{Alias: "item", Source: "items"}, true},
		{"(item, index) in items", forClause{Alias: "item", Iterator1: "index", Source: "items"}, true},
		{"(val, key, idx) of obj", forClause{Alias: "val", Iterator1: "key", Iterator2: "idx", Source: "obj"}, true},
		{"{ a, b } in list", forClause{Alias: "{ a, b }", Source: "list"}, true},
		{"items", forClause{}, false},
	}
	for _, tt := range tests {
		got, ok := parseFor(tt.in)
		if ok != tt.ok {
			t.Errorf("parseFor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && *got != tt.want {
			t.Errorf("parseFor(%q) = %+v, want %+v", tt.in, *got, tt.want)
		}
	}
}
