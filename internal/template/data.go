package template

import (
	"fmt"
	"strings"

	"sfcc/internal/diag"
)

type dataResult struct {
	code         string
	ownsChildren bool // v-html / v-text replace the element content
}

type kv struct{ k, v string }

type handlers struct {
	order []string
	byKey map[string][]string
}

func (h *handlers) add(key, fn string) {
	if h.byKey == nil {
		h.byKey = make(map[string][]string)
	}
	if _, ok := h.byKey[key]; !ok {
		h.order = append(h.order, key)
	}
	h.byKey[key] = append(h.byKey[key], fn)
}

func (h *handlers) code() string {
	if len(h.order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(h.order))
	for _, k := range h.order {
		fns := h.byKey[k]
		v := fns[0]
		if len(fns) > 1 {
			v = "[" + strings.Join(fns, ",") + "]"
		}
		parts = append(parts, jsString(k)+":"+v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var unsupported = toSet("v-once", "v-pre", "slot-scope", "scope")

func (g *generator) data(el *element, sc scope) dataResult {
	var (
		res        dataResult
		directives []string
		fields     []kv
		attrs      []kv
		domProps   []kv
		on         handlers
		nativeOn   handlers
		model      string
		bindObj    string
		onObj      string

		key, ref, staticClass, class, staticStyle, style, slot string
	)

	for _, a := range el.Attrs {
		name := a.Name
		switch {
		case name == "v-cloak":
			continue

		case unsupported[name] || strings.HasPrefix(name, "v-slot") || strings.HasPrefix(name, "#"):
			g.tip(diag.TplUnknownDirective, a.Span, "%s is not supported and was ignored", name)

		case strings.HasPrefix(name, ":") || strings.HasPrefix(name, "v-bind:") || name == "v-bind":
			arg, mods := splitModifiers(strings.TrimPrefix(strings.TrimPrefix(name, "v-bind"), ":"))
			if strings.TrimSpace(a.Value) == "" {
				g.soft(diag.TplEmptyDirective, a.Span, "%s has no expression", name)
				continue
			}
			v := rewrite(a.Value, sc)
			if mods["camel"] {
				arg = camelize(arg)
			}
			switch {
			case arg == "":
				bindObj = v
			case arg == "key":
				key = v
			case arg == "ref":
				ref = v
			case arg == "class":
				class = v
			case arg == "style":
				style = v
			case mods["prop"]:
				domProps = append(domProps, kv{arg, v})
			default:
				attrs = append(attrs, kv{arg, v})
			}
			if mods["sync"] {
				on.add("update:"+arg, "function($event){"+v+"=$event}")
			}

		case strings.HasPrefix(name, "@") || strings.HasPrefix(name, "v-on:") || name == "v-on":
			arg, mods := splitModifiers(strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(name, "@"), "v-on"), ":"))
			if arg == "" {
				onObj = rewrite(a.Value, sc)
				continue
			}
			evKey, fn := g.handler(arg, a.Value, mods, sc)
			if mods["native"] && el.isComponent() {
				nativeOn.add(evKey, fn)
			} else {
				on.add(evKey, fn)
			}

		case name == "v-model" || strings.HasPrefix(name, "v-model."):
			if strings.TrimSpace(a.Value) == "" {
				g.soft(diag.TplEmptyDirective, a.Span, "v-model has no expression")
				continue
			}
			_, mods := splitModifiers(name)
			m := g.model(el, a.Value, mods, sc)
			if m.model != "" {
				model = m.model
				continue
			}
			directives = append(directives, m.directive)
			domProps = append(domProps, m.prop)
			on.add(m.event, m.handler)

		case name == "v-html" || name == "v-text":
			prop := "innerHTML"
			if name == "v-text" {
				prop = "textContent"
			}
			domProps = append(domProps, kv{prop, "_vm._s(" + rewrite(a.Value, sc) + ")"})
			res.ownsChildren = true

		case strings.HasPrefix(name, "v-"):
			directives = append(directives, g.directive(a, sc))

		case name == "key":
			key = jsString(a.Value)
		case name == "ref":
			ref = jsString(a.Value)
		case name == "slot":
			slot = jsString(a.Value)
		case name == "class":
			staticClass = jsString(strings.TrimSpace(condense(a.Value)))
		case name == "style":
			staticStyle = parseStaticStyle(a.Value)

		default:
			if strings.Contains(a.Value, "{{") {
				g.tip(diag.TplInterpolationInAttr, a.Span,
					"%s=%q: interpolation inside attributes has been removed, use v-bind or the colon shorthand", name, a.Value)
			}
			attrs = append(attrs, kv{name, jsString(a.Value)})
		}
	}

	if len(directives) > 0 {
		fields = append(fields, kv{"directives", "[" + strings.Join(directives, ",") + "]"})
	}
	for _, f := range []kv{
		{"key", key}, {"ref", ref}, {"slot", slot},
		{"staticClass", staticClass}, {"class", class},
		{"staticStyle", staticStyle}, {"style", style},
		{"attrs", object(attrs)}, {"domProps", object(domProps)},
		{"on", on.code()}, {"nativeOn", nativeOn.code()}, {"model", model},
	} {
		if f.v != "" {
			fields = append(fields, f)
		}
	}

	code := ""
	if len(fields) > 0 {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.k + ":" + f.v
		}
		code = "{" + strings.Join(parts, ",") + "}"
	}
	if bindObj != "" {
		if code == "" {
			code = "{}"
		}
		code = fmt.Sprintf("_vm._b(%s,%q,%s,false)", code, el.Tag, bindObj)
	}
	if onObj != "" {
		if code == "" {
			code = "{}"
		}
		code = fmt.Sprintf("_vm._g(%s,%s)", code, onObj)
	}
	res.code = code
	return res
}

func object(items []kv) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = jsString(it.k) + ":" + it.v
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (g *generator) directive(a attr, sc scope) string {
	full := strings.TrimPrefix(a.Name, "v-")
	nameArg, mods := splitModifiers(full)
	name, arg, _ := strings.Cut(nameArg, ":")
	var b strings.Builder
	fmt.Fprintf(&b, "{name:%s,rawName:%s", jsString(name), jsString(a.Name))
	if strings.TrimSpace(a.Value) != "" {
		fmt.Fprintf(&b, ",value:(%s),expression:%s", rewrite(a.Value, sc), jsString(a.Value))
	}
	if arg != "" {
		fmt.Fprintf(&b, ",arg:%s", jsString(arg))
	}
	if len(mods) > 0 {
		b.WriteString(",modifiers:{")
		first := true
		for _, m := range modifierOrder(full) {
			if !first {
				b.WriteByte(',')
			}
			first = false
			fmt.Fprintf(&b, "%s:true", jsString(m))
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

var keyCodes = map[string]struct {
	code int
	key  string
}{
	"esc":    {27, "Escape"},
	"tab":    {9, "Tab"},
	"enter":  {13, "Enter"},
	"space":  {32, " "},
	"up":     {38, "ArrowUp"},
	"left":   {37, "ArrowLeft"},
	"right":  {39, "ArrowRight"},
	"down":   {40, "ArrowDown"},
	"delete": {46, "Delete"},
}

var guardOrder = []string{
	"stop", "prevent", "self", "ctrl", "shift", "alt", "meta",
	"esc", "tab", "enter", "space", "up", "left", "right", "down", "delete",
}

var modifierGuards = map[string]string{
	"stop":    "$event.stopPropagation();",
	"prevent": "$event.preventDefault();",
	"self":    "if($event.target !== $event.currentTarget)return null;",
	"ctrl":    "if(!$event.ctrlKey)return null;",
	"shift":   "if(!$event.shiftKey)return null;",
	"alt":     "if(!$event.altKey)return null;",
	"meta":    "if(!$event.metaKey)return null;",
}

// handler returns the key under `on` and the handler code of one listener.
func (g *generator) handler(event, value string, mods map[string]bool, sc scope) (string, string) {
	key := event
	if mods["passive"] {
		key = "&" + key
	}
	if mods["once"] {
		key = "~" + key
	}
	if mods["capture"] {
		key = "!" + key
	}

	var guards strings.Builder
	for _, m := range guardOrder {
		if !mods[m] {
			continue
		}
		if gd, ok := modifierGuards[m]; ok {
			guards.WriteString(gd)
			continue
		}
		if kc, ok := keyCodes[m]; ok && strings.HasPrefix(event, "key") {
			fmt.Fprintf(&guards, "if(!$event.type.indexOf('key')&&_vm._k($event.keyCode,%s,%d,$event.key,%s))return null;",
				jsString(m), kc.code, jsString(kc.key))
		}
	}

	hsc := sc.with("$event")
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		return key, "function($event){" + guards.String() + "}"
	case isSimplePath(v) || isFunctionExp(v):
		fn := rewrite(v, hsc)
		if guards.Len() == 0 {
			return key, fn
		}
		return key, "function($event){" + guards.String() + "return (" + fn + ").apply(null, arguments)}"
	default:
		body := rewrite(v, hsc)
		if !strings.Contains(v, ";") && strings.HasSuffix(v, ")") {
			body = "return " + body
		}
		return key, "function($event){" + guards.String() + body + "}"
	}
}

type modelCode struct {
	model     string // component form
	directive string
	prop      kv
	event     string
	handler   string
}

func (g *generator) model(el *element, value string, mods map[string]bool, sc scope) modelCode {
	v := rewrite(value, sc)
	if el.isComponent() {
		cb := "$$v"
		if mods["trim"] {
			cb = "(typeof $$v === 'string'? $$v.trim(): $$v)"
		}
		if mods["number"] {
			cb = "_vm._n(" + cb + ")"
		}
		return modelCode{model: fmt.Sprintf("{value:(%s),callback:function ($$v) {%s=%s},expression:%s}", v, v, cb, jsString(value))}
	}

	m := modelCode{
		directive: fmt.Sprintf("{name:\"model\",rawName:\"v-model\",value:(%s),expression:%s}", v, jsString(value)),
	}
	typ := ""
	if a, ok := el.attr("type"); ok {
		typ = a.Value
	}
	switch {
	case el.Tag == "select":
		m.event = "change"
		m.prop = kv{"value", "(" + v + ")"}
		m.handler = "function($event){var $$selectedVal = Array.prototype.filter.call($event.target.options,function(o){return o.selected}).map(function(o){var val = \"_value\" in o ? o._value : o.value;return val});" +
			v + "=$event.target.multiple ? $$selectedVal : $$selectedVal[0]}"
	case el.Tag == "input" && typ == "checkbox":
		m.event = "change"
		m.prop = kv{"checked", "(" + v + ")"}
		m.handler = "function($event){" + v + "=$event.target.checked}"
	case el.Tag == "input" && typ == "radio":
		val := `""`
		if a, ok := el.attr("value"); ok {
			val = jsString(a.Value)
		} else if a, ok := el.attr(":value"); ok {
			val = rewrite(a.Value, sc)
		}
		m.event = "change"
		m.prop = kv{"checked", "_vm._q(" + v + "," + val + ")"}
		m.handler = "function($event){" + v + "=" + val + "}"
	default:
		m.event = "input"
		if mods["lazy"] {
			m.event = "change"
		}
		val := "$event.target.value"
		if mods["trim"] {
			val += ".trim()"
		}
		if mods["number"] {
			val = "_vm._n(" + val + ")"
		}
		m.prop = kv{"value", "(" + v + ")"}
		guard := "if($event.target.composing)return;"
		if mods["lazy"] {
			guard = ""
		}
		m.handler = "function($event){" + guard + v + "=" + val + "}"
	}
	return m
}

// splitModifiers splits "arg.mod1.mod2" into the argument and a modifier set.
func splitModifiers(s string) (string, map[string]bool) {
	parts := strings.Split(s, ".")
	mods := make(map[string]bool, len(parts)-1)
	for _, p := range parts[1:] {
		if p != "" {
			mods[p] = true
		}
	}
	return parts[0], mods
}

// modifierOrder returns the modifiers of s in source order.
func modifierOrder(s string) []string {
	parts := strings.Split(s, ".")
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func camelize(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func parseStaticStyle(s string) string {
	var items []kv
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop, val = strings.TrimSpace(prop), strings.TrimSpace(val)
		if prop != "" {
			items = append(items, kv{prop, jsString(val)})
		}
	}
	return object(items)
}
