package custom

import (
	"strings"
	"testing"

	"sfcc/internal/section"
)

func TestI18nJSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := I18n{}.Process(section.CustomInput{Type: "i18n", Content: `{"en": {"hello": "Hello"}}`}, nil)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	fromYAML, err := I18n{}.Process(section.CustomInput{Type: "i18n", Lang: "yaml", Content: "en:\n  hello: Hello\n"}, nil)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if fromJSON != fromYAML {
		t.Errorf("json and yaml differ:\n%s\n%s", fromJSON, fromYAML)
	}
	want := "__options__.__i18n = __options__.__i18n || []\n" +
		`__options__.__i18n.push("{\"en\":{\"hello\":\"Hello\"}}")` + "\n"
	if fromJSON != want {
		t.Errorf("code =\n%s\nwant\n%s", fromJSON, want)
	}
}

func TestI18nLocaleAttribute(t *testing.T) {
	code, err := I18n{}.Process(section.CustomInput{
		Content: `{"hello": "Bonjour"}`,
		Attrs:   map[string]string{"locale": "fr"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(code, `{\"fr\":{\"hello\":\"Bonjour\"}}`) {
		t.Errorf("locale not applied:\n%s", code)
	}
}

func TestI18nErrors(t *testing.T) {
	tests := []section.CustomInput{
		{Content: `{"en": `},
		{Content: `[1, 2]`},
		{Content: "a: [", Lang: "yaml"},
		{Content: "x", Lang: "toml"},
	}
	for _, in := range tests {
		if _, err := (I18n{}).Process(in, nil); err == nil {
			t.Errorf("Process(%+v) should fail", in)
		}
	}
	if code, err := (I18n{}).Process(section.CustomInput{Content: "  \n"}, nil); err != nil || code != "" {
		t.Errorf("empty block = %q, %v", code, err)
	}
}

func TestHandlers(t *testing.T) {
	hs, err := Handlers(map[string]string{"docs": "ignore", "messages": "I18N"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := hs["i18n"].(I18n); !ok {
		t.Error("i18n handler not registered by default")
	}
	if _, ok := hs["docs"].(Ignore); !ok {
		t.Error("docs should map to Ignore")
	}
	if _, ok := hs["messages"].(I18n); !ok {
		t.Error("messages should map to I18n")
	}
	if _, err := Handlers(map[string]string{"x": "nope"}); err == nil {
		t.Error("unknown handler should fail")
	}
}
