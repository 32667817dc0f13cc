package custom

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"sfcc/internal/section"
)

// I18n registers a block of translation messages on the component options as
// `__options__.__i18n`, one serialized entry per block. The content is JSON
// by default and YAML with lang="yaml". A `locale` attribute wraps the
// messages under that locale.
type I18n struct{}

func (I18n) Process(in section.CustomInput, _ section.CustomConfig) (string, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", nil
	}

	var messages any
	switch strings.ToLower(in.Lang) {
	case "", "json", "json5":
		if err := json.Unmarshal([]byte(content), &messages); err != nil {
			return "", fmt.Errorf("parse i18n json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal([]byte(content), &messages); err != nil {
			return "", fmt.Errorf("parse i18n yaml: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported i18n lang %q", in.Lang)
	}
	if _, ok := messages.(map[string]any); !ok {
		return "", fmt.Errorf("i18n block must be an object, got %T", messages)
	}
	if locale := in.Attrs["locale"]; locale != "" {
		messages = map[string]any{locale: messages}
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("encode i18n messages: %w", err)
	}
	quoted, err := json.Marshal(string(payload))
	if err != nil {
		return "", err
	}
	return "__options__.__i18n = __options__.__i18n || []\n" +
		"__options__.__i18n.push(" + string(quoted) + ")\n", nil
}
