// Package custom holds the built-in handlers for custom blocks.
package custom

import (
	"fmt"
	"sort"
	"strings"

	"sfcc/internal/section"
)

// Builtin handler names accepted in the `[custom]` table of sfcc.toml.
const (
	NameI18n   = "i18n"
	NameIgnore = "ignore"
)

var builtins = map[string]section.CustomHandler{
	NameI18n:   I18n{},
	NameIgnore: Ignore{},
}

// Builtin returns the handler registered under name.
func Builtin(name string) (section.CustomHandler, bool) {
	h, ok := builtins[strings.ToLower(name)]
	return h, ok
}

// Handlers maps block types to built-in handlers by name. The i18n handler is
// always registered for `<i18n>` unless the table overrides it.
func Handlers(table map[string]string) (map[string]section.CustomHandler, error) {
	out := map[string]section.CustomHandler{NameI18n: I18n{}}
	blockTypes := make([]string, 0, len(table))
	for bt := range table {
		blockTypes = append(blockTypes, bt)
	}
	sort.Strings(blockTypes)
	for _, bt := range blockTypes {
		h, ok := Builtin(table[bt])
		if !ok {
			return nil, fmt.Errorf("custom block <%s>: unknown handler %q (expected %s|%s)", bt, table[bt], NameI18n, NameIgnore)
		}
		out[bt] = h
	}
	return out, nil
}

// Ignore drops the block.
type Ignore struct{}

func (Ignore) Process(section.CustomInput, section.CustomConfig) (string, error) { return "", nil }
