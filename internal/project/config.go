// Package project loads sfcc.toml and turns it into a configured compiler.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"sfcc/internal/logging"
	"sfcc/internal/template"
	"sfcc/internal/transpile"
)

// Config mirrors sfcc.toml. Missing tables and keys keep their defaults.
type Config struct {
	Script   transpile.Config  `toml:"script"`
	Template TemplateConfig    `toml:"template"`
	Compile  CompileConfig     `toml:"compile"`
	Style    StyleConfig       `toml:"style"`
	Custom   map[string]string `toml:"custom"` // block type -> builtin handler
	Output   OutputConfig      `toml:"output"`
	Log      logging.Config    `toml:"log"`

	// Path is the file the configuration was read from, "" for defaults.
	Path string `toml:"-"`
}

type TemplateConfig struct {
	Whitespace string `toml:"whitespace"` // condense | preserve
}

type CompileConfig struct {
	ParallelSections bool `toml:"parallel_sections"`
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	Jobs             int  `toml:"jobs"` // batch build workers, 0 = GOMAXPROCS
}

type StyleConfig struct {
	HashLength    int    `toml:"hash_length"`
	DefaultModule string `toml:"default_module"`
	ValidatePlain bool   `toml:"validate_plain"`
}

type OutputConfig struct {
	LegacyMapTrailer bool   `toml:"legacy_map_trailer"`
	Ext              string `toml:"ext"` // extension of built files
}

// Default returns the configuration used without sfcc.toml.
func Default() *Config {
	return &Config{
		Script:   transpile.DefaultConfig(),
		Template: TemplateConfig{Whitespace: template.WhitespaceCondense},
		Compile:  CompileConfig{MaxDiagnostics: 100},
		Output:   OutputConfig{Ext: ".js"},
		Log:      logging.DefaultConfig(),
	}
}

// Load decodes path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("output", "ext") && !strings.HasPrefix(cfg.Output.Ext, ".") {
		return nil, fmt.Errorf("%s: [output].ext must start with a dot", path)
	}
	cfg.Path = path
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(filepath.Dir(path), cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads $SFCC_CONFIG when set, otherwise the sfcc.toml closest to
// startDir, or the defaults when there is none.
func Discover(startDir string) (*Config, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		return Load(path)
	}
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the values that the compilers would otherwise reject late.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("[log]: %w", err)
	}
	if _, err := template.New(c.Template.Whitespace); err != nil {
		return fmt.Errorf("[template]: %w", err)
	}
	if c.Compile.MaxDiagnostics < 0 {
		return fmt.Errorf("[compile].max_diagnostics must not be negative")
	}
	if c.Compile.Jobs < 0 {
		return fmt.Errorf("[compile].jobs must not be negative")
	}
	return nil
}
