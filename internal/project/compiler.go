package project

import (
	"fmt"

	"sfcc/internal/cssmod"
	"sfcc/internal/custom"
	"sfcc/internal/diag"
	"sfcc/internal/driver"
	"sfcc/internal/template"
	"sfcc/internal/transpile"
)

// NewCompiler builds a driver for the configuration. rep and observer may be
// nil.
func (c *Config) NewCompiler(rep diag.Reporter, observer driver.PhaseObserver) (*driver.Compiler, error) {
	tr, err := transpile.New(c.Script)
	if err != nil {
		return nil, fmt.Errorf("[script]: %w", err)
	}
	tpl, err := template.New(c.Template.Whitespace)
	if err != nil {
		return nil, fmt.Errorf("[template]: %w", err)
	}
	css, err := cssmod.New(cssmod.Config{HashLength: c.Style.HashLength})
	if err != nil {
		return nil, fmt.Errorf("[style]: %w", err)
	}
	handlers, err := custom.Handlers(c.Custom)
	if err != nil {
		return nil, fmt.Errorf("[custom]: %w", err)
	}
	return driver.New(driver.Collaborators{
		Transpiler: tr,
		Template:   tpl,
		Style:      css,
		Custom:     handlers,
		Reporter:   rep,
	}, driver.Options{
		ParallelSections:    c.Compile.ParallelSections,
		LegacyMapTrailer:    c.Output.LegacyMapTrailer,
		MaxDiagnostics:      c.Compile.MaxDiagnostics,
		DefaultStyleModule:  c.Style.DefaultModule,
		ValidatePlainStyles: c.Style.ValidatePlain,
		Observer:            observer,
	})
}
