package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sfcc/internal/section"
	"sfcc/internal/sfc"
	"sfcc/internal/trace"
)

// sections holds the per-kind results. Every job writes only its own field.
type sections struct {
	script   *section.ScriptResult
	template *section.TemplateResult
	styles   []section.StyleResult
	custom   []section.CustomResult
}

type job struct {
	name string
	run  func() error
}

func (c *Compiler) compileSections(ctx context.Context, env section.Env, d *sfc.Descriptor, functional bool) (*sections, error) {
	out := &sections{}
	jobs := []job{
		{"script", func() (err error) {
			out.script, err = section.Guard(c.script.Policy(), func() (*section.ScriptResult, error) {
				return c.script.Compile(env, d.Script)
			}, nil)
			return err
		}},
		{"template", func() (err error) {
			out.template, err = section.Guard(c.template.Policy(), func() (*section.TemplateResult, error) {
				return c.template.Compile(env, d.Template, functional)
			}, c.template.Fallback(env, d.Template))
			return err
		}},
		{"style", func() (err error) {
			out.styles, err = section.Guard(c.style.Policy(), func() ([]section.StyleResult, error) {
				return c.style.Compile(env, d.Styles)
			}, nil)
			return err
		}},
		{"custom", func() (err error) {
			out.custom, err = section.Guard(c.custom.Policy(), func() ([]section.CustomResult, error) {
				return c.custom.Compile(env, d.Custom)
			}, nil)
			return err
		}},
	}

	runJob := func(j job) error {
		_, span := trace.Start(ctx, trace.ScopeDetail, j.name)
		err := j.run()
		if err != nil {
			span.End("failed")
			return err
		}
		span.End("")
		return nil
	}

	if !c.opts.ParallelSections {
		for _, j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := runJob(j); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	// Каждая задача пишет только в своё поле, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return runJob(j)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
