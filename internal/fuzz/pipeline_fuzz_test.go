package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"sfcc/internal/driver"
	"sfcc/internal/section"
	"sfcc/internal/sfc"
	"sfcc/internal/template"
	"sfcc/internal/testkit"
)

// compileTimeout is the maximum time allowed for a single input. Longer runs
// point at an infinite loop.
const compileTimeout = 5 * time.Second

func FuzzParseBlocks(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		src := clampInput(input)
		d, err := sfc.Parse(src, "fuzz.vue")
		if err != nil {
			var pe *sfc.ParseError
			if !errors.As(err, &pe) {
				return
			}
			if pe.Pos.Line == 0 {
				t.Fatalf("parse error without position: %v", err)
			}
			return
		}
		if err := testkit.CheckDescriptorInvariants(d, src); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzTemplateCompile(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("<div :a=\"{{ b }}\" @click=\"c\" v-html=\"d\"></div>"))
	f.Add([]byte("<div v-for=\"x y\"></div>"))
	tpl, err := template.New(template.WhitespaceCondense)
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		out, err := tpl.Compile(section.TemplateInput{Source: clampInput(input), Filename: "fuzz.vue"})
		if err != nil {
			var te *template.Error
			if !errors.As(err, &te) || len(te.Diagnostics()) == 0 {
				t.Fatalf("template error without diagnostics: %v", err)
			}
			return
		}
		if out.Code == "" {
			t.Fatal("empty render code")
		}
	})
}

// FuzzCompileNoHang runs the whole pipeline, parallel sections included,
// and checks that every failure is one of the documented kinds.
func FuzzCompileNoHang(f *testing.F) {
	addCorpusSeeds(f)
	collab, err := driver.DefaultCollaborators()
	if err != nil {
		f.Fatal(err)
	}
	c, err := driver.New(collab, driver.Options{ParallelSections: true})
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := c.Compile(ctx, clampInput(input), "fuzz.vue")
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				return
			}
			var pe *sfc.ParseError
			var ce *section.CompileError
			if !errors.As(err, &pe) && !errors.As(err, &ce) && !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("unexpected error kind %T: %v", err, err)
			}
		case <-ctx.Done():
			t.Fatalf("compile did not finish within %v", compileTimeout)
		}
	})
}
