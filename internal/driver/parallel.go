package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"sfcc/internal/source"
)

// ComponentExt is the extension of component documents.
const ComponentExt = ".vue"

// FileResult is the outcome of compiling one file of a batch.
type FileResult struct {
	Path   string
	Result *Result // nil when Err is set
	Err    error
}

// ListComponents возвращает отсортированный список всех *.vue файлов в директории
func ListComponents(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ComponentExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CompileFiles compiles every file with at most jobs goroutines. Per-file
// failures land in FileResult.Err; only cancellation of ctx is returned.
func (c *Compiler) CompileFiles(ctx context.Context, files []string, jobs int) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i].Path = path
			doc, err := source.Load(path)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = c.Compile(gctx, doc.Content, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
