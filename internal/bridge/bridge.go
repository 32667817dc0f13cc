// Package bridge serves compile requests to a host loader over a byte
// stream. Each message is one msgpack value; requests are independent and
// responses may arrive out of order, matched by ID.
package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sfcc/internal/diag"
	"sfcc/internal/driver"
	"sfcc/internal/trace"
)

// Request asks for one document to be compiled.
type Request struct {
	ID       uint64 `msgpack:"id"`
	Filename string `msgpack:"filename"`
	Source   string `msgpack:"source"`
}

// Response carries the module text with its trailer, the source map JSON
// and the diagnostics of one request. Error is set when compilation failed.
type Response struct {
	ID          uint64       `msgpack:"id"`
	Code        string       `msgpack:"code,omitempty"`
	Map         string       `msgpack:"map,omitempty"`
	Diagnostics []Diagnostic `msgpack:"diagnostics,omitempty"`
	Error       string       `msgpack:"error,omitempty"`
}

// Diagnostic is the wire form of diag.Diagnostic.
type Diagnostic struct {
	Severity string `msgpack:"severity"`
	Code     string `msgpack:"code"`
	Message  string `msgpack:"message"`
	File     string `msgpack:"file,omitempty"`
	Line     uint32 `msgpack:"line,omitempty"`
	Col      uint32 `msgpack:"col,omitempty"`
}

// Server answers requests with one compiler shared by all of them.
type Server struct {
	Compiler *driver.Compiler
	Jobs     int // concurrent requests, 0 = GOMAXPROCS
	Logger   *zap.Logger
}

// Serve reads requests from r until it is exhausted and writes one response
// per request to w. A malformed message or a failed write ends the session.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if s.Compiler == nil {
		return fmt.Errorf("bridge: missing compiler")
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "serve")
	defer span.End("")
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	dec := msgpack.NewDecoder(bufio.NewReader(r))
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var readErr error
	for gctx.Err() == nil {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = fmt.Errorf("bridge: decode request: %w", err)
			}
			break
		}
		log.Debug("request", zap.Uint64("id", req.ID), zap.String("file", req.Filename))
		g.Go(func() error {
			resp := s.handle(gctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(&resp); err != nil {
				return fmt.Errorf("bridge: encode response %d: %w", resp.ID, err)
			}
			return bw.Flush()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	return ctx.Err()
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}
	res, err := s.Compiler.Compile(ctx, req.Source, req.Filename)
	if err != nil {
		resp.Error = err.Error()
		resp.Diagnostics = wireDiagnostics(driver.ErrorDiagnostics(err))
		return resp
	}
	out, err := res.Output()
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	data, err := res.Map.JSON()
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Code, resp.Map = out, string(data)
	resp.Diagnostics = wireDiagnostics(res.Diagnostics.Items())
	return resp
}

func wireDiagnostics(items []diag.Diagnostic) []Diagnostic {
	if len(items) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, Diagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			File:     d.File,
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
		})
	}
	return out
}
