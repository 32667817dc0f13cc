package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"sfcc/internal/buildpipeline"
)

// PlainSink prints one line per finished file. It is used when stdout is
// not a terminal.
type PlainSink struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *PlainSink) OnEvent(ev buildpipeline.Event) {
	if ev.File == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Status {
	case buildpipeline.StatusDone:
		fmt.Fprintf(s.W, "%12s %s (%s)\n", "done", ev.File, ev.Elapsed.Round(time.Millisecond))
	case buildpipeline.StatusError:
		fmt.Fprintf(s.W, "%12s %s: %s\n", "error", ev.File, firstLine(errString(ev.Err)))
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
