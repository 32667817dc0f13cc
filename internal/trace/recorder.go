package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Mode decides where a Recorder keeps events.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write each event as it happens
	ModeRing                   // keep the last events for Dump
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a flag value to Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid trace mode: %q (expected: stream|ring|both)", s)
	}
}

const defaultRingSize = 4096

// Config describes the tracer behind the --trace flags.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format
	Output     io.Writer // wins over OutputPath
	OutputPath string    // "" or "-" for stderr
	RingSize   int
}

// New returns Nop for LevelOff and a Recorder otherwise.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode < ModeStream || cfg.Mode > ModeBoth {
		return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
	}
	r := &Recorder{
		level:  cfg.Level,
		mode:   cfg.Mode,
		format: formatFor(cfg.OutputPath, cfg.Format),
		open:   make(map[uint64]openSpan),
	}
	if cfg.Mode != ModeStream {
		size := cfg.RingSize
		if size <= 0 {
			size = defaultRingSize
		}
		r.ring = make([]Event, size)
	}
	if cfg.Mode != ModeRing {
		switch {
		case cfg.Output != nil:
			r.w = cfg.Output
		case cfg.OutputPath == "" || cfg.OutputPath == "-":
			r.w = os.Stderr
		default:
			// #nosec G304 -- path comes from the --trace flag
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace output: %w", err)
			}
			r.w, r.closer = f, f
		}
	}
	return r, nil
}

type openSpan struct {
	file    string
	started time.Time
}

// Recorder numbers events, writes them out, keeps the most recent ones,
// and remembers which documents are still being compiled.
type Recorder struct {
	level  Level
	mode   Mode
	format Format

	mu     sync.Mutex
	seq    uint64
	w      io.Writer
	closer io.Closer
	werr   error // first write error, reported by Close
	ring   []Event
	head   int
	full   bool
	open   map[uint64]openSpan
}

func (r *Recorder) Level() Level { return r.level }

func (r *Recorder) Mode() Mode { return r.mode }

// Emit records ev. Heartbeats pass any level above off.
func (r *Recorder) Emit(ev Event) {
	if ev.Kind != KindHeartbeat && !r.level.ShouldEmit(ev.Scope) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	ev.Seq = r.seq
	if ev.Scope == ScopeFile {
		switch ev.Kind {
		case KindSpanBegin:
			r.open[ev.SpanID] = openSpan{file: ev.File, started: ev.Time}
		case KindSpanEnd:
			delete(r.open, ev.SpanID)
		}
	}
	if r.w != nil && r.werr == nil {
		// a broken trace sink must not fail the compile
		if _, err := r.w.Write(FormatEvent(&ev, r.format)); err != nil {
			r.werr = err
		}
	}
	if len(r.ring) > 0 {
		r.ring[r.head] = ev
		r.head = (r.head + 1) % len(r.ring)
		if r.head == 0 {
			r.full = true
		}
	}
}

// Snapshot returns the buffered events oldest first.
func (r *Recorder) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.ring[:r.head]...)
	}
	out := make([]Event, 0, len(r.ring))
	out = append(out, r.ring[r.head:]...)
	return append(out, r.ring[:r.head]...)
}

// Dump writes the buffered events to w.
func (r *Recorder) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// InFlight lists the documents whose compile span is still open, longest
// running first.
func (r *Recorder) InFlight() []string {
	r.mu.Lock()
	spans := make([]openSpan, 0, len(r.open))
	for _, s := range r.open {
		spans = append(spans, s)
	}
	r.mu.Unlock()

	sort.Slice(spans, func(i, j int) bool {
		if !spans[i].started.Equal(spans[j].started) {
			return spans[i].started.Before(spans[j].started)
		}
		return spans[i].file < spans[j].file
	})
	files := make([]string, len(spans))
	for i, s := range spans {
		files[i] = s.file
	}
	return files
}

// Close flushes the writer and closes it when the recorder opened it.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.werr
	if f, ok := r.w.(interface{ Flush() error }); ok {
		err = errors.Join(err, f.Flush())
	}
	if r.closer != nil {
		err = errors.Join(err, r.closer.Close())
		r.closer = nil
	}
	r.w = nil
	return err
}
