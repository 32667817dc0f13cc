package trace

import (
	"fmt"
	"strings"
)

// Level is the coarsest scope a tracer drops. Each level admits every scope
// up to and including its own.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // builds and documents
	LevelDetail       // plus pipeline phases
	LevelDebug        // plus section compilers
)

var levels = [...]struct {
	name string
	upto Scope
}{
	LevelOff:    {"off", 0},
	LevelPhase:  {"phase", ScopeFile},
	LevelDetail: {"detail", ScopeSection},
	LevelDebug:  {"debug", ScopeDetail},
}

func (l Level) String() string {
	if int(l) < len(levels) {
		return levels[l].name
	}
	return "unknown"
}

// ParseLevel converts a --trace-level value.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, def := range levels {
		if def.name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levels) {
		return false
	}
	return scope != 0 && scope <= levels[l].upto
}
