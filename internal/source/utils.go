package source

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"fortio.org/safecast"
)

var splitRE = regexp.MustCompile(`\r?\n`)

// LineNumberAt returns the 1-based line holding offset: the number of lines
// produced by splitting text[:offset] on `\r?\n`. Offsets past the end are
// clamped, negative offsets count as zero.
func LineNumberAt(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// SplitLines splits text on `\r?\n`. An empty text yields one empty line.
func SplitLines(text string) []string {
	return splitRE.Split(text, -1)
}

// LineCount returns len(SplitLines(text)) without allocating.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// Offset32 converts an int offset to the uint32 used in spans.
func Offset32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content string) []uint32 {
	out := make([]uint32, 0, strings.Count(content, "\n"))
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			out = append(out, Offset32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Если LineIdx пустой, то весь файл - одна строка
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: находим число переводов строки строго до off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := lo // сколько '\n' стоит до off

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: Offset32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
