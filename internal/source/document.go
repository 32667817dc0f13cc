package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// Document is one SFC source file. Content is never modified after creation;
// every compile call builds its own Document.
type Document struct {
	Path    string
	Content string
	LineIdx []uint32 // offsets of every '\n'
	Flags   FileFlags
}

// NewDocument wraps in-memory content.
func NewDocument(path, content string) *Document {
	flags := FileVirtual
	if strings.Contains(content, "\r\n") {
		flags |= FileHadCRLF
	}
	return &Document{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	}
}

// Load reads a document from disk and strips a leading BOM.
// CRLF line endings are kept: line counting already treats "\r\n" as one break.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, hadBOM := removeBOM(content)
	doc := NewDocument(path, string(content))
	doc.Flags &^= FileVirtual
	if hadBOM {
		doc.Flags |= FileHadBOM
	}
	return doc, nil
}

// Len returns the content length as uint32.
func (d *Document) Len() uint32 {
	n, err := safecast.Conv[uint32](len(d.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Resolve converts a byte offset into a line/column position.
func (d *Document) Resolve(off uint32) LineCol {
	return toLineCol(d.LineIdx, off)
}

// ResolveSpan converts a span into line and column positions.
func (d *Document) ResolveSpan(span Span) (start, end LineCol) {
	return toLineCol(d.LineIdx, span.Start), toLineCol(d.LineIdx, span.End)
}

// Line returns the line with the given 1-based number without its terminator.
// Если строка не существует, возвращает пустую строку.
func (d *Document) Line(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx, err := safecast.Conv[uint32](len(d.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent := d.Len()

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = d.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if (lineNum - 1) < lenLineIdx {
		end = d.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start > lenContent {
		return ""
	}
	return strings.TrimSuffix(d.Content[start:end], "\r")
}

// Dir returns the directory external references are resolved against.
func (d *Document) Dir() string {
	return filepath.Dir(filepath.FromSlash(d.Path))
}
