package source

// FileFlags encodes metadata about a source document.
type FileFlags uint8 // метаданные

const (
	// FileVirtual indicates the document was added from memory (test, stdin, bridge request).
	FileVirtual FileFlags = 1 << iota // не с диска
	FileHadBOM
	FileHadCRLF
)

// LineCol represents a human-readable position in a source document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
