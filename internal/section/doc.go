// Package section holds the per-section adapters of the compilation
// pipeline and the collaborator interfaces they wrap.
//
// Every adapter turns one kind of sfc block into a result the assembler
// understands. A nil block yields a nil result and no diagnostics. External
// references are loaded through sfc.SourceLoader before compilation.
//
// Failure handling is declared, not hard-coded: each adapter reports a
// Policy and the driver runs it through Guard. Script, style and custom
// compilation are fatal; template compilation is recoverable and falls back
// to TemplatePlaceholder.
package section
