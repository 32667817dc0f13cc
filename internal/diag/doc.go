// Package diag defines the diagnostic model shared by all section compilers.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by the
//     document parser, the template compiler and the script/style/custom
//     adapters.
//   - Offer light-weight utilities (Reporter, Bag, MultiReporter) so producers
//     can emit diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt, logging of diagnostics lives in internal/logging.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with stable string form (codes.go).
//   - Message – human oriented text; keep it short and actionable.
//   - File – the document the finding belongs to.
//   - Primary – byte span in document coordinates, Pos – its resolved start.
//   - Notes – optional secondary messages.
//
// Template compiler tips are reported as SevInfo, its errors as SevError; both
// are delivered to a Reporter and never turned into Go errors by themselves.
package diag
