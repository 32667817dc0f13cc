// Package trace records spans of the compile pipeline to help diagnose slow
// or stuck builds.
//
//	sfcc build src --trace=build.ndjson --trace-level=detail
//	sfcc serve --trace-mode=ring --trace-heartbeat=2s
//
// A Recorder either streams events to a file as they happen, keeps the
// last N in memory and dumps them when the command exits, or does both.
// With a heartbeat enabled the recorder also reports which documents are
// still compiling.
//
// # Levels and scopes
//
//   - ScopeDriver: commands and batch builds (level phase and up)
//   - ScopeFile: one document (level phase and up)
//   - ScopeSection: parse, resolve, sections, assemble, sourcemap (level detail and up)
//   - ScopeDetail: script, template, style and custom compilers (level debug)
//
// # Context propagation
//
// Spans travel in the context. A file span names its document and every
// span below it inherits the name:
//
//	ctx = trace.WithTracer(ctx, rec)
//	ctx, span := trace.StartFile(ctx, "compile", "App.vue")
//	defer span.End("")
//	_, sub := trace.Start(ctx, trace.ScopeSection, "parse")
//	sub.End("")
package trace
