// Package sfc splits a single-file component document into its top-level
// blocks.
//
// A document holds at most one <template> and one <script> block, any number
// of <style> blocks and any number of custom blocks (every other top-level
// tag). Each block records the byte offset of its first content byte so that
// later stages can translate section-relative positions back into the
// document. Top-level text and comments are ignored.
//
// The parser uses the golang.org/x/net/html tokenizer and only tracks
// offsets; block content is always sliced from the original text, so it is
// byte-identical to what the author wrote.
package sfc
