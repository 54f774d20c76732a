// Package diag defines the diagnostic model shared by the lowering core and
// the CLI.
//
// Diagnostic is the central record: a Severity, a stable numeric Code, a
// message, the primary source.Span, and optional notes. Producers emit
// through a Reporter so emission is decoupled from storage; BagReporter
// aggregates into a Bag, which supports sorting and deduplication for
// deterministic output.
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt; the compiler core only reports.
//
// The core never aborts on a user-facing error: it reports into the bag and
// lowers the offending construct to an unreachable, so one compile call
// yields the complete diagnostic set for a program.
package diag
