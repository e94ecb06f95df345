// Package diag defines the issue model shared by every pipeline stage.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     detection, structural analysis and conversion.
//   - Offer light-weight utilities (Reporter, Bag) that let stages emit issues
//     without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error. Reports only carry Warning and Error.
//   - Code: compact numeric identifier (see codes.go). Ranges map to the stage
//     that produced the issue: 1xxx detection, 2xxx structure, 3xxx conversion.
//   - Message: short human text.
//   - Primary: the source.Span the issue refers to.
//   - Notes: optional secondary spans.
//
// # Emitting diagnostics
//
// Stages receive a Reporter, or return []Diagnostic by value when they are pure
// functions. BagReporter aggregates into a Bag, which supports sorting and
// deduplication. Rendering lives in internal/diagfmt.
//
// Recoverable problems never surface as Go errors; the issue list is the only
// channel for them.
package diag
