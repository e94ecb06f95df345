package convert

import (
	"codeshift/internal/diag"
)

// Result is the outcome of converting one model.
//
// Every block of the model is counted exactly once: Converted (including
// both halves of a fusion), Unmapped, Failed or Skipped (descendants of an
// unmapped or failed block, emitted inside its verbatim comment).
type Result struct {
	Text   string
	Issues []diag.Diagnostic

	Blocks    int
	Converted int
	Unmapped  int
	Failed    int
	Skipped   int
	Fused     int
}

// Errors counts the error issues.
func (r *Result) Errors() int {
	return countSeverity(r.Issues, diag.SevError)
}

// Warnings counts the warning issues.
func (r *Result) Warnings() int {
	return countSeverity(r.Issues, diag.SevWarning)
}

// Coverage is the share of converted blocks. A model without blocks is
// fully covered.
func (r *Result) Coverage() float64 {
	if r.Blocks == 0 {
		return 1
	}
	return float64(r.Converted) / float64(r.Blocks)
}

// Accuracy is 1 - errors/blocks clamped to [0,1].
func (r *Result) Accuracy() float64 {
	return Accuracy(r.Errors(), r.Blocks)
}

// Accuracy computes 1 - errors/blocks clamped to [0,1]. Without blocks any
// error makes the accuracy 0.
func Accuracy(errors, blocks int) float64 {
	if blocks <= 0 {
		if errors > 0 {
			return 0
		}
		return 1
	}
	a := 1 - float64(errors)/float64(blocks)
	switch {
	case a < 0:
		return 0
	case a > 1:
		return 1
	}
	return a
}

func countSeverity(ds []diag.Diagnostic, sev diag.Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
