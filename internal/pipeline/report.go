package pipeline

import (
	"time"

	"codeshift/internal/convert"
	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

// ReviewThreshold is the accuracy below which a file is listed for manual review.
const ReviewThreshold = 0.8

// Location is the JSON form of a span.
type Location struct {
	File  string `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Line  uint32 `json:"line"`
	Col   uint32 `json:"col"`
}

// Issue is a reported diagnostic.
type Issue struct {
	Severity diag.Severity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location Location      `json:"location"`
}

// FileResult is the outcome of one file task.
type FileResult struct {
	Path       string          `json:"path"`
	Language   lang.Tag        `json:"language"`
	Skipped    bool            `json:"skipped,omitempty"`
	Accuracy   *float64        `json:"accuracy"` // nil for skipped files
	Coverage   *float64        `json:"coverage"`
	Metrics    metrics.Metrics `json:"metrics"`
	Blocks     int             `json:"blocks"`
	Converted  int             `json:"converted"`
	Errors     int             `json:"errors"`
	Warnings   int             `json:"warnings"`
	Issues     []Issue         `json:"issues"`
	Dropped    int             `json:"droppedIssues,omitempty"`
	TargetPath string          `json:"targetPath,omitempty"`

	// Output and Diagnostics travel beside the report, not in it.
	Output      string            `json:"-"`
	Diagnostics []diag.Diagnostic `json:"-"`

	done bool
}

// Report is the aggregate of a run.
type Report struct {
	RequestID         string        `json:"requestId"`
	SourceLanguage    lang.Tag      `json:"sourceLanguage"`
	TargetLanguage    lang.Tag      `json:"targetLanguage"`
	Level             convert.Level `json:"optimizationLevel"`
	Style             string        `json:"style"`
	PerFile           []FileResult  `json:"perFile"`
	AggregateAccuracy *float64      `json:"aggregateAccuracy"`
	AggregateCoverage float64       `json:"aggregateCoverage"`
	AverageComplexity float64       `json:"averageComplexity"`
	ManualReview      []string      `json:"manualReview,omitempty"`
	DurationMs        int64         `json:"durationMs"`
	Incomplete        bool          `json:"incomplete"`
	Cached            bool          `json:"cached,omitempty"`
}

// Artifact is the retained analysis of one file.
type Artifact struct {
	File    *source.File
	Model   *model.Model
	Metrics metrics.Metrics
}

// Bundle is the read-only output handed to documentation rendering.
type Bundle struct {
	Artifacts []Artifact // only with Config.RetainArtifacts, input order
	RuleSet   *convert.RuleSet
	Report    *Report
}

// aggregate fills the summary fields from the finished per-file results.
func (r *Report) aggregate(start time.Time) {
	var (
		blocks, converted, errs int
		complexity, scored      int
	)
	for i := range r.PerFile {
		fr := &r.PerFile[i]
		blocks += fr.Blocks
		converted += fr.Converted
		errs += fr.Errors
		if fr.Skipped {
			continue
		}
		complexity += fr.Metrics.Cyclomatic
		scored++
		if *fr.Accuracy < ReviewThreshold {
			r.ManualReview = append(r.ManualReview, fr.Path)
		}
	}
	if len(r.PerFile) > 0 {
		acc := convert.Accuracy(errs, blocks)
		r.AggregateAccuracy = &acc
	}
	r.AggregateCoverage = 1
	if blocks > 0 {
		r.AggregateCoverage = float64(converted) / float64(blocks)
	}
	if scored > 0 {
		r.AverageComplexity = float64(complexity) / float64(scored)
	}
	r.DurationMs = time.Since(start).Milliseconds()
}

// NewIssue converts a diagnostic of f to its report form.
func NewIssue(f *source.File, d diag.Diagnostic) Issue {
	pos := f.Position(d.Primary.Start)
	return Issue{
		Severity: d.Severity,
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: Location{
			File:  f.Path,
			Start: d.Primary.Start,
			End:   d.Primary.End,
			Line:  pos.Line,
			Col:   pos.Col,
		},
	}
}
