package cache

import (
	"fmt"

	"codeshift/internal/convert"
	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

// SchemaVersion changes whenever Payload changes shape.
const SchemaVersion uint16 = 1

// Payload is the stored form of a pipeline.Report. Spans are kept as offsets
// and rebound to the caller's files on load.
type Payload struct {
	Schema uint16
	Key    string

	RequestID         string
	Source            uint8
	Target            uint8
	Level             uint8
	Style             string
	HasAccuracy       bool
	AggregateAccuracy float64
	AggregateCoverage float64
	AverageComplexity float64
	ManualReview      []string
	DurationMs        int64
	Incomplete        bool

	Files []FilePayload
}

type FilePayload struct {
	Path       string
	Language   uint8
	Skipped    bool
	Accuracy   float64
	Coverage   float64
	Metrics    metrics.Metrics
	Blocks     int
	Converted  int
	Errors     int
	Warnings   int
	Dropped    int
	TargetPath string
	Output     string
	Issues     []IssuePayload
}

type IssuePayload struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []NotePayload
}

type NotePayload struct {
	Start, End uint32
	Message    string
}

// FromReport flattens rep.
func FromReport(rep *pipeline.Report) *Payload {
	p := &Payload{
		RequestID:         rep.RequestID,
		Source:            uint8(rep.SourceLanguage),
		Target:            uint8(rep.TargetLanguage),
		Level:             uint8(rep.Level),
		Style:             rep.Style,
		AggregateCoverage: rep.AggregateCoverage,
		AverageComplexity: rep.AverageComplexity,
		ManualReview:      rep.ManualReview,
		DurationMs:        rep.DurationMs,
		Incomplete:        rep.Incomplete,
		Files:             make([]FilePayload, len(rep.PerFile)),
	}
	if rep.AggregateAccuracy != nil {
		p.HasAccuracy, p.AggregateAccuracy = true, *rep.AggregateAccuracy
	}
	for i, fr := range rep.PerFile {
		fp := FilePayload{
			Path:       fr.Path,
			Language:   uint8(fr.Language),
			Skipped:    fr.Skipped,
			Metrics:    fr.Metrics,
			Blocks:     fr.Blocks,
			Converted:  fr.Converted,
			Errors:     fr.Errors,
			Warnings:   fr.Warnings,
			Dropped:    fr.Dropped,
			TargetPath: fr.TargetPath,
			Output:     fr.Output,
			Issues:     make([]IssuePayload, len(fr.Diagnostics)),
		}
		if fr.Accuracy != nil {
			fp.Accuracy = *fr.Accuracy
		}
		if fr.Coverage != nil {
			fp.Coverage = *fr.Coverage
		}
		for j, d := range fr.Diagnostics {
			ip := IssuePayload{
				Severity: uint8(d.Severity),
				Code:     uint16(d.Code),
				Message:  d.Message,
				Start:    d.Primary.Start,
				End:      d.Primary.End,
			}
			for _, n := range d.Notes {
				ip.Notes = append(ip.Notes, NotePayload{Start: n.Span.Start, End: n.Span.End, Message: n.Msg})
			}
			fp.Issues[j] = ip
		}
		p.Files[i] = fp
	}
	return p
}

// Report rebuilds the report for files, which must be the inputs the key was
// computed from.
func (p *Payload) Report(files []*source.File) (*pipeline.Report, error) {
	if len(files) != len(p.Files) {
		return nil, fmt.Errorf("cache: payload has %d files, got %d", len(p.Files), len(files))
	}
	rep := &pipeline.Report{
		RequestID:         p.RequestID,
		SourceLanguage:    lang.Tag(p.Source),
		TargetLanguage:    lang.Tag(p.Target),
		Level:             convert.Level(p.Level),
		Style:             p.Style,
		AggregateCoverage: p.AggregateCoverage,
		AverageComplexity: p.AverageComplexity,
		ManualReview:      p.ManualReview,
		DurationMs:        p.DurationMs,
		Incomplete:        p.Incomplete,
		Cached:            true,
		PerFile:           make([]pipeline.FileResult, len(p.Files)),
	}
	if p.HasAccuracy {
		acc := p.AggregateAccuracy
		rep.AggregateAccuracy = &acc
	}
	for i, fp := range p.Files {
		f := files[i]
		if f.Path != fp.Path {
			return nil, fmt.Errorf("cache: file %d is %s, payload has %s", i, f.Path, fp.Path)
		}
		fr := pipeline.FileResult{
			Path:       fp.Path,
			Language:   lang.Tag(fp.Language),
			Skipped:    fp.Skipped,
			Metrics:    fp.Metrics,
			Blocks:     fp.Blocks,
			Converted:  fp.Converted,
			Errors:     fp.Errors,
			Warnings:   fp.Warnings,
			Dropped:    fp.Dropped,
			TargetPath: fp.TargetPath,
			Output:     fp.Output,
			Issues:     make([]pipeline.Issue, 0, len(fp.Issues)),
		}
		if !fp.Skipped {
			acc, cov := fp.Accuracy, fp.Coverage
			fr.Accuracy, fr.Coverage = &acc, &cov
		}
		for _, ip := range fp.Issues {
			d := diag.New(diag.Severity(ip.Severity), diag.Code(ip.Code),
				source.Span{File: f.ID, Start: ip.Start, End: ip.End}, ip.Message)
			for _, n := range ip.Notes {
				d = d.WithNote(source.Span{File: f.ID, Start: n.Start, End: n.End}, n.Message)
			}
			fr.Diagnostics = append(fr.Diagnostics, d)
			fr.Issues = append(fr.Issues, pipeline.NewIssue(f, d))
		}
		rep.PerFile[i] = fr
	}
	return rep, nil
}
