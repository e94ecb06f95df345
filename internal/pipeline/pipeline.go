package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"codeshift/internal/convert"
	"codeshift/internal/detect"
	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/model"
	"codeshift/internal/observ"
	"codeshift/internal/source"
	"codeshift/internal/structure"
	"codeshift/internal/trace"
)

// Run converts files and returns the aggregated report.
func Run(ctx context.Context, cfg Config, files []*source.File) (*Report, error) {
	b, err := RunBundle(ctx, cfg, files)
	if err != nil {
		return nil, err
	}
	return b.Report, nil
}

// RunBundle is Run that also hands back the rule set and, with
// RetainArtifacts, the per-file models and metrics.
func RunBundle(ctx context.Context, cfg Config, files []*source.File) (*Bundle, error) {
	start := time.Now()
	if cfg.Timer == nil {
		cfg.Timer = observ.NewTimer()
	}
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "convert", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, root)

	rulesSpan := trace.Begin(tracer, trace.ScopePass, "rules", root.ID())
	rulesPhase := cfg.Timer.Begin("rules")
	rs, err := cfg.RuleSet()
	cfg.Timer.End(rulesPhase, "")
	if err != nil {
		rulesSpan.End(err.Error())
		root.End("configuration error")
		return nil, err
	}
	rulesSpan.End(rs.Fingerprint()[:12])

	r := &runner{
		cfg:     cfg,
		rs:      rs,
		tracer:  tracer,
		total:   len(files),
		results: make([]FileResult, len(files)),
		panics:  make([]any, len(files)),
	}
	if cfg.RetainArtifacts {
		r.artifacts = make([]Artifact, len(files))
	}
	report := &Report{
		RequestID:      uuid.NewString(),
		SourceLanguage: cfg.Source,
		TargetLanguage: cfg.Target,
		Level:          cfg.Level,
		Style:          cfg.Style.String(),
		PerFile:        []FileResult{},
	}

	for i, f := range files {
		r.publish(Event{Index: i, Path: f.Path, Stage: StageQueued})
	}

	filesSpan := trace.Begin(tracer, trace.ScopePass, "files", root.ID())
	var g errgroup.Group
	g.SetLimit(cfg.jobs(len(files)))
	dispatched := 0
	for i, f := range files {
		if ctx.Err() != nil {
			report.Incomplete = true
			break
		}
		dispatched++
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					r.panics[i] = p
					r.publish(Event{Index: i, Path: f.Path, Stage: StageFailed})
				}
			}()
			r.results[i] = r.file(i, f, filesSpan.ID())
			return nil
		})
	}
	_ = g.Wait() // tasks report through results and panics, never through errors
	filesSpan.WithExtra("dispatched", strconv.Itoa(dispatched)).End("")

	for i := range dispatched {
		if r.panics[i] != nil || !r.results[i].done {
			err := &AggregationError{Path: files[i].Path, Index: i, Cause: r.panics[i]}
			root.End(err.Error())
			return nil, err
		}
	}

	aggSpan := trace.Begin(tracer, trace.ScopePass, "aggregate", root.ID())
	aggPhase := cfg.Timer.Begin("aggregate")
	report.PerFile = append(report.PerFile, r.results[:dispatched]...)
	report.aggregate(start)
	cfg.Timer.End(aggPhase, fmt.Sprintf("%d files", dispatched))
	aggSpan.End("")

	bundle := &Bundle{RuleSet: rs, Report: report}
	for _, a := range r.artifacts[:min(dispatched, len(r.artifacts))] {
		if a.Model != nil {
			bundle.Artifacts = append(bundle.Artifacts, a)
		}
	}

	detail := "ok"
	if report.Incomplete {
		detail = "incomplete"
	}
	root.WithExtra("files", strconv.Itoa(dispatched)).End(detail)
	return bundle, nil
}

type runner struct {
	cfg    Config
	rs     *convert.RuleSet
	tracer trace.Tracer
	total  int

	// indexed by input position; each task writes only its own slot
	results   []FileResult
	panics    []any
	artifacts []Artifact
}

func (r *runner) publish(ev Event) {
	if r.cfg.Progress == nil {
		return
	}
	ev.Total = r.total
	r.cfg.Progress.Publish(ev)
}

// file runs one task: detect, analyze, score, convert.
func (r *runner) file(i int, f *source.File, parent uint64) FileResult {
	span := trace.Begin(r.tracer, trace.ScopeFile, "file:"+f.Path, parent)
	res := FileResult{Path: f.Path, Issues: []Issue{}}
	var issues []diag.Diagnostic

	r.publish(Event{Index: i, Path: f.Path, Stage: StageDetect})
	var det detect.Result
	r.cfg.Timer.Track("detect", func() { det = detect.Classify(f) })
	issues = append(issues, det.Issues...)
	res.Language = det.Lang
	span.WithExtra("language", det.Lang.String()).WithExtra("detectedBy", det.Stage.String())

	src := r.rs.Source().Tag
	if det.Lang != lang.Unknown && det.Lang != src {
		issues = append(issues, diag.NewWarning(diag.DetLanguageMismatch, source.SpanOf(f.ID, 0, 0),
			fmt.Sprintf("%s: detected %s, request converts %s", f.Path, det.Lang, src)))
	}
	if det.Lang != src {
		res.Skipped = true
		r.finish(&res, f, issues, span.ID())
		r.publish(Event{Index: i, Path: f.Path, Stage: StageSkipped})
		span.End("skipped")
		return res
	}
	if len(f.Content) == 0 {
		issues = append(issues, diag.NewWarning(diag.DetEmptyFile, source.SpanOf(f.ID, 0, 0),
			f.Path+": file is empty"))
	}

	r.publish(Event{Index: i, Path: f.Path, Stage: StageAnalyze})
	var (
		m      *model.Model
		sdiags []diag.Diagnostic
	)
	r.cfg.Timer.Track("analyze", func() { m, sdiags = structure.Build(f, det.Lang) })
	issues = append(issues, sdiags...)

	r.publish(Event{Index: i, Path: f.Path, Stage: StageScore})
	var mt metrics.Metrics
	r.cfg.Timer.Track("score", func() { mt = metrics.Score(m) })

	r.publish(Event{Index: i, Path: f.Path, Stage: StageConvert})
	var out *convert.Result
	r.cfg.Timer.Track("convert", func() { out = convert.Convert(m, mt, r.rs) })
	issues = append(issues, out.Issues...)

	if r.artifacts != nil {
		r.artifacts[i] = Artifact{File: f, Model: m, Metrics: mt}
	}

	res.Metrics = mt
	res.Blocks = out.Blocks
	res.Converted = out.Converted
	res.Output = out.Text
	res.TargetPath = r.rs.Target().TargetPath(f.Path)
	r.finish(&res, f, issues, span.ID())

	acc := convert.Accuracy(res.Errors, res.Blocks)
	cov := out.Coverage()
	res.Accuracy, res.Coverage = &acc, &cov

	r.publish(Event{Index: i, Path: f.Path, Stage: StageDone, Accuracy: acc})
	span.WithExtra("blocks", strconv.Itoa(res.Blocks)).
		WithExtra("accuracy", strconv.FormatFloat(acc, 'f', 3, 64)).
		End("")
	return res
}

// finish counts and records the issues of a file. Info diagnostics go to the
// trace only. Counts use the full list so the issue limit never changes the
// accuracy.
func (r *runner) finish(res *FileResult, f *source.File, issues []diag.Diagnostic, span uint64) {
	all := diag.NewBag(0)
	for _, d := range issues {
		if d.Severity == diag.SevInfo {
			trace.Point(r.tracer, trace.ScopeBlock, d.Code.ID(), d.Message, span)
			continue
		}
		all.Add(d)
	}
	all.Sort()
	all.Dedup()

	res.Errors = all.Count(diag.SevError)
	res.Warnings = all.Count(diag.SevWarning)

	kept := diag.NewBag(r.cfg.MaxIssues)
	kept.AddAll(all.Items())
	res.Dropped = kept.Dropped()
	res.Diagnostics = kept.Items()
	for _, d := range res.Diagnostics {
		res.Issues = append(res.Issues, NewIssue(f, d))
	}
	res.done = true
}
