package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeshift/internal/convert"
	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

const hello = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. HELLO.
       PROCEDURE DIVISION.
       MAIN-LOGIC.
           DISPLAY "Hello".
           STOP RUN.
`

const (
	cleanJava    = "class A {\n  void f() {\n  }\n}\n"
	unclosedJava = "int x = 1;\nclass A {\n  void f() {\n  }\n"
)

func files(pairs ...string) []*source.File {
	fs := source.NewFileSet()
	out := make([]*source.File, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, fs.Get(fs.AddVirtual(pairs[i], []byte(pairs[i+1]))))
	}
	return out
}

func mustRun(t *testing.T, cfg pipeline.Config, in []*source.File) *pipeline.Report {
	t.Helper()
	rep, err := pipeline.Run(context.Background(), cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return rep
}

func TestEmptyFileSet(t *testing.T) {
	rep := mustRun(t, pipeline.Config{Source: lang.COBOL, Target: lang.Python}, nil)
	if rep.AggregateAccuracy != nil {
		t.Fatalf("accuracy must be undefined without files, got %v", *rep.AggregateAccuracy)
	}
	if rep.AggregateCoverage != 1 || len(rep.PerFile) != 0 || rep.Incomplete {
		t.Fatalf("unexpected empty report %+v", rep)
	}
	if rep.RequestID == "" {
		t.Fatalf("missing request id")
	}
}

func TestConfigurationErrorBeforeFiles(t *testing.T) {
	cases := []struct {
		name  string
		cfg   pipeline.Config
		field string
	}{
		{"no source", pipeline.Config{Target: lang.Python}, "sourceLanguage"},
		{"no target", pipeline.Config{Source: lang.Java}, "targetLanguage"},
		{"unsupported pair", pipeline.Config{Source: lang.Java, Target: lang.COBOL}, "languagePair"},
		{"bad mapping", pipeline.Config{Source: lang.Java, Target: lang.Go, Custom: map[string]string{" ": "x"}}, "customMappings"},
		{"negative jobs", pipeline.Config{Source: lang.Java, Target: lang.Go, Jobs: -1}, "jobs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			touched := false
			cfg := tc.cfg
			cfg.Progress = pipeline.SinkFunc(func(pipeline.Event) { touched = true })
			_, err := pipeline.Run(context.Background(), cfg, files("A.java", cleanJava))
			var ce *pipeline.ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field = %q, want %q", ce.Field, tc.field)
			}
			if touched {
				t.Fatalf("no file may be touched on a configuration error")
			}
		})
	}
}

func TestPrintEndToEnd(t *testing.T) {
	rep := mustRun(t, pipeline.Config{Source: lang.COBOL, Target: lang.Python}, files("hello.cbl", hello))
	if len(rep.PerFile) != 1 {
		t.Fatalf("expected one file, got %d", len(rep.PerFile))
	}
	fr := rep.PerFile[0]
	if !strings.Contains(fr.Output, `print("Hello")`) {
		t.Fatalf("missing print call:\n%s", fr.Output)
	}
	if fr.TargetPath != "hello.py" {
		t.Fatalf("target path = %q", fr.TargetPath)
	}
	if *fr.Accuracy != 1 || *rep.AggregateAccuracy != 1 || rep.AggregateCoverage != 1 {
		t.Fatalf("expected perfect scores, got %v / %v / %v", *fr.Accuracy, *rep.AggregateAccuracy, rep.AggregateCoverage)
	}
	if len(rep.ManualReview) != 0 {
		t.Fatalf("nothing should need review, got %v", rep.ManualReview)
	}
}

func TestPreserveStructureSameLineBlocks(t *testing.T) {
	cfg := pipeline.Config{Source: lang.JavaScript, Target: lang.Python, PreserveStructure: true}
	rep := mustRun(t, cfg, files("a.js", "let a = 1; let b = 2;\n"))
	fr := rep.PerFile[0]
	if fr.Skipped || !strings.Contains(fr.Output, "a = 1\nb = 2\n") {
		t.Fatalf("unexpected result %+v:\n%s", fr, fr.Output)
	}
}

func TestUnmatchedOpenerEndToEnd(t *testing.T) {
	rep := mustRun(t, pipeline.Config{Source: lang.Java, Target: lang.Python}, files("A.java", unclosedJava))
	fr := rep.PerFile[0]
	if fr.Errors != 1 || len(fr.Issues) != 1 {
		t.Fatalf("expected exactly one structural error, got %+v", fr.Issues)
	}
	is := fr.Issues[0]
	if is.Code != "STR2001" || is.Location.Line != 2 || is.Location.Col != 1 {
		t.Fatalf("unexpected issue %+v", is)
	}
	if fr.Blocks != 1 {
		t.Fatalf("expected only the closed declaration, got %d blocks", fr.Blocks)
	}
	if *fr.Accuracy >= 1 {
		t.Fatalf("a structural error must lower accuracy")
	}
	if len(rep.ManualReview) != 1 || rep.ManualReview[0] != "A.java" {
		t.Fatalf("expected the file in manual review, got %v", rep.ManualReview)
	}
}

func TestAccuracyMonotonic(t *testing.T) {
	cfg := pipeline.Config{Source: lang.Java, Target: lang.Python}
	clean := mustRun(t, cfg, files("A.java", cleanJava))
	mixed := mustRun(t, cfg, files("A.java", cleanJava, "B.java", unclosedJava))
	if *mixed.AggregateAccuracy >= *clean.AggregateAccuracy {
		t.Fatalf("adding an error raised accuracy: %v -> %v", *clean.AggregateAccuracy, *mixed.AggregateAccuracy)
	}
	prev := 1.0
	for errs := range 6 {
		a := convert.Accuracy(errs, 4)
		if a > prev || a < 0 {
			t.Fatalf("Accuracy(%d, 4) = %v after %v", errs, a, prev)
		}
		prev = a
	}
}

func TestUnknownAndMismatchedFilesAreSkipped(t *testing.T) {
	rep := mustRun(t, pipeline.Config{Source: lang.Java, Target: lang.Go},
		files("A.java", cleanJava, "notes.txt", "hello there", "b.py", "def f():\n    pass\n"))
	if len(rep.PerFile) != 3 {
		t.Fatalf("skipped files must still be counted, got %d", len(rep.PerFile))
	}
	for i, code := range map[int]string{1: "DET1001", 2: "DET1005"} {
		fr := rep.PerFile[i]
		if !fr.Skipped || fr.Accuracy != nil {
			t.Fatalf("%s should be skipped without a score: %+v", fr.Path, fr)
		}
		if len(fr.Issues) != 1 || fr.Issues[0].Code != code {
			t.Fatalf("%s: expected %s, got %+v", fr.Path, code, fr.Issues)
		}
	}
	if rep.PerFile[0].Skipped {
		t.Fatalf("java file must be converted")
	}
}

func TestCancellationMarksIncomplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := pipeline.Config{Source: lang.Java, Target: lang.Go, Jobs: 1}
	cfg.Progress = pipeline.SinkFunc(func(ev pipeline.Event) {
		if ev.Stage == pipeline.StageDone {
			cancel()
		}
	})
	in := files("A.java", cleanJava, "B.java", cleanJava, "C.java", cleanJava)
	rep, err := pipeline.Run(ctx, cfg, in)
	if err != nil {
		t.Fatalf("cancellation is not an error: %v", err)
	}
	if !rep.Incomplete {
		t.Fatalf("report must be marked incomplete")
	}
	if n := len(rep.PerFile); n == 0 || n >= len(in) {
		t.Fatalf("expected a partial report, got %d files", n)
	}
	if rep.PerFile[0].Path != "A.java" {
		t.Fatalf("results must keep input order")
	}
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := pipeline.Run(ctx, pipeline.Config{Source: lang.Java, Target: lang.Go}, files("A.java", cleanJava))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !rep.Incomplete || len(rep.PerFile) != 0 || rep.AggregateAccuracy != nil {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestPanickingTaskIsAggregationError(t *testing.T) {
	cfg := pipeline.Config{Source: lang.Java, Target: lang.Go}
	cfg.Progress = pipeline.SinkFunc(func(ev pipeline.Event) {
		if ev.Stage == pipeline.StageConvert && ev.Path == "B.java" {
			panic("boom")
		}
	})
	_, err := pipeline.Run(context.Background(), cfg, files("A.java", cleanJava, "B.java", cleanJava))
	var ae *pipeline.AggregationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
	if ae.Index != 1 || ae.Cause != "boom" {
		t.Fatalf("unexpected error %+v", ae)
	}
}

func TestProgressEndsInTerminalStage(t *testing.T) {
	in := files("A.java", cleanJava, "notes.txt", "plain words", "B.java", unclosedJava)
	ch := make(chan pipeline.Event, 64)
	_ = mustRun(t, pipeline.Config{Source: lang.Java, Target: lang.JavaScript, Progress: pipeline.ChannelSink(ch)}, in)
	close(ch)
	last := map[int]pipeline.Stage{}
	for ev := range ch {
		if ev.Total != len(in) {
			t.Fatalf("event total = %d", ev.Total)
		}
		last[ev.Index] = ev.Stage
	}
	want := map[int]pipeline.Stage{0: pipeline.StageDone, 1: pipeline.StageSkipped, 2: pipeline.StageDone}
	for i, st := range want {
		if last[i] != st {
			t.Fatalf("file %d ended in %v, want %v", i, last[i], st)
		}
	}
}

func TestBundleRetainsArtifacts(t *testing.T) {
	in := files("A.java", cleanJava, "notes.txt", "plain words", "B.java", cleanJava)
	cfg := pipeline.Config{Source: lang.Java, Target: lang.Go, RetainArtifacts: true}
	b, err := pipeline.RunBundle(context.Background(), cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(b.Artifacts) != 2 || b.Artifacts[1].File.Path != "B.java" {
		t.Fatalf("expected two artifacts in input order, got %d", len(b.Artifacts))
	}
	if b.Artifacts[0].Model.Count() != 2 || b.Artifacts[0].Metrics.Cyclomatic < 1 {
		t.Fatalf("unexpected artifact %+v", b.Artifacts[0])
	}
	if b.RuleSet == nil || b.Report.AverageComplexity < 1 {
		t.Fatalf("bundle misses rule set or summary")
	}

	b, err = pipeline.RunBundle(context.Background(), pipeline.Config{Source: lang.Java, Target: lang.Go}, in)
	if err != nil || b.Artifacts != nil {
		t.Fatalf("artifacts must not be retained by default")
	}
}

func TestIssueLimitKeepsCounts(t *testing.T) {
	src := "with a:\n    x = 1\nwith b:\n    y = 2\nwith c:\n    z = 3\n"
	cfg := pipeline.Config{Source: lang.Python, Target: lang.JavaScript, MaxIssues: 1}
	fr := mustRun(t, cfg, files("w.py", src)).PerFile[0]
	if fr.Warnings != 3 || len(fr.Issues) != 1 || fr.Dropped != 2 {
		t.Fatalf("expected 3 warnings with 1 kept and 2 dropped, got %d / %d / %d", fr.Warnings, len(fr.Issues), fr.Dropped)
	}
	if fr.Issues[0].Location.Line != 1 {
		t.Fatalf("kept issue should be the first in source order, got %+v", fr.Issues[0])
	}
}
