package docgen_test

import (
	"context"
	"strings"
	"testing"

	"codeshift/internal/diag"
	"codeshift/internal/docgen"
	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

const script = "import os\nimport sys\n\ndef f(a):\n    if a == 1:\n        return 1\n    return 0\n"

func TestRenderFromRun(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("m.py", []byte(script)))
	b, err := pipeline.RunBundle(context.Background(), pipeline.Config{
		Source:          lang.Python,
		Target:          lang.Go,
		RetainArtifacts: true,
	}, []*source.File{f})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	doc := string(docgen.Render(b))
	for _, want := range []string{
		"# Conversion Report\n",
		"- Conversion: python -> go\n",
		"## Dependencies\n\n### `m.py`\n\n- `os`\n- `sys`\n",
		"| `m.py` | f | 2 |",
		"| python | 1 |",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("missing %q in:\n%s", want, doc)
		}
	}
}

func TestRenderWithoutArtifacts(t *testing.T) {
	acc := 0.5
	rep := &pipeline.Report{
		RequestID:         "r1",
		SourceLanguage:    lang.Java,
		TargetLanguage:    lang.Python,
		AggregateAccuracy: &acc,
		PerFile: []pipeline.FileResult{
			{Path: "A.java", Language: lang.Java, Accuracy: &acc, Coverage: &acc, Blocks: 2, Converted: 1, Errors: 1,
				Issues: []pipeline.Issue{{Severity: diag.SevError, Code: "STR2001"}}},
			{Path: "notes.txt", Skipped: true, Warnings: 1,
				Issues: []pipeline.Issue{{Severity: diag.SevWarning, Code: "DET1001"}}},
		},
		ManualReview: []string{"A.java"},
		Incomplete:   true,
	}
	doc := string(docgen.Render(&pipeline.Bundle{Report: rep}))
	if strings.Contains(doc, "## Dependencies") {
		t.Fatalf("dependencies need retained artifacts:\n%s", doc)
	}
	for _, want := range []string{
		"- Aggregate accuracy: 50.0%\n",
		"**Incomplete**",
		"| `notes.txt` | _skipped_ |",
		"1 error(s), 1 warning(s).",
		"| DET1001 | 1 |\n| STR2001 | 1 |\n",
		"## Manual Review\n\nAccuracy below 80%:\n\n- `A.java`\n",
		"- Review the converted code for missing functionality.\n",
		"- Add tests for the converted code; only 0.0% of blocks were converted.\n",
		"- Address the 2 reported issue(s) before deployment.\n",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("missing %q in:\n%s", want, doc)
		}
	}
}

func TestRecommendations(t *testing.T) {
	rep := &pipeline.Report{
		AggregateCoverage: 1,
		PerFile:           []pipeline.FileResult{{Path: "notes.txt", Skipped: true}},
	}
	doc := string(docgen.Render(&pipeline.Bundle{Report: rep}))
	if !strings.Contains(doc, "## Recommendations\n\n- No file was converted;") {
		t.Fatalf("missing recommendation in:\n%s", doc)
	}

	acc := 1.0
	rep = &pipeline.Report{
		AggregateAccuracy: &acc,
		AggregateCoverage: 1,
		PerFile:           []pipeline.FileResult{{Path: "a.py", Accuracy: &acc, Blocks: 1, Converted: 1}},
	}
	if doc := string(docgen.Render(&pipeline.Bundle{Report: rep})); strings.Contains(doc, "## Recommendations") {
		t.Fatalf("a clean run needs no recommendations:\n%s", doc)
	}
}

func TestRenderNil(t *testing.T) {
	if got := string(docgen.Render(nil)); !strings.Contains(got, "_No report._") {
		t.Fatalf("unexpected %q", got)
	}
}
