package detect

import (
	"testing"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/source"
)

func file(path, hint, content string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddWithHint(path, hint, []byte(content), source.FileVirtual))
}

func TestDetectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		hint    string
		content string
		want    lang.Tag
		stage   Stage
	}{
		{"extension", "PAYROLL.CBL", "", "       DISPLAY 'HI'.", lang.COBOL, StageExtension},
		{"hint wins over extension", "script.txt", "python", "print('x')", lang.Python, StageHint},
		{"hint alias", "x", "golang", "", lang.Go, StageHint},
		{"cobol signature", "PAYROLL", "", "       IDENTIFICATION DIVISION.\n       PROGRAM-ID. PAY.\n", lang.COBOL, StageSignature},
		{"java signature", "Main", "", "import java.util.List;\nclass Main {}\n", lang.Java, StageSignature},
		{"go signature", "main", "", "package main\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n", lang.Go, StageSignature},
		{"python keywords", "snippet", "", "x = None\ny = None\nself.z = lambda: None\n", lang.Python, StageKeywords},
		{"unknown", "notes", "", "hello world, nothing to see here", lang.Unknown, StageNone},
		{"empty without extension", "empty", "", "", lang.Unknown, StageNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(file(tt.path, tt.hint, tt.content))
			if res.Lang != tt.want || res.Stage != tt.stage {
				t.Fatalf("expected %s via %s, got %s via %s (%s)", tt.want, tt.stage, res.Lang, res.Stage, res.Reason)
			}
		})
	}
}

func TestUnknownCarriesWarning(t *testing.T) {
	res := Classify(file("notes", "", "hello world"))
	if len(res.Issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(res.Issues))
	}
	if res.Issues[0].Severity != diag.SevWarning || res.Issues[0].Code != diag.DetUnknownLanguage {
		t.Fatalf("unexpected issue %+v", res.Issues[0])
	}
}

func TestUnsupportedHintFallsBack(t *testing.T) {
	res := Classify(file("Main.java", "fortran", "class Main {}"))
	if res.Lang != lang.Java || res.Stage != StageExtension {
		t.Fatalf("expected extension fallback, got %s via %s", res.Lang, res.Stage)
	}
	if len(res.Issues) != 1 || res.Issues[0].Code != diag.DetUnknownHint {
		t.Fatalf("expected unknown hint warning, got %+v", res.Issues)
	}
}

func TestBinaryContent(t *testing.T) {
	res := Classify(file("blob.py", "", "\x00\x01\x02\x00PK\x03\x04"))
	if res.Lang != lang.Unknown {
		t.Fatalf("expected binary content to be unknown, got %s", res.Lang)
	}
	if len(res.Issues) != 1 || res.Issues[0].Code != diag.DetBinaryContent {
		t.Fatalf("expected binary warning, got %+v", res.Issues)
	}
}

func TestDetectDeterministic(t *testing.T) {
	content := "const fs = require('fs');\nfunction main() { console.log('x'); }\n"
	first := Detect(file("tool", "", content))
	for i := 0; i < 20; i++ {
		if got := Detect(file("tool", "", content)); got != first {
			t.Fatalf("run %d: expected %s, got %s", i, first, got)
		}
	}
	if first != lang.JavaScript {
		t.Fatalf("expected javascript, got %s", first)
	}
}

func TestClassifierTieKeepsRegistryOrder(t *testing.T) {
	ev := NewEvidence()
	ev.Add(Hint{Lang: lang.Java, Score: 3})
	ev.Add(Hint{Lang: lang.COBOL, Score: 3})
	got := Classifier{}.Classify(ev)
	if got.Lang != lang.COBOL || got.RunnerUp != lang.Java {
		t.Fatalf("expected cobol ahead of java, got %s / %s", got.Lang, got.RunnerUp)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", got.Confidence)
	}
}

func TestClassifierEmpty(t *testing.T) {
	if got := (Classifier{}).Classify(nil); got.Lang != lang.Unknown {
		t.Fatalf("expected unknown, got %s", got.Lang)
	}
}
