package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"codeshift/internal/diag"
	"codeshift/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/src/Main.java", []byte("class Main {\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.StructUnclosedBlock, source.Span{File: fileID, Start: 0, End: 10}, "block is never closed"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/Main.java:1:1"},
		{"relative", PathModeRelative, "src/Main.java:1:1"},
		{"basename", PathModeBasename, "Main.java:1:1"},
		{"auto", PathModeAuto, "src/Main.java:1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			if !strings.HasPrefix(out, tt.contains) {
				t.Fatalf("expected prefix %q, got:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR STR2001: block is never closed") {
				t.Fatalf("missing header line:\n%s", out)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("       PROCEDURE DIVISION.\n           IF X > 1\n")
	fileID := fs.AddVirtual("pay.cbl", content)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.StructUnclosedBlock, source.Span{File: fileID, Start: 38, End: 46}, "IF is never closed").
		WithNote(source.Span{File: fileID, Start: 7, End: 16}, "inside this division"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	want := `pay.cbl:2:12: ERROR STR2001: IF is never closed
1 |        PROCEDURE DIVISION.
2 |            IF X > 1
  |            ^~~~~~~~
  note: pay.cbl:1:8: inside this division
`
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyTabsAndMultiLineSpan(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.go", []byte("\tif x {\n\t\ty()\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.ConvUnmappedConstruct, source.Span{File: fileID, Start: 1, End: 14}, "unmapped"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	if lines[1] != "1 |     if x {" {
		t.Fatalf("tab not expanded: %q", lines[1])
	}
	if lines[2] != "  |     ^~~~~~" {
		t.Fatalf("underline should stop at the end of the first line: %q", lines[2])
	}
}

func TestPrettyWidthTruncates(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("long.py", []byte(strings.Repeat("x", 50)+"\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.ConvUnmappedConstruct, source.Span{File: fileID, Start: 0, End: 1}, "w"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Width: 10})
	if !strings.Contains(buf.String(), "1 | xxxxxxx...\n") {
		t.Fatalf("line not truncated:\n%s", buf.String())
	}
}
