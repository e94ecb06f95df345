package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

const helloCOBOL = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. HELLO.
       PROCEDURE DIVISION.
       MAIN-LOGIC.
           DISPLAY "Hello".
           STOP RUN.
`

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDominantLanguage(t *testing.T) {
	fs := source.NewFileSet()
	var files []*source.File
	for name, body := range map[string]string{
		"a.py":      "x = 1\n",
		"b.py":      "y = 2\n",
		"C.java":    "class C {}\n",
		"notes.txt": "plain words\n",
	} {
		files = append(files, fs.Get(fs.AddVirtual(name, []byte(body))))
	}
	if got := dominantLanguage(files); got != lang.Python {
		t.Fatalf("got %v", got)
	}
	if got := dominantLanguage(files[:0]); got != lang.Unknown {
		t.Fatalf("empty input: got %v", got)
	}
}

func TestWriteOutputsSkipsSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	acc := 1.0
	rep := &pipeline.Report{PerFile: []pipeline.FileResult{
		{Path: "src/pay.cbl", TargetPath: "src/pay.py", Output: "print(1)\n", Accuracy: &acc},
		{Path: "notes.txt", Skipped: true},
	}}
	if err := writeOutputs(dir, rep); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "src", "pay.py"))
	if err != nil || string(data) != "print(1)\n" {
		t.Fatalf("unexpected output %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("only converted files are written, got %d entries", len(entries))
	}
}

func TestWriteOutputsStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")
	rep := &pipeline.Report{PerFile: []pipeline.FileResult{
		{Path: "../proj/Hello.cbl", TargetPath: "../proj/Hello.py", Output: "a\n"},
		{Path: "/abs/Pay.cbl", TargetPath: "/abs/Pay.py", Output: "b\n"},
	}}
	if err := writeOutputs(dir, rep); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, name := range []string{"Hello.py", "Pay.py"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not written inside the output directory: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "proj")); !os.IsNotExist(err) {
		t.Fatalf("output escaped the output directory: %v", err)
	}
}

func TestConvertCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CODESHIFT_CACHE_DIR", filepath.Join(dir, "cache"))
	if err := os.WriteFile("hello.cbl", []byte(helloCOBOL), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"convert", "--to", "python", "--ui", "off", "--color", "off",
		"--out", "out", "--report", "report.json", "--docs", "doc.md", "hello.cbl"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert: %v\n%s", err, out.String())
	}

	if !strings.Contains(out.String(), "cobol -> python: 1 file(s) converted, 0 skipped, accuracy 100.0%") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
	converted, err := os.ReadFile(filepath.Join("out", "hello.py"))
	if err != nil || !strings.Contains(string(converted), `print("Hello")`) {
		t.Fatalf("converted file: %q, %v", converted, err)
	}

	data, err := os.ReadFile("report.json")
	if err != nil {
		t.Fatal(err)
	}
	var rep struct {
		RequestID      string `json:"requestId"`
		SourceLanguage string `json:"sourceLanguage"`
		PerFile        []struct {
			Path string `json:"path"`
		} `json:"perFile"`
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.RequestID == "" || rep.SourceLanguage != "cobol" || len(rep.PerFile) != 1 || rep.PerFile[0].Path != "hello.cbl" {
		t.Fatalf("unexpected report %s", data)
	}

	doc, err := os.ReadFile("doc.md")
	if err != nil || !strings.HasPrefix(string(doc), "# Conversion Report\n") {
		t.Fatalf("docs: %q, %v", doc, err)
	}
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--format", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if payload.Tool != "codeshift" || payload.Version == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
