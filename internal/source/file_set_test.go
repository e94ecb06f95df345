package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.cob", []byte("hello world"), 0)
	id2 := fs.Add("test.cob", []byte("hello universe"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected sequential ids 0,1; got %d,%d", id1, id2)
	}

	latest, ok := fs.GetByPath("test.cob")
	if !ok || latest.ID != id2 {
		t.Fatalf("expected latest file to be %d", id2)
	}
	if string(fs.Get(id1).Content) != "hello world" {
		t.Fatalf("older file version must stay reachable")
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("a.py", []byte("a\nb\n")))

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
	if file.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", file.LineCount())
	}
}

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.cbl")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("DISPLAY \"x\".\r\nSTOP RUN.\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path, "cobol")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "DISPLAY \"x\".\nSTOP RUN.\n" {
		t.Fatalf("unexpected normalized content %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", file.Flags)
	}
	if file.Hint != "cobol" {
		t.Fatalf("expected hint to be kept, got %q", file.Hint)
	}
}

func TestFileText(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("x.go", []byte("package main\n")))
	if got := file.Text(Span{Start: 0, End: 7}); got != "package" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := file.Text(Span{Start: 8, End: 100}); got != "main\n" {
		t.Fatalf("expected clamped text, got %q", got)
	}
	if fs.Get(42) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}
