package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDiscoverHonoursIgnoreAndVendor(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".gitignore", "generated/\n*.tmp.py\n")
	touch(t, root, "src/Main.java", "class Main {}\n")
	touch(t, root, "src/util.py", "x = 1\n")
	touch(t, root, "src/scratch.tmp.py", "x = 2\n")
	touch(t, root, "generated/Out.java", "class Out {}\n")
	touch(t, root, "vendor/lib/lib.go", "package lib\n")
	touch(t, root, "node_modules/m/index.js", "module.exports = 1\n")
	touch(t, root, "legacy/PAY.cbl", "       IDENTIFICATION DIVISION.\n")
	touch(t, root, "README.md", "# readme\n")
	touch(t, root, ".hidden/x.py", "x = 3\n")

	paths, err := discoverPaths([]string{root}, []string{"legacy/"})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{"src/Main.java", "src/util.py"}
	if got := rels(t, root, paths); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDiscoverKeepsExplicitFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "notes.txt", "hello\n")
	touch(t, root, "a/b.go", "package a\n")
	explicit := filepath.Join(root, "notes.txt")
	paths, err := discoverPaths([]string{explicit, filepath.Join(root, "a"), explicit}, nil)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got := rels(t, root, paths); !reflect.DeepEqual(got, []string{"notes.txt", "a/b.go"}) {
		t.Fatalf("unexpected paths %v", got)
	}
	if _, err := discoverPaths([]string{filepath.Join(root, "missing")}, nil); err == nil {
		t.Fatalf("expected stat error")
	}
}

func TestLoadFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.py", "x = 1\r\n")
	fs, files, err := loadFiles([]string{filepath.Join(root, "a.py")}, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fs.Len() != 1 || string(files[0].Content) != "x = 1\n" {
		t.Fatalf("unexpected content %q", files[0].Content)
	}
}

func TestUnderDir(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "work")
	if got := underDir(dir, filepath.Join(dir, "src", "a.py")); got != filepath.Join("src", "a.py") {
		t.Fatalf("got %q", got)
	}
	outside := filepath.Join(string(filepath.Separator), "elsewhere", "b.py")
	if got := underDir(dir, outside); got != outside {
		t.Fatalf("got %q", got)
	}
}
