package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeshift/internal/lang"
	"codeshift/internal/pipeline"
	"codeshift/internal/source"
)

func inputs(src string) []*source.File {
	fs := source.NewFileSet()
	return []*source.File{
		fs.Get(fs.AddVirtual("A.java", []byte(src))),
		fs.Get(fs.AddVirtual("notes.txt", []byte("plain words"))),
	}
}

func TestRoundTrip(t *testing.T) {
	files := inputs("int x = 1;\nclass A {\n")
	cfg := pipeline.Config{Source: lang.Java, Target: lang.Python}
	b, err := pipeline.RunBundle(context.Background(), cfg, files)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key(b.RuleSet.Fingerprint(), files)
	if err := store.Put(key, FromReport(b.Report)); err != nil {
		t.Fatalf("put: %v", err)
	}

	p, ok, err := store.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	rep, err := p.Report(inputs("int x = 1;\nclass A {\n"))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !rep.Cached || rep.RequestID != b.Report.RequestID {
		t.Fatalf("unexpected header %+v", rep)
	}
	got, want := rep.PerFile[0], b.Report.PerFile[0]
	if got.Output != want.Output || *got.Accuracy != *want.Accuracy || got.Metrics.LOC != want.Metrics.LOC {
		t.Fatalf("file result differs:\n got %+v\nwant %+v", got, want)
	}
	if len(got.Issues) != len(want.Issues) || got.Issues[0] != want.Issues[0] {
		t.Fatalf("issues differ:\n got %+v\nwant %+v", got.Issues, want.Issues)
	}
	if !rep.PerFile[1].Skipped || rep.PerFile[1].Accuracy != nil {
		t.Fatalf("skipped file lost its state: %+v", rep.PerFile[1])
	}
}

func TestKeyDependsOnContentAndRules(t *testing.T) {
	a := Key("rules", inputs("class A {}\n"))
	if a != Key("rules", inputs("class A {}\n")) {
		t.Fatalf("key is not deterministic")
	}
	if a == Key("rules", inputs("class B {}\n")) {
		t.Fatalf("content change must change the key")
	}
	if a == Key("other", inputs("class A {}\n")) {
		t.Fatalf("rule change must change the key")
	}
}

func TestMissAndIncomplete(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("x", nil)
	if _, ok, err := store.Get(key); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(key, &Payload{Incomplete: true}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestForeignPayloadIsMiss(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("x", nil)
	if err := store.Put(key, &Payload{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	other := Key("y", nil)
	if err := os.MkdirAll(filepath.Dir(store.pathFor(other)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(store.pathFor(key), store.pathFor(other)); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Get(other); ok || err != nil {
		t.Fatalf("payload under the wrong key must miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestDefaultDirHonoursEnv(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/cs-cache")
	if dir, err := DefaultDir(); err != nil || dir != "/tmp/cs-cache" {
		t.Fatalf("DefaultDir = %q, %v", dir, err)
	}
	t.Setenv(EnvDir, "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := DefaultDir(); dir != filepath.Join("/tmp/xdg", "codeshift") {
		t.Fatalf("DefaultDir = %q", dir)
	}
}

func TestClearDropsMemory(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("x", nil)
	if err := store.Put(key, &Payload{RequestID: "r"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if p, ok, err := store.Get(key); !ok || err != nil || p.RequestID != "r" {
		t.Fatalf("expected hit, got %v %v", ok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, err := store.Get(key); ok || err != nil {
		t.Fatalf("cleared entry must miss, got ok=%v err=%v", ok, err)
	}
}
