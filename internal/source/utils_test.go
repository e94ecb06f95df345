package source

import (
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	got, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed {
		t.Fatalf("expected change flag")
	}
	if string(got) != "a\nb\rc\n" {
		t.Fatalf("unexpected output %q", got)
	}

	same, changed := normalizeCRLF([]byte("plain\n"))
	if changed || string(same) != "plain\n" {
		t.Fatalf("expected untouched content, got %q (changed=%v)", same, changed)
	}
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := []byte("cafe\u0301")
	got, changed := normalizeNFC(decomposed)
	if !changed {
		t.Fatalf("expected decomposed input to be normalized")
	}
	if string(got) != "caf\u00e9" {
		t.Fatalf("expected precomposed é, got %q", got)
	}
}

func TestToLineCol(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncd\n\nx"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("offset %d: expected %+v, got %+v", tt.off, tt.want, got)
		}
	}
}
