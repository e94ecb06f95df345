package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint", Span{File: 1, Start: 0, End: 2}, Span{File: 1, Start: 5, End: 9}, Span{File: 1, Start: 0, End: 9}},
		{"nested", Span{File: 1, Start: 0, End: 10}, Span{File: 1, Start: 2, End: 3}, Span{File: 1, Start: 0, End: 10}},
		{"other file", Span{File: 1, Start: 4, End: 6}, Span{File: 2, Start: 0, End: 9}, Span{File: 1, Start: 4, End: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSpanContainsAndOverlaps(t *testing.T) {
	outer := Span{Start: 10, End: 20}
	if !outer.Contains(Span{Start: 10, End: 20}) {
		t.Fatalf("span must contain itself")
	}
	if outer.Contains(Span{Start: 9, End: 15}) {
		t.Fatalf("span starting before outer must not be contained")
	}
	if outer.Overlaps(Span{Start: 20, End: 25}) {
		t.Fatalf("adjacent spans must not overlap")
	}
	if !outer.Overlaps(Span{Start: 19, End: 25}) {
		t.Fatalf("expected overlap")
	}
	if (Span{Start: 3, End: 3}).Len() != 0 || !(Span{Start: 3, End: 3}).Empty() {
		t.Fatalf("expected empty span")
	}
}
