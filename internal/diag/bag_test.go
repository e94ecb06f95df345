package diag

import (
	"strings"
	"testing"

	"codeshift/internal/source"
)

func TestBagLimitAndCounts(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewWarning(ConvUnmappedConstruct, source.Span{}, "a")) {
		t.Fatalf("first add must succeed")
	}
	bag.Add(NewError(ConvMissingCapture, source.Span{}, "b"))
	if bag.Add(NewError(ConvMissingCapture, source.Span{}, "c")) {
		t.Fatalf("add beyond limit must fail")
	}
	if bag.Dropped() != 1 {
		t.Fatalf("expected one dropped diagnostic, got %d", bag.Dropped())
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
	if bag.Count(SevError) != 1 || bag.Count(SevWarning) != 1 {
		t.Fatalf("unexpected counts: errors=%d warnings=%d", bag.Count(SevError), bag.Count(SevWarning))
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	bag.Add(NewWarning(ConvUnmappedConstruct, source.Span{File: 0, Start: 10, End: 12}, "late"))
	bag.Add(NewWarning(ConvUnmappedConstruct, source.Span{File: 0, Start: 2, End: 4}, "early"))
	bag.Add(NewError(StructUnclosedBlock, source.Span{File: 0, Start: 2, End: 4}, "early error"))
	bag.Add(NewWarning(ConvUnmappedConstruct, source.Span{File: 0, Start: 2, End: 4}, "early"))

	bag.Dedup()
	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics after dedup, got %d", bag.Len())
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Severity != SevError || items[1].Message != "early" || items[2].Message != "late" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestBagReporterAndBuilder(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, StructUnclosedBlock, source.Span{Start: 1, End: 2}, "unclosed").
		WithNote(source.Span{Start: 0, End: 1}, "opened here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("builder must emit exactly once, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("expected note to be kept")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("b.cob", []byte("A.\nB.\n"))
	other := fs.AddVirtual("a.cob", []byte("X.\n"))
	out := FormatShort([]Diagnostic{
		NewWarning(ConvUnmappedConstruct, source.Span{File: id, Start: 3, End: 5}, "second"),
		NewError(StructUnclosedBlock, source.Span{File: other, Start: 0, End: 1}, "first"),
	}, fs)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "a.cob:1:1: ERROR STR2001: first" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "b.cob:2:1: WARNING CNV3001: second" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestCodeID(t *testing.T) {
	if DetUnknownLanguage.ID() != "DET1001" {
		t.Fatalf("unexpected id %s", DetUnknownLanguage.ID())
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatalf("unknown codes must fall back to the unknown title")
	}
}
