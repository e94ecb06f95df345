package structure

import (
	"fmt"
	"slices"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

// fault is the first structural error found in a file.
type fault struct {
	code diag.Code
	at   int
	end  int
	msg  string
	note *diag.Note
}

// Build analyzes f as language tag. The returned issues hold at most one
// structural error.
func Build(f *source.File, tag lang.Tag) (*model.Model, []diag.Diagnostic) {
	spec := lang.Lookup(tag)
	if spec == nil {
		panic(fmt.Sprintf("structure: no registry entry for %s", tag))
	}

	m := &model.Model{File: f, Language: spec.Name}
	countLines(spec, f.Content, m)
	m.Deps = Dependencies(spec, f.Content)

	var (
		blocks []*model.Block
		flt    *fault
	)
	switch spec.Grammar {
	case lang.GrammarDelimited:
		blocks, flt = scanDelimited(spec, f)
	case lang.GrammarIndented:
		blocks, flt = scanIndented(spec, f)
	case lang.GrammarKeywordPair:
		blocks, flt = scanKeywordPair(spec, f)
	default:
		panic(fmt.Sprintf("structure: %s has no grammar", spec.Name))
	}
	m.Blocks = blocks

	if flt == nil {
		return m, nil
	}
	m.Truncated = true
	m.FaultAt = source.SpanOf(f.ID, flt.at, flt.at).Start
	end := flt.end
	if end < flt.at {
		end = flt.at
	}
	d := diag.NewError(flt.code, source.SpanOf(f.ID, flt.at, end), flt.msg)
	if flt.note != nil {
		d = d.WithNote(flt.note.Span, flt.note.Msg)
	}
	return m, []diag.Diagnostic{d}
}

// Dependencies extracts the sorted, de-duplicated dependency names of a file.
func Dependencies(spec *lang.Spec, content []byte) []string {
	seen := map[string]struct{}{}
	for _, ip := range spec.Imports {
		idx := ip.Pattern.SubexpIndex("dep")
		if idx < 0 {
			continue
		}
		for _, m := range ip.Pattern.FindAllSubmatch(content, -1) {
			for _, name := range splitDeps(string(m[idx]), ip.Mode) {
				seen[name] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
