// Package metrics scores structural models: cyclomatic complexity per
// procedure, lines of code and comment density.
package metrics

import (
	"strings"

	"codeshift/internal/lang"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

// ImplicitProcedure names the procedure formed by file-level code.
const ImplicitProcedure = "<file>"

// Procedure is the score of one procedure block.
type Procedure struct {
	Name       string      `json:"name"`
	Cyclomatic int         `json:"cyclomatic"`
	Lines      int         `json:"lines"`
	Implicit   bool        `json:"implicit,omitempty"`
	Span       source.Span `json:"-"`
}

// Metrics holds the complexity figures of one file.
type Metrics struct {
	Cyclomatic   int         `json:"cyclomatic"`
	LOC          int         `json:"loc"`
	CommentRatio float64     `json:"commentRatio"`
	MaxDepth     int         `json:"maxDepth"`
	Blocks       int         `json:"blocks"`
	Procedures   []Procedure `json:"procedures,omitempty"`
}

// MaxProcedure returns the most complex procedure, or false when there is none.
func (m Metrics) MaxProcedure() (Procedure, bool) {
	if len(m.Procedures) == 0 {
		return Procedure{}, false
	}
	best := m.Procedures[0]
	for _, p := range m.Procedures[1:] {
		if p.Cyclomatic > best.Cyclomatic {
			best = p
		}
	}
	return best, true
}

type frame struct {
	proc  int // index into procs
	depth int
}

// Score computes the metrics of a final model. It does not modify m.
func Score(m *model.Model) Metrics {
	var spec *lang.Spec
	if tag, ok := lang.Parse(m.Language); ok {
		spec = lang.Lookup(tag)
	}

	out := Metrics{
		LOC:          m.TotalLines - m.BlankLines - m.CommentLines,
		CommentRatio: ratio(m.CommentLines, m.TotalLines),
	}
	if out.LOC < 0 {
		out.LOC = 0
	}

	var (
		procs     []Procedure
		implicit  = Procedure{Name: ImplicitProcedure, Cyclomatic: 1, Implicit: true}
		fileLevel bool
		stack     []frame // enclosing procedures, innermost last
	)
	m.Walk(func(b *model.Block, depth int) bool {
		out.Blocks++
		if depth+1 > out.MaxDepth {
			out.MaxDepth = depth + 1
		}
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		currentProc := -1
		if len(stack) > 0 {
			currentProc = stack[len(stack)-1].proc
		}

		if b.Kind == model.Procedure {
			procs = append(procs, Procedure{
				Name:       b.Ident,
				Cyclomatic: 1 + logicalOps(spec, m.HeaderText(b)),
				Lines:      lines(m.File, b.Span),
				Span:       b.Span,
			})
			stack = append(stack, frame{proc: len(procs) - 1, depth: depth})
			return true
		}

		paths := 0
		if b.Kind == model.ControlFlow && isDecision(spec, b.Ident) {
			paths++
		}
		owned := m.HeaderText(b)
		if b.Leaf() {
			owned = m.Text(b)
		}
		paths += logicalOps(spec, owned)

		if currentProc >= 0 {
			procs[currentProc].Cyclomatic += paths
			return true
		}
		if b.Kind == model.ControlFlow || b.Kind == model.Statement {
			fileLevel = true
		}
		implicit.Cyclomatic += paths
		return true
	})

	if fileLevel {
		if m.File != nil && len(m.Blocks) > 0 {
			implicit.Span = m.Blocks[0].Span.Cover(m.Blocks[len(m.Blocks)-1].Span)
			implicit.Lines = out.LOC
		}
		procs = append(procs, implicit)
	}
	for _, p := range procs {
		out.Cyclomatic += p.Cyclomatic
	}
	if out.Cyclomatic < 1 {
		out.Cyclomatic = 1
	}
	out.Procedures = procs
	return out
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(part) / float64(total)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

func lines(f *source.File, sp source.Span) int {
	if f == nil || sp.Empty() {
		return 0
	}
	start := f.Position(sp.Start)
	end := f.Position(sp.End - 1)
	return int(end.Line-start.Line) + 1
}

func isDecision(spec *lang.Spec, ident string) bool {
	if spec == nil {
		return ident != "else"
	}
	return spec.IsDecision(ident)
}

// logicalOps counts the short-circuit operators in text outside string
// literals. Word operators match whole words only.
func logicalOps(spec *lang.Spec, text string) int {
	if spec == nil || len(spec.LogicalOps) == 0 || text == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c == '"' || c == '\'' || c == '`' {
			i = skipLiteral(text, i)
			continue
		}
		if isWord(c) {
			j := i
			for j < len(text) && isWord(text[j]) {
				j++
			}
			word := text[i:j]
			for _, op := range spec.LogicalOps {
				if !isWord(op[0]) {
					continue
				}
				if op == word || spec.CaseFold && strings.EqualFold(op, word) {
					n++
					break
				}
			}
			i = j
			continue
		}
		matched := false
		for _, op := range spec.LogicalOps {
			if !isWord(op[0]) && strings.HasPrefix(text[i:], op) {
				n++
				i += len(op)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return n
}

func skipLiteral(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(text)
}

func isWord(c byte) bool {
	return c == '_' || c == '-' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
