package structure

import (
	"fmt"
	"strings"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

// logicalLine is one Python logical line: physical lines joined by open
// brackets or a trailing backslash, comments and blank lines excluded.
type logicalLine struct {
	start, end int
	indent     int
}

type indentFrame struct {
	block        *model.Block
	headerIndent int
	bodyIndent   int // -1 until the first body line
	lastEnd      int
}

// splitLogical cuts src into logical lines. A bracket still open at the end
// of input, or a closer without opener, is reported as a fault.
func splitLogical(f *source.File) ([]logicalLine, *fault) {
	src := f.Content
	var lines []logicalLine
	i := 0
	for i < len(src) {
		col, j := 0, i
		for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\f') {
			if src[j] == '\t' {
				col = (col/8 + 1) * 8
			} else {
				col++
			}
			j++
		}
		if j >= len(src) {
			break
		}
		if src[j] == '\n' || src[j] == '\r' || src[j] == '#' {
			for j < len(src) && src[j] != '\n' {
				j++
			}
			i = j + 1
			continue
		}

		start, end, k := j, j, j
		var stack []bracketMark
	scan:
		for k < len(src) {
			c := src[k]
			switch {
			case c == '#':
				for k < len(src) && src[k] != '\n' {
					k++
				}
				continue
			case c == '"' || c == '\'':
				k = skipPyString(src, k)
				end = k
				continue
			case c == '(' || c == '[' || c == '{':
				stack = append(stack, bracketMark{ch: c, at: k})
			case c == ')' || c == ']' || c == '}':
				if len(stack) == 0 {
					return lines, &fault{code: diag.StructUnexpectedCloser, at: k, end: k + 1,
						msg: fmt.Sprintf("'%c' without matching opener", c)}
				}
				stack = stack[:len(stack)-1]
			case c == '\\' && k+1 < len(src) && src[k+1] == '\n':
				k += 2
				continue
			case c == '\n':
				if len(stack) == 0 {
					break scan
				}
				k++
				continue
			}
			if c != ' ' && c != '\t' && c != '\r' {
				end = k + 1
			}
			k++
		}
		if len(stack) > 0 {
			return lines, &fault{code: diag.StructUnclosedBracket, at: stack[0].at, end: stack[0].at + 1,
				msg: fmt.Sprintf("'%c' is never closed", stack[0].ch)}
		}
		lines = append(lines, logicalLine{start: start, end: end, indent: col})
		i = k + 1
	}
	return lines, nil
}

// skipPyString returns the offset just past the string literal at i,
// handling triple quotes.
func skipPyString(src []byte, i int) int {
	q := src[i]
	if i+2 < len(src) && src[i+1] == q && src[i+2] == q {
		triple := string([]byte{q, q, q})
		for j := i + 3; j < len(src); j++ {
			if src[j] == '\\' {
				j++
				continue
			}
			if hasPrefixAt(src, j, triple) {
				return j + 3
			}
		}
		return len(src)
	}
	return skipQuoted(src, i)
}

type indentScanner struct {
	spec   *lang.Spec
	file   *source.File
	roots  []*model.Block
	frames []*indentFrame
	base   int // indentation of the first logical line
}

func scanIndented(spec *lang.Spec, f *source.File) ([]*model.Block, *fault) {
	lines, lineFault := splitLogical(f)
	s := &indentScanner{spec: spec, file: f}
	if len(lines) > 0 {
		s.base = lines[0].indent
	}
	for _, ln := range lines {
		if flt := s.line(ln); flt != nil {
			return s.roots, flt
		}
	}
	if lineFault != nil {
		return s.roots, lineFault
	}
	if n := len(s.frames); n > 0 && s.frames[n-1].bodyIndent < 0 {
		return s.roots, s.noBody(s.frames[n-1])
	}
	for len(s.frames) > 0 {
		s.closeTop()
	}
	return s.roots, nil
}

func (s *indentScanner) line(ln logicalLine) *fault {
	if n := len(s.frames); n > 0 && s.frames[n-1].bodyIndent < 0 {
		top := s.frames[n-1]
		if ln.indent <= top.headerIndent {
			return s.noBody(top)
		}
		top.bodyIndent = ln.indent
	} else {
		for len(s.frames) > 0 && ln.indent < s.frames[len(s.frames)-1].bodyIndent {
			s.closeTop()
		}
		want := s.base
		if n := len(s.frames); n > 0 {
			want = s.frames[n-1].bodyIndent
		}
		if ln.indent != want {
			msg := "unexpected indent"
			if ln.indent < want {
				msg = "unindent does not match any outer indentation level"
			}
			return &fault{code: diag.StructBadIndent, at: ln.start, end: ln.end, msg: msg}
		}
	}

	text := string(s.file.Content[ln.start:ln.end])
	norm := s.spec.NormalizeHeader(text)
	span := source.SpanOf(s.file.ID, ln.start, ln.end)
	lead := s.spec.Lead(norm)

	if s.isHeader(text, lead) {
		kind := s.headerKind(norm, lead)
		s.frames = append(s.frames, &indentFrame{
			block:        &model.Block{Kind: kind, Ident: identify(s.spec, kind, norm), Span: span, Header: span},
			headerIndent: ln.indent,
			bodyIndent:   -1,
			lastEnd:      ln.end,
		})
		return nil
	}

	kind := classify(s.spec, norm, false)
	if lead == "def" || lead == "async" {
		kind = model.Procedure
	}
	s.attach(&model.Block{Kind: kind, Ident: identify(s.spec, kind, norm), Span: span, Header: span}, ln.end)
	return nil
}

func (s *indentScanner) isHeader(text, lead string) bool {
	code := strings.TrimSpace(text)
	if !strings.HasSuffix(code, ":") {
		// a trailing comment after the colon
		if idx := strings.LastIndex(code, "#"); idx > 0 {
			code = strings.TrimSpace(code[:idx])
		}
		if !strings.HasSuffix(code, ":") {
			return false
		}
	}
	switch lead {
	case "def", "async", "class":
		return true
	}
	_, ok := s.spec.ClassifyHeader(lead)
	return ok && lead != "import" && lead != "from"
}

func (s *indentScanner) headerKind(norm, lead string) model.Kind {
	switch lead {
	case "def", "async":
		return model.Procedure
	case "class":
		return model.Declaration
	}
	if k, ok := s.spec.ClassifyHeader(norm); ok {
		return k
	}
	return model.Statement
}

func (s *indentScanner) attach(b *model.Block, end int) {
	if n := len(s.frames); n > 0 {
		top := s.frames[n-1]
		top.block.Children = append(top.block.Children, b)
		if end > top.lastEnd {
			top.lastEnd = end
		}
		return
	}
	s.roots = append(s.roots, b)
}

func (s *indentScanner) closeTop() {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	top.block.Span = source.SpanOf(s.file.ID, int(top.block.Span.Start), top.lastEnd)
	s.attach(top.block, top.lastEnd)
}

func (s *indentScanner) noBody(fr *indentFrame) *fault {
	return &fault{
		code: diag.StructUnclosedBlock,
		at:   int(fr.block.Header.Start),
		end:  int(fr.block.Header.End),
		msg:  fmt.Sprintf("expected an indented block after %q", fr.block.Ident),
	}
}
