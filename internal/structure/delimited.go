package structure

import (
	"fmt"
	"slices"
	"strings"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

type bracketMark struct {
	ch byte
	at int
}

type openBlock struct {
	block *model.Block
	brace int
}

// delimScanner segments brace languages. Statements end at ';', at a case
// label colon, at '}' or (for newline-terminated languages) at a newline
// outside brackets.
type delimScanner struct {
	spec     *lang.Spec
	file     *source.File
	src      []byte
	roots    []*model.Block
	open     []openBlock
	brackets []bracketMark

	stmtStart int // -1 when no statement is pending
	stmtEnd   int

	fault *fault
}

func scanDelimited(spec *lang.Spec, f *source.File) ([]*model.Block, *fault) {
	s := &delimScanner{spec: spec, file: f, src: f.Content, stmtStart: -1}
	s.run()
	if s.fault == nil {
		s.finish()
	}
	return s.roots, s.fault
}

func (s *delimScanner) run() {
	src := s.src
	for i := 0; i < len(src) && s.fault == nil; i++ {
		c := src[i]
		switch {
		case c == '\n':
			if s.spec.NewlineEnds && len(s.brackets) == 0 && s.stmtStart >= 0 && !s.continues(i) {
				s.endStatement(s.stmtEnd)
			}
		case c == ' ' || c == '\t' || c == '\r':
		case s.lineComment(i):
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case s.spec.Comments.BlockStart != "" && hasPrefixAt(src, i, s.spec.Comments.BlockStart):
			rest := string(src[i+len(s.spec.Comments.BlockStart):])
			end := strings.Index(rest, s.spec.Comments.BlockEnd)
			if end < 0 {
				i = len(src)
				break
			}
			i += len(s.spec.Comments.BlockStart) + end + len(s.spec.Comments.BlockEnd) - 1
		case c == '"' || c == '\'' || c == '`':
			s.touch(i)
			i = skipQuoted(src, i) - 1
			s.stmtEnd = i + 1
		case c == '(' || c == '[':
			s.touch(i)
			s.brackets = append(s.brackets, bracketMark{ch: c, at: i})
		case c == ')' || c == ']':
			s.closeBracket(c, i)
		case c == '{':
			s.openBrace(i)
		case c == '}':
			s.closeBrace(i)
		case c == ';' && len(s.brackets) == 0:
			s.touch(i)
			if !s.headerSemis() {
				s.endStatement(i + 1)
			}
		case c == ':' && len(s.brackets) == 0 && s.caseLabel(i):
			s.touch(i)
			s.endStatement(i + 1)
		default:
			s.touch(i)
		}
	}
}

func (s *delimScanner) finish() {
	var (
		firstBlock   = -1
		firstBracket = -1
	)
	if len(s.open) > 0 {
		firstBlock = int(s.open[0].block.Span.Start)
	}
	if len(s.brackets) > 0 {
		firstBracket = s.brackets[0].at
	}
	switch {
	case firstBlock >= 0 && (firstBracket < 0 || firstBlock <= firstBracket):
		ob := s.open[0]
		s.fail(diag.StructUnclosedBlock, firstBlock, ob.brace+1,
			fmt.Sprintf("block %q is never closed", ob.block.Ident))
	case firstBracket >= 0:
		s.fail(diag.StructUnclosedBracket, firstBracket, firstBracket+1,
			fmt.Sprintf("'%c' is never closed", s.brackets[0].ch))
	default:
		if s.stmtStart >= 0 {
			s.endStatement(s.stmtEnd)
		}
	}
}

func (s *delimScanner) touch(i int) {
	if s.stmtStart < 0 {
		s.stmtStart = i
	}
	s.stmtEnd = i + 1
}

func (s *delimScanner) reset() {
	s.stmtStart, s.stmtEnd = -1, -1
}

func (s *delimScanner) pending() string {
	if s.stmtStart < 0 {
		return ""
	}
	return string(s.src[s.stmtStart:s.stmtEnd])
}

func (s *delimScanner) endStatement(end int) {
	if s.stmtStart < 0 {
		return
	}
	start := s.stmtStart
	s.reset()
	norm := s.spec.NormalizeHeader(string(s.src[start:end]))
	if norm == "" {
		return
	}
	kind := classify(s.spec, norm, false)
	span := source.SpanOf(s.file.ID, start, end)
	s.attach(&model.Block{Kind: kind, Ident: identify(s.spec, kind, norm), Span: span, Header: span})
}

func (s *delimScanner) attach(b *model.Block) {
	if n := len(s.open); n > 0 {
		parent := s.open[n-1].block
		parent.Children = append(parent.Children, b)
		return
	}
	s.roots = append(s.roots, b)
}

func (s *delimScanner) openBrace(i int) {
	if len(s.brackets) > 0 || s.literalBrace() {
		s.touch(i)
		s.brackets = append(s.brackets, bracketMark{ch: '{', at: i})
		return
	}
	start := i
	if s.stmtStart >= 0 {
		start = s.stmtStart
	}
	s.reset()
	norm := s.spec.NormalizeHeader(string(s.src[start:i]))
	kind := classify(s.spec, norm, true)
	ident := "block"
	if norm != "" {
		ident = identify(s.spec, kind, norm)
	}
	header := source.SpanOf(s.file.ID, start, i+1)
	s.open = append(s.open, openBlock{
		block: &model.Block{Kind: kind, Ident: ident, Span: header, Header: header},
		brace: i,
	})
}

func (s *delimScanner) closeBrace(i int) {
	if n := len(s.brackets); n > 0 {
		top := s.brackets[n-1]
		if top.ch != '{' {
			s.failWithNote(diag.StructUnexpectedCloser, i, fmt.Sprintf("'}' does not close '%c'", top.ch), top.at, "opened here")
			return
		}
		s.brackets = s.brackets[:n-1]
		s.touch(i)
		return
	}
	if len(s.open) == 0 {
		s.fail(diag.StructUnexpectedCloser, i, i+1, "'}' without matching '{'")
		return
	}
	if s.stmtStart >= 0 {
		s.endStatement(s.stmtEnd)
	}
	ob := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	ob.block.Span = source.SpanOf(s.file.ID, int(ob.block.Span.Start), i+1)
	s.attach(ob.block)
}

func (s *delimScanner) closeBracket(c byte, i int) {
	want := byte('(')
	if c == ']' {
		want = '['
	}
	n := len(s.brackets)
	if n == 0 {
		s.fail(diag.StructUnexpectedCloser, i, i+1, fmt.Sprintf("'%c' without matching '%c'", c, want))
		return
	}
	top := s.brackets[n-1]
	if top.ch != want {
		s.failWithNote(diag.StructUnexpectedCloser, i, fmt.Sprintf("'%c' does not close '%c'", c, top.ch), top.at, "opened here")
		return
	}
	s.brackets = s.brackets[:n-1]
	s.touch(i)
}

// literalBrace reports whether a '{' starts a literal (object, array,
// composite) rather than a block.
func (s *delimScanner) literalBrace() bool {
	text := strings.TrimRight(s.pending(), " \t\r\n")
	if text == "" {
		return false
	}
	tail := tailToken(text)
	if slices.Contains(s.spec.LiteralAfter, tail) {
		return true
	}
	if tail == ")" || tail == "=>" || tail == "->" {
		return false
	}
	if k, ok := s.spec.ClassifyHeader(text); ok && k == model.ControlFlow {
		return false
	}
	return s.spec.Lead(text) == "return" || hasAssignment(text)
}

func (s *delimScanner) headerSemis() bool {
	lead := s.spec.Lead(s.pending())
	return lead != "" && slices.Contains(s.spec.HeaderSemis, lead)
}

func (s *delimScanner) caseLabel(i int) bool {
	if i+1 < len(s.src) && (s.src[i+1] == '=' || s.src[i+1] == ':') {
		return false
	}
	lead := s.spec.Lead(s.pending())
	return lead == "case" || lead == "default"
}

// continues reports whether the pending statement carries on past the
// newline at i.
func (s *delimScanner) continues(i int) bool {
	text := strings.TrimRight(s.pending(), " \t\r")
	if text == "" {
		return false
	}
	if strings.HasSuffix(text, "++") || strings.HasSuffix(text, "--") {
		return false
	}
	if strings.ContainsRune("+-*/%=&|^<>!,.?:", rune(text[len(text)-1])) {
		return true
	}
	j := i + 1
	for j < len(s.src) && (s.src[j] == ' ' || s.src[j] == '\t' || s.src[j] == '\r' || s.src[j] == '\n') {
		j++
	}
	if j >= len(s.src) {
		return false
	}
	next := s.src[j:]
	return next[0] == '.' && !hasPrefixAt(next, 0, "...") ||
		hasPrefixAt(next, 0, "&&") || hasPrefixAt(next, 0, "||") || hasPrefixAt(next, 0, "?")
}

func (s *delimScanner) lineComment(i int) bool {
	for _, p := range s.spec.Comments.Line {
		if hasPrefixAt(s.src, i, p) {
			return true
		}
	}
	return false
}

func (s *delimScanner) fail(code diag.Code, at, end int, msg string) {
	if s.fault != nil {
		return
	}
	s.fault = &fault{code: code, at: at, end: end, msg: msg}
}

func (s *delimScanner) failWithNote(code diag.Code, at int, msg string, noteAt int, note string) {
	if s.fault != nil {
		return
	}
	s.fail(code, at, at+1, msg)
	s.fault.note = &diag.Note{Span: source.SpanOf(s.file.ID, noteAt, noteAt+1), Msg: note}
}

func hasPrefixAt(src []byte, i int, p string) bool {
	return len(src)-i >= len(p) && string(src[i:i+len(p)]) == p
}

// skipQuoted returns the offset just past the literal opening at i.
func skipQuoted(src []byte, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			if quote != '`' {
				j++
			}
		case '\n':
			if quote != '`' {
				// unterminated; stop at end of line
				return j
			}
		case quote:
			return j + 1
		}
	}
	return len(src)
}

// tailToken returns the last token of text: an identifier, a single closing
// bracket, or a run of operator characters.
func tailToken(text string) string {
	j := len(text)
	last := text[j-1]
	switch {
	case isIdentByte(last):
		for j > 0 && isIdentByte(text[j-1]) {
			j--
		}
	case last == ')' || last == ']' || last == '"' || last == '\'' || last == '`':
		return text[j-1:]
	default:
		for j > 0 && !isIdentByte(text[j-1]) && !strings.ContainsRune(" \t\n)]}\"'`", rune(text[j-1])) {
			j--
		}
	}
	return text[j:]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// hasAssignment reports whether text holds an assignment operator outside
// brackets and string literals.
func hasAssignment(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"', '\'', '`':
			i = skipQuoted([]byte(text), i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i > 0 && strings.ContainsRune("=!<>", rune(text[i-1])) {
				continue
			}
			if i+1 < len(text) && (text[i+1] == '=' || text[i+1] == '>') {
				continue
			}
			return true
		}
	}
	return false
}
