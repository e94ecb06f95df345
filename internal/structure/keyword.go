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

type cobTokKind uint8

const (
	cobWord cobTokKind = iota
	cobString
	cobPeriod
)

type cobTok struct {
	kind       cobTokKind
	word       string // upper case, words only
	start, end int
}

// cobolVerbs start a statement. Scope terminators tracked by the scanner are
// listed too; other END-xxx words stay inside their statement.
var cobolVerbs = []string{
	"ACCEPT", "ADD", "ALTER", "CALL", "CANCEL", "CLOSE", "COMPUTE", "CONTINUE", "COPY",
	"DELETE", "DISPLAY", "DIVIDE", "ELSE", "END-EVALUATE", "END-IF", "END-PERFORM",
	"EVALUATE", "EXIT", "GO", "GOBACK", "IF", "INITIALIZE", "INSPECT", "MERGE", "MOVE",
	"MULTIPLY", "OPEN", "PERFORM", "READ", "RELEASE", "RETURN", "REWRITE", "SEARCH",
	"SET", "SORT", "START", "STOP", "STRING", "SUBTRACT", "UNSTRING", "WHEN", "WRITE",
}

func isVerb(t cobTok) bool {
	return t.kind == cobWord && slices.Contains(cobolVerbs, t.word)
}

// tokenizeCOBOL splits fixed or free form COBOL into words, literals and
// sentence periods. Sequence numbers and comment lines are skipped.
func tokenizeCOBOL(spec *lang.Spec, src []byte) []cobTok {
	var toks []cobTok
	lineStart := 0
	for lineStart < len(src) {
		lineEnd := lineStart
		for lineEnd < len(src) && src[lineEnd] != '\n' {
			lineEnd++
		}
		line := string(src[lineStart:lineEnd])
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !isCommentLine(spec.Comments, strings.TrimRight(line, " \t\r"), trimmed) {
			from := 0
			if len(line) >= 7 && isSequenceArea(line[:6]) && strings.TrimSpace(line[:6]) != "" {
				from = 6
				if line[6] == '-' || line[6] == ' ' {
					from = 7
				}
			}
			toks = lexCOBOLLine(toks, src, lineStart+from, lineEnd)
		}
		lineStart = lineEnd + 1
	}
	return toks
}

func lexCOBOLLine(toks []cobTok, src []byte, i, end int) []cobTok {
	for i < end {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == ',' || c == ';':
			i++
		case hasPrefixAt(src[:end], i, "*>"):
			return toks
		case c == '"' || c == '\'':
			j := i + 1
			for j < end {
				if src[j] == c {
					if j+1 < end && src[j+1] == c {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			if j > end {
				j = end
			}
			toks = append(toks, cobTok{kind: cobString, start: i, end: j})
			i = j
		case c == '.' && (i+1 >= end || src[i+1] == ' ' || src[i+1] == '\r' || src[i+1] == '\t'):
			toks = append(toks, cobTok{kind: cobPeriod, start: i, end: i + 1})
			i++
		default:
			j := i
			for j < end && src[j] != ' ' && src[j] != '\t' && src[j] != '\r' && src[j] != '"' && src[j] != '\'' {
				if src[j] == '.' && (j+1 >= end || src[j+1] == ' ' || src[j+1] == '\r' || src[j+1] == '\t') {
					break
				}
				j++
			}
			word := strings.TrimRight(string(src[i:j]), ",;")
			toks = append(toks, cobTok{kind: cobWord, word: strings.ToUpper(word), start: i, end: i + len(word)})
			i = j
		}
	}
	return toks
}

type cobScope uint8

const (
	scopeIf cobScope = iota
	scopeElse
	scopePerform
	scopeEvaluate
	scopeWhen
	scopeGroup
	scopeParagraph
)

type cobFrame struct {
	block   *model.Block
	scope   cobScope
	level   int // data groups only
	lastEnd int
}

type keywordScanner struct {
	spec     *lang.Spec
	file     *source.File
	toks     []cobTok
	roots    []*model.Block
	frames   []*cobFrame
	division string
	fault    *fault
}

func scanKeywordPair(spec *lang.Spec, f *source.File) ([]*model.Block, *fault) {
	s := &keywordScanner{spec: spec, file: f, toks: tokenizeCOBOL(spec, f.Content)}
	s.run()
	if s.fault == nil {
		s.finish()
	}
	return s.roots, s.fault
}

func (s *keywordScanner) run() {
	p := 0
	for p < len(s.toks) && s.fault == nil {
		// division headers switch mode from anywhere
		if s.isHeading(p, "DIVISION") {
			if !s.closeAll(p) {
				return
			}
			s.division = s.toks[p].word
			p = s.leafSentence(p, model.Declaration)
			continue
		}
		if s.division == "PROCEDURE" {
			p = s.procedure(p)
			continue
		}
		p = s.dataOrHeading(p)
	}
}

func (s *keywordScanner) finish() {
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		if top.scope != scopeParagraph && top.scope != scopeGroup {
			outer := s.outermostScope()
			s.fail(diag.StructUnclosedBlock, int(outer.block.Header.Start), int(outer.block.Header.End),
				fmt.Sprintf("%s is never closed", strings.ToUpper(outer.block.Ident)))
			return
		}
		s.closeTop(top.lastEnd)
	}
}

// isHeading reports whether the sentence at p is "<word> <kind> ...".
func (s *keywordScanner) isHeading(p int, kind string) bool {
	return p+1 < len(s.toks) && s.toks[p].kind == cobWord && s.toks[p+1].kind == cobWord && s.toks[p+1].word == kind
}

// sentenceEnd returns the index just past the period ending the sentence at p.
func (s *keywordScanner) sentenceEnd(p int) int {
	for q := p; q < len(s.toks); q++ {
		if s.toks[q].kind == cobPeriod {
			return q + 1
		}
	}
	return len(s.toks)
}

func (s *keywordScanner) span(from, to int) source.Span {
	return source.SpanOf(s.file.ID, s.toks[from].start, s.toks[to-1].end)
}

func (s *keywordScanner) newBlock(kind model.Kind, header source.Span) *model.Block {
	norm := s.spec.NormalizeHeader(s.file.Text(header))
	return &model.Block{Kind: kind, Ident: identify(s.spec, kind, norm), Span: header, Header: header}
}

// leafSentence emits the whole sentence at p as one leaf and returns the
// index after it.
func (s *keywordScanner) leafSentence(p int, kind model.Kind) int {
	q := s.sentenceEnd(p)
	sp := s.span(p, q)
	s.attach(s.newBlock(kind, sp), int(sp.End))
	return q
}

func (s *keywordScanner) attach(b *model.Block, end int) {
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

func (s *keywordScanner) push(b *model.Block, scope cobScope, level int) {
	s.frames = append(s.frames, &cobFrame{block: b, scope: scope, level: level, lastEnd: int(b.Header.End)})
}

func (s *keywordScanner) closeTop(end int) {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	if end < top.lastEnd {
		end = top.lastEnd
	}
	top.block.Span = source.SpanOf(s.file.ID, int(top.block.Span.Start), end)
	s.attach(top.block, end)
}

// closeAll closes paragraphs and data groups before a new division or
// paragraph. Open statement scopes make that a fault.
func (s *keywordScanner) closeAll(p int) bool {
	if outer := s.outermostScope(); outer != nil {
		s.fail(diag.StructUnclosedBlock, int(outer.block.Header.Start), int(outer.block.Header.End),
			fmt.Sprintf("%s is not closed before %s", strings.ToUpper(outer.block.Ident), s.toks[p].word))
		return false
	}
	for len(s.frames) > 0 {
		s.closeTop(s.frames[len(s.frames)-1].lastEnd)
	}
	return true
}

func (s *keywordScanner) outermostScope() *cobFrame {
	for _, fr := range s.frames {
		if fr.scope != scopeParagraph && fr.scope != scopeGroup {
			return fr
		}
	}
	return nil
}

func (s *keywordScanner) fail(code diag.Code, at, end int, msg string) {
	if s.fault == nil {
		s.fault = &fault{code: code, at: at, end: end, msg: msg}
	}
}

// dataOrHeading handles one sentence outside the procedure division.
func (s *keywordScanner) dataOrHeading(p int) int {
	t := s.toks[p]
	level, isLevel := levelNumber(t)
	if !isLevel {
		// FD, SD, SELECT, sections and identification paragraphs
		for len(s.frames) > 0 {
			s.closeTop(s.frames[len(s.frames)-1].lastEnd)
		}
		q := s.sentenceEnd(p)
		// "PROGRAM-ID. NAME." is one paragraph although it holds two periods
		if q-p == 2 && q < len(s.toks) && s.toks[q].kind != cobPeriod && !s.isHeading(q, "DIVISION") && !s.isHeading(q, "SECTION") &&
			(s.division == "IDENTIFICATION" || s.division == "ENVIRONMENT") {
			q = s.sentenceEnd(q)
		}
		sp := s.span(p, q)
		s.attach(s.newBlock(model.Declaration, sp), int(sp.End))
		return q
	}

	q := s.sentenceEnd(p)
	switch level {
	case 66, 88:
		sp := s.span(p, q)
		s.attach(s.newBlock(model.Declaration, sp), int(sp.End))
		return q
	case 77:
		level = 1
	}
	for len(s.frames) > 0 && s.frames[len(s.frames)-1].level >= level {
		s.closeTop(s.frames[len(s.frames)-1].lastEnd)
	}
	sp := s.span(p, q)
	b := s.newBlock(model.Declaration, sp)
	if isGroupItem(s.toks[p:q]) {
		s.push(b, scopeGroup, level)
	} else {
		s.attach(b, int(sp.End))
	}
	return q
}

func levelNumber(t cobTok) (int, bool) {
	if t.kind != cobWord || len(t.word) == 0 || len(t.word) > 2 {
		return 0, false
	}
	n := 0
	for _, c := range t.word {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, n >= 1 && n <= 49 || n == 66 || n == 77 || n == 88
}

func isGroupItem(toks []cobTok) bool {
	for _, t := range toks {
		if t.kind == cobWord && (t.word == "PIC" || t.word == "PICTURE" || t.word == "VALUE" || t.word == "COPY") {
			return false
		}
	}
	return true
}

// procedure handles the token at p inside the procedure division.
func (s *keywordScanner) procedure(p int) int {
	t := s.toks[p]
	switch {
	case t.kind == cobPeriod:
		return s.period(p)
	case s.isLabel(p):
		if !s.closeAll(p) {
			return p
		}
		q := s.sentenceEnd(p)
		s.push(s.newBlock(model.Procedure, s.span(p, q)), scopeParagraph, 0)
		return q
	case t.kind == cobWord && t.word == "END" && p+1 < len(s.toks) && s.toks[p+1].word == "PROGRAM":
		if !s.closeAll(p) {
			return p
		}
		return s.leafSentence(p, model.Declaration)
	}

	q := p + 1
	for q < len(s.toks) && s.toks[q].kind != cobPeriod && !isVerb(s.toks[q]) {
		q++
	}
	// a period directly after a statement belongs to its text
	end := q
	if end < len(s.toks) && s.toks[end].kind == cobPeriod {
		end++
	}
	word := t.word
	switch {
	case word == "IF":
		s.push(s.newBlock(model.ControlFlow, s.span(p, q)), scopeIf, 0)
		return q
	case word == "ELSE":
		if !s.expectTop(p, scopeIf) {
			return p
		}
		s.closeTop(0)
		s.push(s.newBlock(model.ControlFlow, s.span(p, q)), scopeElse, 0)
		return q
	case word == "END-IF":
		if !s.expectTop(p, scopeIf, scopeElse) {
			return p
		}
		s.closeTop(s.toks[p].end)
		return p + 1
	case word == "PERFORM" && inlinePerform(s.toks[p:q]):
		s.push(s.newBlock(model.ControlFlow, s.span(p, q)), scopePerform, 0)
		return q
	case word == "END-PERFORM":
		if !s.expectTop(p, scopePerform) {
			return p
		}
		s.closeTop(s.toks[p].end)
		return p + 1
	case word == "EVALUATE":
		s.push(s.newBlock(model.ControlFlow, s.span(p, q)), scopeEvaluate, 0)
		return q
	case word == "WHEN":
		if n := len(s.frames); n > 0 && s.frames[n-1].scope == scopeWhen {
			s.closeTop(0)
		}
		if !s.expectTop(p, scopeEvaluate) {
			return p
		}
		s.push(s.newBlock(model.ControlFlow, s.span(p, q)), scopeWhen, 0)
		return q
	case word == "END-EVALUATE":
		if n := len(s.frames); n > 0 && s.frames[n-1].scope == scopeWhen {
			s.closeTop(0)
		}
		if !s.expectTop(p, scopeEvaluate) {
			return p
		}
		s.closeTop(s.toks[p].end)
		return p + 1
	}

	kind := model.Statement
	if word == "COPY" {
		kind = model.Declaration
	}
	sp := s.span(p, end)
	s.attach(s.newBlock(kind, sp), int(sp.End))
	if end > q {
		return s.period(q)
	}
	return q
}

// period ends a sentence: open IF and ELSE scopes close, any other open
// statement scope is an error.
func (s *keywordScanner) period(p int) int {
	end := s.toks[p].end
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		if top.scope != scopeIf && top.scope != scopeElse {
			break
		}
		s.closeTop(end)
	}
	if n := len(s.frames); n > 0 {
		top := s.frames[n-1]
		switch top.scope {
		case scopePerform, scopeEvaluate, scopeWhen:
			s.fail(diag.StructMisplacedPeriod, s.toks[p].start, end,
				fmt.Sprintf("sentence period inside %s scope", strings.ToUpper(top.block.Ident)))
			s.fault.note = &diag.Note{Span: top.block.Header, Msg: "scope opened here"}
			return p
		default:
			if end > top.lastEnd {
				top.lastEnd = end
			}
		}
	}
	return p + 1
}

func (s *keywordScanner) expectTop(p int, scopes ...cobScope) bool {
	if n := len(s.frames); n > 0 && slices.Contains(scopes, s.frames[n-1].scope) {
		return true
	}
	t := s.toks[p]
	s.fail(diag.StructUnexpectedCloser, t.start, t.end, fmt.Sprintf("%s without matching opener", t.word))
	return false
}

// isLabel reports whether a paragraph or section name starts at p.
func (s *keywordScanner) isLabel(p int) bool {
	t := s.toks[p]
	if t.kind != cobWord || isVerb(t) {
		return false
	}
	if p > 0 && s.toks[p-1].kind != cobPeriod {
		return false
	}
	if p+1 < len(s.toks) && s.toks[p+1].kind == cobPeriod {
		return true
	}
	return p+2 < len(s.toks) && s.toks[p+1].word == "SECTION" && s.toks[p+2].kind == cobPeriod
}

// inlinePerform reports whether PERFORM opens an inline loop body rather
// than calling a paragraph.
func inlinePerform(stmt []cobTok) bool {
	if len(stmt) < 2 {
		return false
	}
	switch stmt[1].word {
	case "UNTIL", "VARYING", "WITH", "FOREVER":
		return true
	}
	return len(stmt) == 3 && stmt[2].word == "TIMES"
}
