package convert

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/model"
	"codeshift/internal/source"
)

// HighComplexity is the procedure complexity from which a review comment is
// placed above the converted procedure.
const HighComplexity = 10

type outputLine struct {
	depth int
	text  string // empty for a blank line
}

type taskKind uint8

const (
	taskLines taskKind = iota
	taskList
)

// task is a unit of pending output: either finished lines (the tail of a
// template after its body) or a sibling list still being emitted.
type task struct {
	kind  taskKind
	lines []outputLine

	blocks []*model.Block
	next   int
	depth  int
	root   bool
	body   bool // the list is a template body
	start  int  // len(emitter.out) when the body began
}

type resolution struct {
	key     string
	concept string
	custom  bool
	tpl     *template
	caps    map[string]string
	lists   map[string][]string
}

type emitter struct {
	m     *model.Model
	rs    *RuleSet
	tr    translator
	cm    string
	procs map[uint32]metrics.Procedure
	res   *Result
	rep   diag.Reporter
	out   []outputLine
}

// Convert emits target text for m. It never fails: constructs that cannot be
// converted are carried over as comments and reported in Result.Issues.
// Info issues describe fusions.
func Convert(m *model.Model, mt metrics.Metrics, rs *RuleSet) *Result {
	res := &Result{Blocks: m.Count()}
	if rs.Identity() {
		if m.File != nil {
			res.Text = NormalizeWhitespace(string(m.File.Content))
		}
		res.Converted = res.Blocks
		return res
	}

	e := &emitter{
		m:     m,
		rs:    rs,
		tr:    translator{src: rs.src, dst: rs.dst},
		cm:    rs.dst.Target.LineComment,
		procs: make(map[uint32]metrics.Procedure, len(mt.Procedures)),
		res:   res,
		rep:   diag.SliceReporter{Items: &res.Issues},
	}
	for _, p := range mt.Procedures {
		if !p.Implicit {
			e.procs[p.Span.Start] = p
		}
	}
	e.body(m.Blocks)
	res.Text = e.assemble()
	return res
}

// body emits the block forest without recursion; nesting depth is bounded
// only by memory.
func (e *emitter) body(roots []*model.Block) {
	stack := []*task{{kind: taskList, blocks: roots, root: true}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.kind == taskLines {
			stack = stack[:len(stack)-1]
			e.out = append(e.out, top.lines...)
			continue
		}
		if top.next >= len(top.blocks) {
			stack = stack[:len(stack)-1]
			if top.body && !e.hasCode(top.start) {
				if eb := e.rs.dst.Target.EmptyBody; eb != "" {
					e.line(top.depth, eb)
				}
			}
			continue
		}
		i := top.next
		b := top.blocks[i]
		if top.root && i > 0 && e.rs.opts.PreserveStructure && e.blankBetween(top.blocks[i-1], b) {
			e.out = append(e.out, outputLine{})
		}
		if n := e.fuse(top.blocks, i, top.depth); n > 0 {
			top.next += n
			continue
		}
		top.next++
		stack = append(stack, e.block(b, top.depth)...)
	}
}

// block emits the lines of b up to its body and returns the tasks that
// complete it, in push order.
func (e *emitter) block(b *model.Block, depth int) []*task {
	if b.Kind == model.Procedure && e.rs.opts.Level != LevelMinimal {
		if p, ok := e.procs[b.Span.Start]; ok && p.Cyclomatic >= HighComplexity {
			e.line(depth, e.comment(fmt.Sprintf("codeshift: %s has cyclomatic complexity %d, review manually", p.Name, p.Cyclomatic)))
		}
	}

	r := e.resolve(b)
	if r.tpl == nil {
		e.unmapped(b, depth, r.key)
		return nil
	}
	lines, missing := e.render(r)
	if len(missing) > 0 {
		e.failed(b, depth, r.key, missing)
		return nil
	}
	e.res.Converted++

	bodyAt := -1
	for i, l := range lines {
		if l.body {
			bodyAt = i
			break
		}
	}
	if bodyAt < 0 {
		for _, l := range lines {
			e.line(depth+l.indent, l.text)
		}
		if b.Leaf() {
			return nil
		}
		return []*task{{kind: taskList, blocks: b.Children, depth: depth}}
	}

	for _, l := range lines[:bodyAt] {
		e.line(depth+l.indent, l.text)
	}
	var tasks []*task
	var tail []outputLine
	for _, l := range lines[bodyAt+1:] {
		if !l.body {
			tail = append(tail, outputLine{depth: depth + l.indent, text: l.text})
		}
	}
	if len(tail) > 0 {
		tasks = append(tasks, &task{kind: taskLines, lines: tail})
	}
	inner := depth + 1 + lines[bodyAt].indent
	if b.Leaf() {
		if eb := e.rs.dst.Target.EmptyBody; eb != "" {
			e.line(inner, eb)
		}
		return tasks
	}
	return append(tasks, &task{kind: taskList, blocks: b.Children, depth: inner, body: true, start: len(e.out)})
}

// hasCode reports whether any line emitted since from is more than a comment.
func (e *emitter) hasCode(from int) bool {
	for _, l := range e.out[from:] {
		if l.text != "" && !strings.HasPrefix(l.text, e.cm) {
			return true
		}
	}
	return false
}

// resolve picks the template for b: a custom mapping for its construct key,
// then the default template of its concept. A nil template means unmapped.
func (e *emitter) resolve(b *model.Block) resolution {
	norm := e.rs.src.NormalizeHeader(e.m.HeaderText(b))
	r := resolution{key: e.rs.src.Lead(norm)}
	c, match := e.rs.match(b.Kind, norm)
	if c != nil {
		r.key, r.concept = c.Key, c.Concept
		r.caps, r.lists = e.tr.captures(c, match)
	} else {
		r.caps = map[string]string{}
	}
	r.caps["header"] = norm

	if tpl := e.rs.customFor(r.key); tpl != nil {
		r.tpl, r.custom = tpl, true
		return r
	}
	if c != nil {
		r.tpl = e.rs.templates[c.Concept]
	}
	return r
}

// render fills the template of r. List captures repeat the template once
// per item.
func (e *emitter) render(r resolution) ([]outLine, []string) {
	if len(r.lists) == 0 {
		return r.tpl.render(r.caps)
	}
	names := make([]string, 0, len(r.lists))
	for n := range r.lists {
		names = append(names, n)
	}
	slices.Sort(names)
	var (
		out     []outLine
		missing []string
	)
	for _, item := range r.lists[names[0]] {
		r.caps[names[0]] = item
		lines, miss := r.tpl.render(r.caps)
		out = append(out, lines...)
		for _, m := range miss {
			if !slices.Contains(missing, m) {
				missing = append(missing, m)
			}
		}
	}
	return out, missing
}

// fuse merges blocks[i] and blocks[i+1] when a fusion rule covers their
// concepts. It returns the number of blocks consumed, 0 when nothing fused.
func (e *emitter) fuse(blocks []*model.Block, i, depth int) int {
	if len(e.rs.fusions) == 0 || i+1 >= len(blocks) {
		return 0
	}
	a, b := blocks[i], blocks[i+1]
	if a.Kind != model.Statement || b.Kind != model.Statement || !a.Leaf() || !b.Leaf() {
		return 0
	}
	ra, rb := e.resolve(a), e.resolve(b)
	if ra.custom || rb.custom || ra.tpl == nil || rb.tpl == nil {
		return 0
	}
	f := e.rs.fusion(ra.concept, rb.concept)
	if f == nil {
		return 0
	}
	for _, pair := range f.same {
		if v := ra.caps[pair[0]]; v == "" || v != rb.caps[pair[1]] {
			return 0
		}
	}
	if _, miss := e.render(ra); len(miss) > 0 {
		return 0
	}
	if _, miss := e.render(rb); len(miss) > 0 {
		return 0
	}

	caps := make(map[string]string, len(ra.caps)+len(rb.caps))
	for k, v := range ra.caps {
		caps["first."+k] = v
	}
	for k, v := range rb.caps {
		caps["second."+k] = v
	}
	lines, missing := f.tpl.render(caps)
	if len(missing) > 0 {
		return 0
	}
	for _, l := range lines {
		e.line(depth+l.indent, l.text)
	}
	e.res.Converted += 2
	e.res.Fused++
	diag.NewReportBuilder(e.rep, diag.SevInfo, diag.ConvFused, a.Span.Cover(b.Span),
		fmt.Sprintf("fused %s and %s", ra.key, rb.key)).Emit()
	return 2
}

func (e *emitter) unmapped(b *model.Block, depth int, key string) {
	e.res.Unmapped++
	e.res.Skipped += model.CountIn(b) - 1
	what := key
	if what == "" {
		what = b.Kind.String()
	}
	diag.ReportWarning(e.rep, diag.ConvUnmappedConstruct, b.Header,
		fmt.Sprintf("unmapped construct %s for %s", what, e.rs.dst.Name)).Emit()
	e.verbatim(b, depth)
}

func (e *emitter) failed(b *model.Block, depth int, key string, missing []string) {
	e.res.Failed++
	e.res.Skipped += model.CountIn(b) - 1
	msg := fmt.Sprintf("cannot convert %s: missing ${%s}", key, strings.Join(missing, "}, ${"))
	diag.ReportError(e.rep, diag.ConvMissingCapture, b.Header, msg).Emit()
	e.line(depth, e.comment("codeshift: "+msg))
	e.verbatim(b, depth)
}

// verbatim emits the source text of b as comments, re-indented relative to
// the column b starts at.
func (e *emitter) verbatim(b *model.Block, depth int) {
	col := 0
	if e.m.File != nil {
		col = int(e.m.File.Position(b.Span.Start).Col) - 1
	}
	for i, ln := range strings.Split(strings.TrimRight(e.m.Text(b), " \t\r\n"), "\n") {
		ln = strings.TrimRight(ln, " \t\r")
		if i > 0 {
			ln = trimIndent(ln, col)
		}
		e.line(depth, e.comment(ln))
	}
}

func (e *emitter) comment(text string) string {
	if text == "" {
		return e.cm
	}
	return e.cm + " " + text
}

func (e *emitter) line(depth int, text string) {
	e.out = append(e.out, outputLine{depth: depth, text: text})
}

// blankBetween reports whether the source separates a and b by a blank line.
func (e *emitter) blankBetween(a, b *model.Block) bool {
	if e.m.File == nil || b.Span.Start <= a.Span.End {
		return false
	}
	gap := strings.Split(e.m.File.Text(source.Span{File: a.Span.File, Start: a.Span.End, End: b.Span.Start}), "\n")
	if len(gap) < 3 {
		return false
	}
	for _, seg := range gap[1 : len(gap)-1] {
		if strings.TrimSpace(seg) == "" {
			return true
		}
	}
	return false
}

// assemble joins the provenance header, the prelude and the (wrapped) body.
func (e *emitter) assemble() string {
	dst := e.rs.dst.Target
	var lines []outputLine
	if e.rs.opts.Level != LevelMinimal {
		lines = append(lines, outputLine{text: e.comment(fmt.Sprintf("Converted from %s to %s by codeshift (%s, %s)",
			e.rs.src.Name, e.rs.dst.Name, e.rs.opts.Level, e.rs.opts.Style))})
	}
	if dst.Prelude != "" {
		for _, p := range strings.Split(dst.Prelude, "\n") {
			lines = append(lines, outputLine{text: p})
		}
		lines = append(lines, outputLine{})
	}

	if e.rs.wrap == nil {
		lines = append(lines, e.out...)
	} else {
		wrapped, _ := e.rs.wrap.render(map[string]string{"name": e.wrapName()})
		for _, l := range wrapped {
			if !l.body {
				lines = append(lines, outputLine{depth: l.indent, text: l.text})
				continue
			}
			for _, o := range e.out {
				lines = append(lines, outputLine{depth: o.depth + l.indent + 1, text: o.text})
			}
		}
	}

	var b strings.Builder
	for _, l := range lines {
		if l.text != "" {
			b.WriteString(strings.Repeat(dst.Indent, l.depth))
			b.WriteString(l.text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *emitter) wrapName() string {
	name := "Main"
	if e.m.File != nil && e.rs.dst.Target.FileName != nil {
		base := filepath.Base(e.m.File.Path)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if n := e.rs.dst.Target.FileName(base); n != "" {
			name = n
		}
	}
	return name
}

// match returns the first construct of the given kind matching the
// normalized header, with its submatches.
func (rs *RuleSet) match(kind model.Kind, norm string) (*lang.Construct, []string) {
	for i := range rs.src.Constructs {
		c := &rs.src.Constructs[i]
		if c.Kind != kind {
			continue
		}
		if sub := c.Pattern.FindStringSubmatch(norm); sub != nil {
			return c, sub
		}
	}
	return nil, nil
}

// NormalizeWhitespace trims trailing whitespace from every line, collapses
// runs of blank lines into one and drops leading and trailing blank lines.
// Non-empty output ends with a single newline.
func NormalizeWhitespace(text string) string {
	var (
		out   []string
		blank bool
	)
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func trimIndent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}
