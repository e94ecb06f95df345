package convert

import (
	"fmt"
	"strings"
)

// segment is a literal run or a placeholder inside a template line.
type segment struct {
	lit string

	// placeholder: the first non-empty capture among names wins, then def.
	names  []string
	def    string
	hasDef bool
}

type tplLine struct {
	indent int // extra indent units (leading tabs)
	body   bool
	segs   []segment
}

// template is a parsed rendering template.
//
//	${name}         required capture
//	${name:text}    capture with a default
//	${a|b:text}     first non-empty capture, then the default
//	...             the argument list, empty when absent
//
// A line holding only ${body} is replaced by the rendered children.
type template struct {
	src   string
	lines []tplLine
}

func parseTemplate(src string) (*template, error) {
	t := &template{src: src}
	for _, raw := range strings.Split(src, "\n") {
		ln := tplLine{}
		for strings.HasPrefix(raw, "\t") {
			ln.indent++
			raw = raw[1:]
		}
		if strings.TrimSpace(raw) == "${body}" {
			ln.body = true
			t.lines = append(t.lines, ln)
			continue
		}
		segs, err := parseSegments(raw)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", src, err)
		}
		ln.segs = segs
		t.lines = append(t.lines, ln)
	}
	return t, nil
}

func parseSegments(raw string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{lit: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(raw); {
		switch {
		case strings.HasPrefix(raw[i:], "${"):
			end := strings.IndexByte(raw[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			inner := raw[i+2 : i+end]
			if strings.TrimSpace(inner) == "" {
				return nil, fmt.Errorf("empty placeholder at offset %d", i)
			}
			ph := placeholder(inner)
			if len(ph.names) == 0 {
				return nil, fmt.Errorf("placeholder without a capture name at offset %d", i)
			}
			flush()
			segs = append(segs, ph)
			i += end + 1
		case strings.HasPrefix(raw[i:], "..."):
			flush()
			segs = append(segs, segment{names: []string{"args"}, hasDef: true})
			i += 3
		default:
			lit.WriteByte(raw[i])
			i++
		}
	}
	flush()
	return segs, nil
}

func placeholder(inner string) segment {
	var s segment
	names := inner
	if idx := strings.IndexByte(inner, ':'); idx >= 0 {
		names, s.def, s.hasDef = inner[:idx], inner[idx+1:], true
	}
	for _, n := range strings.Split(names, "|") {
		if n = strings.TrimSpace(n); n != "" {
			s.names = append(s.names, n)
		}
	}
	return s
}

// refs returns every capture name the template can read.
func (t *template) refs() []string {
	var out []string
	for _, ln := range t.lines {
		for _, s := range ln.segs {
			out = append(out, s.names...)
		}
	}
	return out
}

// hasBody reports whether the template places children.
func (t *template) hasBody() bool {
	for _, ln := range t.lines {
		if ln.body {
			return true
		}
	}
	return false
}

// outLine is one rendered line relative to the block's own indent.
type outLine struct {
	indent int
	text   string
	body   bool // children go here
}

// render fills the template. missing lists the required captures that had no
// value; the output is unusable when it is non-empty.
func (t *template) render(caps map[string]string) (lines []outLine, missing []string) {
	for _, ln := range t.lines {
		if ln.body {
			lines = append(lines, outLine{indent: ln.indent, body: true})
			continue
		}
		var b strings.Builder
		for _, s := range ln.segs {
			if s.names == nil {
				b.WriteString(s.lit)
				continue
			}
			v, ok := lookup(caps, s.names)
			switch {
			case ok:
				b.WriteString(v)
			case s.hasDef:
				b.WriteString(s.def)
			default:
				missing = append(missing, s.names[0])
			}
		}
		lines = append(lines, outLine{indent: ln.indent, text: b.String()})
	}
	return lines, missing
}

func lookup(caps map[string]string, names []string) (string, bool) {
	for _, n := range names {
		if v, ok := caps[n]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
