package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codeshift/internal/diag"
	"codeshift/internal/source"
)

const tabWidth = 4

type palette struct {
	sev    map[diag.Severity]*color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo], p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes the bag as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the span underlined and, with ShowNotes,
// the notes in the same shape. Call bag.Sort first for a stable order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f := fs.Get(d.Primary.File)
		pos := position(f, d.Primary.Start)
		sev := pal.sev[d.Severity]
		if sev == nil {
			sev = pal.note
		}
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			displayPath(fs, f, opts.PathMode), pos.Line, pos.Col,
			sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		if f != nil {
			writeSnippet(w, f, d.Primary, opts, pal)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			np := position(nf, n.Span.Start)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"),
				displayPath(fs, nf, opts.PathMode), np.Line, np.Col, n.Msg)
		}
	}
}

func position(f *source.File, off uint32) source.LineCol {
	if f == nil {
		return source.LineCol{}
	}
	return f.Position(off)
}

// writeSnippet prints the context lines and the primary line with a caret
// run under the span, clipped to the end of that line.
func writeSnippet(w io.Writer, f *source.File, span source.Span, opts PrettyOpts, pal palette) {
	pos := f.Position(span.Start)
	first := max(1, int(pos.Line)-max(0, opts.Context))
	numWidth := len(strconv.Itoa(int(pos.Line)))

	for ln := first; ln <= int(pos.Line); ln++ {
		text := expandTabs(lineText(f, ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "...")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", numWidth, ln), text)
	}

	line := lineText(f, int(pos.Line))
	startCol := min(int(pos.Col)-1, len(line))
	endCol := len(line)
	if end := f.Position(span.End); end.Line == pos.Line {
		endCol = min(int(end.Col)-1, len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol]))
	n := runewidth.StringWidth(expandTabs(line[startCol:max(startCol, endCol)]))
	underline := "^" + strings.Repeat("~", max(0, n-1))
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprint(strings.Repeat(" ", numWidth)+" |"),
		strings.Repeat(" ", pad), pal.caret.Sprint(underline))
}

// lineText returns the 1-based line without its newline.
func lineText(f *source.File, line int) string {
	if line < 1 {
		return ""
	}
	start := 0
	if line > 1 {
		if line-2 >= len(f.LineIdx) {
			return ""
		}
		start = int(f.LineIdx[line-2]) + 1
	}
	end := len(f.Content)
	if line-1 < len(f.LineIdx) {
		end = int(f.LineIdx[line-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
