package diag

import (
	"fmt"
	"sort"
	"strings"

	"codeshift/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<path>:<line>:<col>: <SEV> <CODE>: <message>", sorted by path and position.
// It is stable across runs and used by the CLI short format and by tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet) string {
	if len(diags) == 0 {
		return ""
	}
	type row struct {
		path string
		pos  source.LineCol
		text string
	}
	rows := make([]row, 0, len(diags))
	for _, d := range diags {
		path := "<unknown>"
		var pos source.LineCol
		if fs != nil {
			if f := fs.Get(d.Primary.File); f != nil {
				path = f.Path
				pos = f.Position(d.Primary.Start)
			}
		}
		rows = append(rows, row{
			path: path,
			pos:  pos,
			text: fmt.Sprintf("%s:%d:%d: %s %s: %s", path, pos.Line, pos.Col, d.Severity, d.Code.ID(), d.Message),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].path != rows[j].path {
			return rows[i].path < rows[j].path
		}
		if rows[i].pos.Line != rows[j].pos.Line {
			return rows[i].pos.Line < rows[j].pos.Line
		}
		return rows[i].pos.Col < rows[j].pos.Col
	})
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(r.text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
