package structure

import (
	"bytes"
	"strings"

	"codeshift/internal/lang"
	"codeshift/internal/model"
)

// countLines fills the line statistics of m. A line is a comment line when
// its first non-blank text starts a comment or it lies inside a block comment.
func countLines(spec *lang.Spec, content []byte, m *model.Model) {
	if len(content) == 0 {
		return
	}
	lines := bytes.Split(content, []byte{'\n'})
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	inBlock := false
	cs := spec.Comments
	for _, raw := range lines {
		m.TotalLines++
		line := strings.TrimRight(string(raw), " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			m.CommentLines++
			if strings.Contains(trimmed, cs.BlockEnd) {
				inBlock = false
			}
		case trimmed == "":
			m.BlankLines++
		case isCommentLine(cs, line, trimmed):
			m.CommentLines++
		case cs.BlockStart != "" && strings.HasPrefix(trimmed, cs.BlockStart):
			m.CommentLines++
			if !strings.Contains(trimmed[len(cs.BlockStart):], cs.BlockEnd) {
				inBlock = true
			}
		}
	}
}

func isCommentLine(cs lang.CommentSyntax, line, trimmed string) bool {
	for _, p := range cs.Line {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	if cs.FixedIndicator {
		if len(line) >= 7 && isSequenceArea(line[:6]) && (line[6] == '*' || line[6] == '/') {
			return true
		}
		// free-form sources commonly start comment lines with '*' as well
		if strings.HasPrefix(trimmed, "*") {
			return true
		}
	}
	return false
}

func isSequenceArea(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && (s[i] < '0' || s[i] > '9') {
			return false
		}
	}
	return true
}
