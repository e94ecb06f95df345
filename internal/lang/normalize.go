package lang

import (
	"strings"
)

// NormalizeHeader prepares block header or statement text for construct
// matching: comments are removed, whitespace outside string literals is
// collapsed to single spaces and trailing terminators are dropped.
func (s *Spec) NormalizeHeader(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' || c == '\'' || c == '`' {
			j := skipString(text, i)
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteString(text[i:j])
			i = j - 1
			continue
		}
		if s.lineCommentAt(text, i) {
			for i < len(text) && text[i] != '\n' {
				i++
			}
			space = true
			continue
		}
		if s.Comments.BlockStart != "" && strings.HasPrefix(text[i:], s.Comments.BlockStart) {
			end := strings.Index(text[i+len(s.Comments.BlockStart):], s.Comments.BlockEnd)
			if end < 0 {
				break
			}
			i += len(s.Comments.BlockStart) + end + len(s.Comments.BlockEnd) - 1
			space = true
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\\' && i+1 < len(text) && text[i+1] == '\n' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
	}
	out := b.String()
	for {
		trimmed := strings.TrimSpace(out)
		for _, suffix := range []string{"{", ";", ":", ".", "->"} {
			if strings.HasSuffix(trimmed, suffix) {
				trimmed = strings.TrimSuffix(trimmed, suffix)
				break
			}
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == out {
			return out
		}
		out = trimmed
	}
}

func (s *Spec) lineCommentAt(text string, i int) bool {
	for _, p := range s.Comments.Line {
		if strings.HasPrefix(text[i:], p) {
			return true
		}
	}
	return false
}

// skipString returns the offset just past the string literal opening at i.
// An unterminated literal runs to the end of text.
func skipString(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			if quote != '`' {
				j++
			}
		case quote:
			return j + 1
		}
	}
	return len(text)
}
