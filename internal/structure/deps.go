package structure

import (
	"strings"

	"codeshift/internal/lang"
)

func splitDeps(raw string, mode lang.ImportMode) []string {
	switch mode {
	case lang.ImportComma:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if name := strings.TrimSpace(part); name != "" {
				out = append(out, name)
			}
		}
		return out
	case lang.ImportQuoted:
		var out []string
		for {
			start := strings.IndexAny(raw, "\"`")
			if start < 0 {
				return out
			}
			quote := raw[start]
			end := strings.IndexByte(raw[start+1:], quote)
			if end < 0 {
				return out
			}
			if name := raw[start+1 : start+1+end]; name != "" {
				out = append(out, name)
			}
			raw = raw[start+end+2:]
		}
	default:
		if name := strings.TrimSpace(raw); name != "" {
			return []string{name}
		}
		return nil
	}
}
