package detect

import (
	"strings"
	"sync"

	"codeshift/internal/lang"
	"codeshift/internal/source"
)

type keywordSignal struct {
	Lang   lang.Tag
	Score  int
	Reason string
}

var (
	signalsOnce sync.Once
	exactWords  map[string][]keywordSignal
	foldedWords map[string][]keywordSignal // upper-cased, for case-insensitive languages
)

func buildSignals() {
	exactWords = map[string][]keywordSignal{}
	foldedWords = map[string][]keywordSignal{}
	for _, s := range lang.All() {
		for kw, score := range s.Keywords {
			sig := keywordSignal{Lang: s.Tag, Score: score, Reason: s.Name + " keyword `" + kw + "`"}
			if s.CaseFold {
				key := strings.ToUpper(kw)
				foldedWords[key] = append(foldedWords[key], sig)
				continue
			}
			exactWords[kw] = append(exactWords[kw], sig)
		}
	}
}

// RecordIdent collects keyword evidence for one word of the file.
func RecordIdent(e *Evidence, ident string, span source.Span) {
	if e == nil || ident == "" {
		return
	}
	signalsOnce.Do(buildSignals)
	for _, sig := range exactWords[ident] {
		e.Add(Hint{Lang: sig.Lang, Score: sig.Score, Reason: sig.Reason, Span: span})
	}
	for _, sig := range foldedWords[strings.ToUpper(ident)] {
		e.Add(Hint{Lang: sig.Lang, Score: sig.Score, Reason: sig.Reason, Span: span})
	}
}

// CollectWords feeds every identifier-like word of the file to RecordIdent.
// Words inside string literals count too; detection works on raw text.
func CollectWords(e *Evidence, f *source.File) {
	content := f.Content
	start := -1
	for i := 0; i <= len(content); i++ {
		word := i < len(content) && isWordByte(content[i], start >= 0)
		if word {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			w := strings.TrimRight(string(content[start:i]), "-")
			end := start + len(w)
			RecordIdent(e, w, source.SpanOf(f.ID, start, end))
			start = -1
		}
	}
}

func isWordByte(c byte, inWord bool) bool {
	switch {
	case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9' || c == '-':
		return inWord
	}
	return false
}
