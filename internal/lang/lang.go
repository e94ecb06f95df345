// Package lang is the language registry. Every supported language is declared
// by an init function in its own file and never changes afterwards.
package lang

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"codeshift/internal/model"
)

// Tag identifies a language. Declaration order doubles as the registry order
// used to break detection ties.
type Tag uint8

const (
	Unknown Tag = iota
	COBOL
	Java
	Python
	Go
	JavaScript
	tagCount
)

func (t Tag) String() string {
	if s := Lookup(t); s != nil {
		return s.Name
	}
	return "unknown"
}

// MarshalText renders the tag name for reports.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText resolves a tag name or alias.
func (t *Tag) UnmarshalText(text []byte) error {
	v, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown language %q", text)
	}
	*t = v
	return nil
}

// Grammar selects the structural analysis strategy for a language class.
type Grammar uint8

const (
	GrammarNone Grammar = iota
	GrammarDelimited
	GrammarIndented
	GrammarKeywordPair
)

func (g Grammar) String() string {
	switch g {
	case GrammarDelimited:
		return "delimited"
	case GrammarIndented:
		return "indented"
	case GrammarKeywordPair:
		return "keyword-pair"
	default:
		return "none"
	}
}

// Signature is a content pattern that identifies a language on its own.
// Higher Specificity wins over lower.
type Signature struct {
	Pattern     *regexp.Regexp
	Specificity int
	Reason      string
}

// CommentSyntax describes how comments are written.
type CommentSyntax struct {
	Line       []string // prefixes starting a line comment
	BlockStart string
	BlockEnd   string
	// FixedIndicator marks comment lines by '*' or '/' in column 7 (fixed-form COBOL).
	FixedIndicator bool
}

// ImportMode controls how an import match is turned into dependency names.
type ImportMode uint8

const (
	ImportSingle ImportMode = iota // the "dep" group is one name
	ImportComma                    // the "dep" group is a comma separated list
	ImportQuoted                   // every quoted string in the "dep" group is a name
)

// Phrase rewrites a multi-word operator to one canonical token.
type Phrase struct {
	Pattern *regexp.Regexp
	Canon   string
}

// ImportPattern extracts dependency names.
type ImportPattern struct {
	Pattern *regexp.Regexp
	Mode    ImportMode
}

// Spec is a registry entry.
type Spec struct {
	Tag        Tag
	Name       string
	Aliases    []string
	Extensions []string // lower case, with leading dot
	Grammar    Grammar

	Signatures []Signature
	Keywords   map[string]int // keyword -> weight
	CaseFold   bool           // keywords and constructs ignore case

	Comments CommentSyntax
	Imports  []ImportPattern

	// Structural classification. Words are compared case-insensitively
	// against the first word of a header.
	ControlWords  []string
	DeclWords     []string
	DeclPattern   *regexp.Regexp // statements matching it are declarations
	StmtWords     []string       // leading words that keep a statement out of DeclPattern
	Modifiers     []string       // words skipped before classification (public, static, export)
	DecisionWords []string       // control-flow identifiers that add a path
	LogicalOps    []string

	// Delimited grammar only.
	NewlineEnds  bool     // a newline at bracket depth 0 ends a statement
	HeaderSemis  []string // header words whose header may contain ';'
	LiteralAfter []string // a '{' following one of these tokens is a literal

	// Hyphenated identifiers are rewritten to the target naming convention.
	Hyphenated bool

	// Source side of conversion.
	Constructs []Construct
	Words      map[string]string // source token -> canonical operator token
	Phrases    []Phrase          // multi-word operators, rewritten before Words
	TypeNames  map[string]string // source type name -> canonical type

	// Target side of conversion; nil when the language is source-only.
	Target *TargetSpec
}

var (
	registry [tagCount]*Spec
	names    = map[string]Tag{}
	mu       sync.RWMutex
)

// Register adds a language. It panics on duplicate tags or names, which can
// only happen through a programming error in an init function.
func Register(s *Spec) {
	mu.Lock()
	defer mu.Unlock()
	if s.Tag == Unknown || s.Tag >= tagCount {
		panic(fmt.Sprintf("lang: invalid tag %d for %s", s.Tag, s.Name))
	}
	if registry[s.Tag] != nil {
		panic(fmt.Sprintf("lang: %s registered twice", s.Name))
	}
	for _, c := range s.Constructs {
		if c.Pattern == nil || c.Key == "" || c.Concept == "" {
			panic(fmt.Sprintf("lang: %s construct %q is incomplete", s.Name, c.Key))
		}
	}
	registry[s.Tag] = s
	for _, n := range append([]string{s.Name}, s.Aliases...) {
		key := strings.ToLower(n)
		if prev, dup := names[key]; dup {
			panic(fmt.Sprintf("lang: name %q used by %s and %s", n, registry[prev].Name, s.Name))
		}
		names[key] = s.Tag
	}
}

// Lookup returns the registry entry or nil.
func Lookup(t Tag) *Spec {
	if t >= tagCount {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return registry[t]
}

// All returns the registered languages in registry order.
func All() []*Spec {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]*Spec, 0, len(registry))
	for _, s := range registry {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Parse resolves a language name or alias, case-insensitively.
func Parse(name string) (Tag, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := names[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ByExtension returns every language claiming the extension of path, in
// registry order. More than one result means the extension is ambiguous.
func ByExtension(path string) []Tag {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil
	}
	var out []Tag
	for _, s := range All() {
		for _, e := range s.Extensions {
			if e == ext {
				out = append(out, s.Tag)
				break
			}
		}
	}
	return out
}

// Convertible reports whether the language has source-side construct recognizers.
func (s *Spec) Convertible() bool {
	return s != nil && len(s.Constructs) > 0
}

// SupportsPair reports whether a rule set can be built for src -> dst.
// Identity pairs are always supported for registered languages.
func SupportsPair(src, dst Tag) bool {
	s, d := Lookup(src), Lookup(dst)
	if s == nil || d == nil {
		return false
	}
	if src == dst {
		return true
	}
	return s.Convertible() && d.Target != nil
}

// TargetPath derives the output path for a converted file.
func (s *Spec) TargetPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if s.Target != nil && s.Target.FileName != nil {
		dir, file := filepath.Split(base)
		return dir + s.Target.FileName(file) + s.Extensions[0]
	}
	return base + s.Extensions[0]
}

// ClassifyHeader returns the block kind implied by the first word of a header
// or statement, after modifiers and annotations. ok is false when no word
// list matches.
func (s *Spec) ClassifyHeader(text string) (model.Kind, bool) {
	word := s.Lead(text)
	if word == "" {
		return model.KindInvalid, false
	}
	for _, w := range s.ControlWords {
		if strings.EqualFold(w, word) {
			return model.ControlFlow, true
		}
	}
	for _, w := range s.DeclWords {
		if strings.EqualFold(w, word) {
			return model.Declaration, true
		}
	}
	return model.KindInvalid, false
}

// Lead returns the first word of text that is neither a modifier nor an
// annotation.
func (s *Spec) Lead(text string) string {
	rest := strings.TrimLeft(text, " \t\r\n}")
	for {
		w := FirstWord(rest)
		if w == "" {
			return ""
		}
		if !strings.HasPrefix(w, "@") && !s.isModifier(w) {
			return w
		}
		next := strings.TrimLeft(rest[len(w):], " \t\r\n")
		if !strings.HasPrefix(w, "@") && FirstWord(next) == "" {
			// "default:" in a switch is not a modifier
			return w
		}
		rest = next
		if strings.HasPrefix(rest, "(") {
			depth := 0
			for i := 0; i < len(rest); i++ {
				if rest[i] == '(' {
					depth++
				} else if rest[i] == ')' {
					depth--
					if depth == 0 {
						rest = rest[i+1:]
						break
					}
				}
			}
		}
	}
}

func (s *Spec) isModifier(w string) bool {
	for _, m := range s.Modifiers {
		if m == w {
			return true
		}
	}
	return false
}

// IsDeclaration reports whether a statement is a declaration by pattern.
func (s *Spec) IsDeclaration(text string) bool {
	if s.DeclPattern == nil {
		return false
	}
	word := FirstWord(text)
	for _, w := range s.StmtWords {
		if strings.EqualFold(w, word) {
			return false
		}
	}
	return s.DeclPattern.MatchString(text)
}

// IsDecision reports whether a control-flow identifier adds an execution path.
func (s *Spec) IsDecision(ident string) bool {
	for _, w := range s.DecisionWords {
		if strings.EqualFold(w, ident) {
			return true
		}
	}
	return false
}

// FirstWord returns the leading identifier-like word of text.
func FirstWord(text string) string {
	text = strings.TrimLeft(text, " \t\r\n}")
	end := 0
	for end < len(text) {
		c := text[end]
		if c == '_' || c == '-' || c == '@' || c == '$' ||
			c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			end++
			continue
		}
		break
	}
	return strings.TrimRight(text[:end], "-")
}
