package lang

import (
	"regexp"
	"strings"

	"codeshift/internal/model"
)

// CaptureKind says how a captured fragment is translated for the target.
type CaptureKind uint8

const (
	CaptureExpr     CaptureKind = iota // expression: operators and identifiers are translated
	CaptureName                        // identifier, quotes stripped, target naming applied
	CaptureTypeName                    // identifier rendered in PascalCase
	CaptureOperands                    // space separated operand list joined with the target concat
	CaptureType                        // source type or PIC clause mapped through canonical types
	CaptureParams                      // parameter list
	CaptureList                        // list of names; the template is repeated per item
	CaptureRaw                         // copied as written
)

// Construct recognizes one source construct. Pattern is matched against the
// normalized header text of a block of the given Kind; named groups become
// captures.
type Construct struct {
	Key      string // custom mapping key
	Kind     model.Kind
	Concept  string // canonical construct looked up in target templates
	Pattern  *regexp.Regexp
	Captures map[string]CaptureKind
	Defaults map[string]string
}

// CaptureKind returns how the named capture is translated.
func (c *Construct) CaptureKind(name string) CaptureKind {
	if k, ok := c.Captures[name]; ok {
		return k
	}
	return CaptureExpr
}

// Style selects a template variant.
type Style uint8

const (
	StyleStandard Style = iota
	StyleModern
	StyleLegacy
)

func (s Style) String() string {
	switch s {
	case StyleModern:
		return "modern"
	case StyleLegacy:
		return "legacy"
	default:
		return "standard"
	}
}

// ParseStyle resolves a style name; the empty string means standard.
func ParseStyle(name string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard":
		return StyleStandard, true
	case "modern":
		return StyleModern, true
	case "legacy":
		return StyleLegacy, true
	}
	return StyleStandard, false
}

// Variants holds one template per style. Empty Modern or Legacy fall back to
// Standard.
type Variants struct {
	Standard string
	Modern   string
	Legacy   string
}

// Pick returns the template for a style.
func (v Variants) Pick(s Style) string {
	switch {
	case s == StyleModern && v.Modern != "":
		return v.Modern
	case s == StyleLegacy && v.Legacy != "":
		return v.Legacy
	}
	return v.Standard
}

// V is shorthand for a template without style variants.
func V(t string) Variants {
	return Variants{Standard: t}
}

// Fusion merges two adjacent statements of the given concepts into one.
// Same lists capture pairs (first, second) that must be equal.
// Templates reference captures as ${first.name} and ${second.name}.
type Fusion struct {
	First    string
	Second   string
	Same     [][2]string
	Template Variants
}

// Naming is an identifier convention.
type Naming uint8

const (
	NamingCamel Naming = iota
	NamingSnake
	NamingPascal
	NamingKeep
)

// ParamStyle describes how a typed parameter is written.
type ParamStyle uint8

const (
	ParamsTypeFirst ParamStyle = iota // T name
	ParamsNameFirst                   // name T
	ParamsNameOnly                    // name
)

// TargetSpec is the target side of a registry entry.
//
// Template lines starting with tabs are indented by that many target indent
// units; a line holding only ${body} is replaced by the rendered children.
type TargetSpec struct {
	Indent      string
	LineComment string
	EmptyBody   string // emitted when a body is empty
	Prelude     string // emitted once before converted code
	Wrap        string // wraps the converted body; ${name} and ${body}
	Naming      Naming
	ConcatJoin  string
	Render      map[string]string // canonical token -> target spelling
	Types       map[string]string // canonical type -> target type
	Zero        map[string]string // canonical type -> zero literal
	DefaultType string            // parameter type when none is known
	Params      ParamStyle
	FileName    func(base string) string

	Templates map[string]Variants // concept -> template
	Fusions   []Fusion
}

// ApplyNaming rewrites an identifier to a convention. Words are split on
// '-', '_' and lower-to-upper case changes.
func ApplyNaming(n Naming, ident string) string {
	if n == NamingKeep || ident == "" {
		return ident
	}
	words := splitWords(ident)
	if len(words) == 0 {
		return ident
	}
	var b strings.Builder
	for i, w := range words {
		lw := strings.ToLower(w)
		switch n {
		case NamingSnake:
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteString(lw)
		case NamingCamel:
			if i == 0 {
				b.WriteString(lw)
			} else {
				b.WriteString(upperFirst(lw))
			}
		case NamingPascal:
			b.WriteString(upperFirst(lw))
		}
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

func splitWords(ident string) []string {
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, ident[start:end])
		}
		start = -1
	}
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		switch {
		case c == '-' || c == '_' || c == ' ':
			flush(i)
		case c >= 'A' && c <= 'Z' && start >= 0 && i > 0 && ident[i-1] >= 'a' && ident[i-1] <= 'z':
			flush(i)
			start = i
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(ident))
	return words
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var (
	picNumeric = regexp.MustCompile(`^S?9+(\(\d+\))?$`)
	picDecimal = regexp.MustCompile(`^S?9+(\(\d+\))?V9+(\(\d+\))?$`)
	picAlpha   = regexp.MustCompile(`^[XA]+(\(\d+\))?$`)
)

// PictureType maps a COBOL PIC string to a canonical type:
// "int", "decimal" or "string". Unrecognized pictures are strings.
func PictureType(pic string) string {
	p := strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(pic), "."))
	switch {
	case picDecimal.MatchString(p):
		return "decimal"
	case picNumeric.MatchString(p):
		return "int"
	case picAlpha.MatchString(p):
		return "string"
	}
	return "string"
}
