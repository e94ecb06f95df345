package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"codeshift/internal/lang"
)

var (
	ErrUnsupportedPair = errors.New("unsupported language pair")
	ErrBadMapping      = errors.New("invalid custom mapping")
	ErrBadOption       = errors.New("invalid option")
)

// Level is the optimization level of a run.
type Level uint8

const (
	LevelBalanced Level = iota
	LevelMinimal
	LevelAggressive
)

func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelAggressive:
		return "aggressive"
	default:
		return "balanced"
	}
}

// MarshalText renders the level name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel resolves a level name; the empty string means balanced.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "balanced":
		return LevelBalanced, true
	case "minimal":
		return LevelMinimal, true
	case "aggressive":
		return LevelAggressive, true
	}
	return LevelBalanced, false
}

// Options are the inputs of a rule set.
type Options struct {
	Source            lang.Tag
	Target            lang.Tag
	Level             Level
	Style             lang.Style
	Custom            map[string]string // construct key -> template
	PreserveStructure bool
}

type fusionRule struct {
	first, second string
	same          [][2]string
	tpl           *template
}

// RuleSet is the immutable conversion table of one run. It is safe for
// concurrent use.
type RuleSet struct {
	opts     Options
	src, dst *lang.Spec

	templates map[string]*template // concept -> template in the chosen style
	custom    map[string]*template
	fusions   []fusionRule
	wrap      *template
}

// NewRuleSet validates opts and builds the rule set. Custom mappings are
// merged over the default table once.
func NewRuleSet(opts Options) (*RuleSet, error) {
	src, dst := lang.Lookup(opts.Source), lang.Lookup(opts.Target)
	if src == nil || dst == nil || !lang.SupportsPair(opts.Source, opts.Target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedPair, opts.Source, opts.Target)
	}
	if opts.Level > LevelAggressive {
		return nil, fmt.Errorf("%w: optimization level %d", ErrBadOption, opts.Level)
	}
	if opts.Style > lang.StyleLegacy {
		return nil, fmt.Errorf("%w: style %d", ErrBadOption, opts.Style)
	}

	rs := &RuleSet{
		opts:      opts,
		src:       src,
		dst:       dst,
		templates: map[string]*template{},
		custom:    map[string]*template{},
	}

	for key, text := range opts.Custom {
		k := strings.TrimSpace(key)
		if k == "" {
			return nil, fmt.Errorf("%w: empty key", ErrBadMapping)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: empty template for %q", ErrBadMapping, key)
		}
		if src.CaseFold {
			k = strings.ToUpper(k)
		}
		tpl, err := parseTemplate(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadMapping, key, err)
		}
		rs.custom[k] = tpl
	}

	if rs.Identity() {
		return rs, nil
	}

	for concept, v := range dst.Target.Templates {
		tpl, err := parseTemplate(v.Pick(opts.Style))
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", dst.Name, concept, err)
		}
		rs.templates[concept] = tpl
	}
	if dst.Target.Wrap != "" {
		tpl, err := parseTemplate(dst.Target.Wrap)
		if err != nil {
			return nil, fmt.Errorf("%s wrap: %w", dst.Name, err)
		}
		rs.wrap = tpl
	}
	if opts.Level == LevelAggressive {
		for _, f := range dst.Target.Fusions {
			tpl, err := parseTemplate(f.Template.Pick(opts.Style))
			if err != nil {
				return nil, fmt.Errorf("%s fusion %s+%s: %w", dst.Name, f.First, f.Second, err)
			}
			rs.fusions = append(rs.fusions, fusionRule{first: f.First, second: f.Second, same: f.Same, tpl: tpl})
		}
	}
	return rs, nil
}

func (rs *RuleSet) Source() *lang.Spec { return rs.src }
func (rs *RuleSet) Target() *lang.Spec { return rs.dst }
func (rs *RuleSet) Options() Options   { return rs.opts }

// Identity reports whether source and target are the same language.
func (rs *RuleSet) Identity() bool {
	return rs.src.Tag == rs.dst.Tag
}

// CustomKeys returns the custom mapping keys in sorted order.
func (rs *RuleSet) CustomKeys() []string {
	keys := make([]string, 0, len(rs.custom))
	for k := range rs.custom {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Fingerprint identifies the rule set for caching. Equal options give equal
// fingerprints.
func (rs *RuleSet) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%t\x00", rs.src.Name, rs.dst.Name, rs.opts.Level, rs.opts.Style, rs.opts.PreserveStructure)
	for _, k := range rs.CustomKeys() {
		fmt.Fprintf(h, "%s\x00%s\x00", k, rs.custom[k].src)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (rs *RuleSet) customFor(key string) *template {
	if key == "" {
		return nil
	}
	if rs.src.CaseFold {
		key = strings.ToUpper(key)
	}
	return rs.custom[key]
}

func (rs *RuleSet) fusion(first, second string) *fusionRule {
	for i := range rs.fusions {
		f := &rs.fusions[i]
		if f.first == first && f.second == second {
			return f
		}
	}
	return nil
}
