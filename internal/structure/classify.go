package structure

import (
	"strings"

	"codeshift/internal/lang"
	"codeshift/internal/model"
)

// classify returns the kind of a header (block) or statement (leaf).
func classify(spec *lang.Spec, norm string, isBlock bool) model.Kind {
	k, ok := spec.ClassifyHeader(norm)
	if ok && k == model.ControlFlow {
		return k
	}
	if isBlock {
		// "const run = () => {" is a procedure, not a declaration
		if matchesKind(spec, model.Procedure, norm) {
			return model.Procedure
		}
		if ok {
			return k
		}
		if strings.Contains(norm, "(") {
			return model.Procedure
		}
		return model.Statement
	}
	if ok {
		return k
	}
	if spec.IsDeclaration(norm) {
		return model.Declaration
	}
	return model.Statement
}

func matchesKind(spec *lang.Spec, kind model.Kind, norm string) bool {
	for i := range spec.Constructs {
		c := &spec.Constructs[i]
		if c.Kind == kind && c.Pattern.MatchString(norm) {
			return true
		}
	}
	return false
}

// identify returns the construct-relevant name of a block: the keyword for
// control flow, the declared name where a construct captures one, otherwise
// the leading word.
func identify(spec *lang.Spec, kind model.Kind, norm string) string {
	lead := spec.Lead(norm)
	if kind == model.ControlFlow {
		word := strings.ToLower(lead)
		if word == "else" {
			rest := strings.TrimSpace(norm[strings.Index(norm, lead)+len(lead):])
			if strings.EqualFold(lang.FirstWord(rest), "if") {
				return "else if"
			}
		}
		return word
	}
	for i := range spec.Constructs {
		c := &spec.Constructs[i]
		if c.Kind != kind {
			continue
		}
		m := c.Pattern.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		if idx := c.Pattern.SubexpIndex("name"); idx > 0 && m[idx] != "" {
			return strings.Trim(m[idx], `"'`)
		}
		break
	}
	if lead == "" {
		return strings.TrimSpace(norm)
	}
	return lead
}
