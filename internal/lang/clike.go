package lang

import (
	"regexp"

	"codeshift/internal/model"
)

// Shared pieces of the brace languages.

var (
	cControlWords = []string{"if", "else", "for", "while", "do", "switch", "case", "default", "try", "catch", "finally", "select"}
	cStmtWords    = []string{"return", "throw", "break", "continue", "yield", "assert", "delete", "new", "await", "go", "defer", "goto", "else"}
	cLiteralAfter = []string{"=", "(", ",", ":", "[", "return", "?", "&&", "||", ":="}
)

func cStatementConstructs(re func(string) *regexp.Regexp) []Construct {
	target := map[string]CaptureKind{"target": CaptureRaw}
	return []Construct{
		{Key: "return-value", Kind: model.Statement, Concept: "return_value", Pattern: re(`^return\s+(?P<value>.+)$`)},
		{Key: "return", Kind: model.Statement, Concept: "return", Pattern: re(`^return$`)},
		{Key: "break", Kind: model.Statement, Concept: "break", Pattern: re(`^break$`)},
		{Key: "continue", Kind: model.Statement, Concept: "continue", Pattern: re(`^continue$`)},
		{Key: "throw", Kind: model.Statement, Concept: "throw", Pattern: re(`^throw\s+(?P<value>.+)$`)},
		{Key: "increment", Kind: model.Statement, Concept: "add", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*\+\+$`),
			Captures: target, Defaults: map[string]string{"value": "1"}},
		{Key: "decrement", Kind: model.Statement, Concept: "subtract", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*--$`),
			Captures: target, Defaults: map[string]string{"value": "1"}},
		{Key: "add-assign", Kind: model.Statement, Concept: "add", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*\+=\s*(?P<value>.+)$`), Captures: target},
		{Key: "sub-assign", Kind: model.Statement, Concept: "subtract", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*-=\s*(?P<value>.+)$`), Captures: target},
		{Key: "mul-assign", Kind: model.Statement, Concept: "multiply", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*\*=\s*(?P<value>.+)$`), Captures: target},
		{Key: "div-assign", Kind: model.Statement, Concept: "divide", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*/=\s*(?P<value>.+)$`), Captures: target},
		{Key: "assign", Kind: model.Statement, Concept: "assign", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*=\s*(?P<value>[^=].*)$`), Captures: target},
	}
}

func cControlConstructs(re func(string) *regexp.Regexp, parens bool) []Construct {
	// Go headers have no parentheses around conditions.
	cond := `\s*\((?P<cond>.*)\)`
	subject := `\s*\((?P<subject>.*)\)`
	if !parens {
		cond = `\s+(?P<cond>.+)`
		subject = `\s+(?P<subject>.+)`
	}
	return []Construct{
		{Key: "else-if", Kind: model.ControlFlow, Concept: "elif", Pattern: re(`^else\s+if` + cond + `$`)},
		{Key: "if", Kind: model.ControlFlow, Concept: "if", Pattern: re(`^if` + cond + `$`)},
		{Key: "else", Kind: model.ControlFlow, Concept: "else", Pattern: re(`^else$`)},
		{Key: "switch", Kind: model.ControlFlow, Concept: "switch", Pattern: re(`^switch` + subject + `$`)},
		{Key: "default", Kind: model.ControlFlow, Concept: "default", Pattern: re(`^default$`)},
		{Key: "case", Kind: model.ControlFlow, Concept: "case", Pattern: re(`^case\s+(?P<value>.+)$`)},
		{Key: "try", Kind: model.ControlFlow, Concept: "try", Pattern: re(`^try$`)},
		{Key: "finally", Kind: model.ControlFlow, Concept: "finally", Pattern: re(`^finally$`)},
	}
}

func cTemplates(semi string) map[string]Variants {
	return map[string]Variants{
		"assign":       V("${target} = ${value}" + semi),
		"add":          V("${target} += ${value}" + semi),
		"subtract":     V("${target} -= ${value}" + semi),
		"multiply":     V("${target} *= ${value}" + semi),
		"divide":       V("${target} /= ${value}" + semi),
		"call":         V("${name}(${args:})" + semi),
		"return":       V("return" + semi),
		"return_value": V("return ${value}" + semi),
		"break":        V("break" + semi),
		"continue":     V("continue" + semi),
		"marker":       V("// ${text}"),
		"package":      V("// package ${path}"),
	}
}

func cFusions(semi string) []Fusion {
	return []Fusion{
		{First: "assign", Second: "add", Same: [][2]string{{"target", "target"}},
			Template: V("${first.target} = ${first.value} + ${second.value}" + semi)},
		{First: "add", Second: "add", Same: [][2]string{{"target", "target"}},
			Template: V("${first.target} += ${first.value} + ${second.value}" + semi)},
		{First: "assign", Second: "subtract", Same: [][2]string{{"target", "target"}},
			Template: V("${first.target} = ${first.value} - ${second.value}" + semi)},
	}
}

func merge(dst map[string]Variants, src map[string]Variants) map[string]Variants {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
