package lang

import (
	"regexp"

	"codeshift/internal/model"
)

func init() {
	re := regexp.MustCompile

	Register(&Spec{
		Tag:        Go,
		Name:       "go",
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
		Grammar:    GrammarDelimited,
		Signatures: []Signature{
			{re(`(?m)^package\s+\w+\s*$`), 8, "package clause without semicolon"},
			{re(`(?m)^func\s+(\(\s*\w+\s+\*?\w+\s*\)\s*)?\w+\s*\(`), 8, "func declaration"},
			{re(`\bfmt\.(Print|Sprint|Fprint|Errorf)`), 9, "fmt call"},
			{re(`(?m)^import\s+\(\s*$`), 8, "import block"},
			{re(`\bif\s+err\s*!=\s*nil\s*\{`), 9, "error check"},
			{re(`\w+\s*:=\s*`), 3, "short variable declaration"},
		},
		Keywords: map[string]int{
			"func": 3, "package": 1, "defer": 4, "chan": 4, "go": 1, "range": 2, "struct": 2,
			"interface": 1, "nil": 2, "fmt": 3, "make": 1, "err": 2, "select": 2,
		},
		Comments: CommentSyntax{Line: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
		Imports: []ImportPattern{
			{Pattern: re(`(?m)^import\s+(?:\w+\s+)?"(?P<dep>[^"]+)"`), Mode: ImportSingle},
			{Pattern: re(`(?ms)^import\s*\((?P<dep>.*?)\)`), Mode: ImportQuoted},
		},
		ControlWords:  cControlWords,
		DeclWords:     []string{"type", "import", "package", "var", "const"},
		StmtWords:     cStmtWords,
		DecisionWords: []string{"if", "else if", "for", "case"},
		LogicalOps:    []string{"&&", "||"},
		NewlineEnds:   true,
		HeaderSemis:   []string{"for", "if", "switch"},
		LiteralAfter:  append(cLiteralAfter, "]"),
		Words: map[string]string{
			"&&": "&&", "||": "||", "!": "!", "==": "==", "!=": "!=", "true": "true", "false": "false", "nil": "null",
		},
		TypeNames: map[string]string{
			"int": "int", "int64": "int", "int32": "int", "uint": "int",
			"float64": "decimal", "float32": "decimal", "string": "string", "bool": "bool",
		},
		Constructs: append(append([]Construct{
			{Key: "println", Kind: model.Statement, Concept: "print", Pattern: re(`^fmt\.Println\((?P<args>.*)\)$`)},
			{Key: "exit", Kind: model.Statement, Concept: "exit", Pattern: re(`^os\.Exit\((?P<code>.*)\)$`)},
			{Key: "panic", Kind: model.Statement, Concept: "throw", Pattern: re(`^panic\((?P<value>.*)\)$`)},
			{Key: "short-declare", Kind: model.Statement, Concept: "declare", Pattern: re(`^(?P<name>\w+)\s*:=\s*(?P<value>.+)$`),
				Captures: map[string]CaptureKind{"name": CaptureName}},
			{Key: "import", Kind: model.Declaration, Concept: "import", Pattern: re(`^import\s+(?:\w+\s+)?(?P<path>"[^"]+")$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "import-block", Kind: model.Declaration, Concept: "import", Pattern: re(`^import\s*\((?P<path>.*)\)$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "package", Kind: model.Declaration, Concept: "package", Pattern: re(`^package\s+(?P<path>\w+)$`),
				Captures: map[string]CaptureKind{"path": CaptureRaw}},
			{Key: "var", Kind: model.Declaration, Concept: "declare",
				Pattern:  re(`^(?:var|const)\s+(?P<name>\w+)(?:\s+(?P<type>[\w.\[\]*]+))?(?:\s*=\s*(?P<value>.+))?$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "type": CaptureType}},
			{Key: "struct", Kind: model.Declaration, Concept: "class", Pattern: re(`^type\s+(?P<name>\w+)\s+(?:struct|interface)$`),
				Captures: map[string]CaptureKind{"name": CaptureTypeName}},
			{Key: "for-range", Kind: model.ControlFlow, Concept: "for_each",
				Pattern:  re(`^for\s+(?:\w+\s*,\s*)?(?P<var>\w+)\s*:=\s*range\s+(?P<iter>.+)$`),
				Captures: map[string]CaptureKind{"var": CaptureName}},
			{Key: "for", Kind: model.ControlFlow, Concept: "for_c", Pattern: re(`^for\s+(?P<init>[^;]*);(?P<cond>[^;]*);(?P<post>[^;]*)$`),
				Captures: map[string]CaptureKind{"init": CaptureRaw, "post": CaptureRaw}},
			{Key: "for-ever", Kind: model.ControlFlow, Concept: "forever", Pattern: re(`^for$`)},
			{Key: "for-cond", Kind: model.ControlFlow, Concept: "while", Pattern: re(`^for\s+(?P<cond>[^;]+)$`)},
			{Key: "func", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^func\s+(?:\([^)]*\)\s*)?(?P<name>\w+)\s*\((?P<params>[^)]*)\).*$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
			{Key: "call", Kind: model.Statement, Concept: "call", Pattern: re(`^(?P<name>[\w.]+)\((?P<args>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureRaw}},
		}, cStatementConstructs(re)...), cControlConstructs(re, false)...),
		Target: &TargetSpec{
			Indent:      "\t",
			LineComment: "//",
			Prelude:     "package main",
			Naming:      NamingCamel,
			ConcatJoin:  ", ",
			Render:      map[string]string{"null": "nil"},
			Types:       map[string]string{"int": "int", "decimal": "float64", "string": "string", "bool": "bool"},
			Zero:        map[string]string{"int": "0", "decimal": "0.0", "string": `""`, "bool": "false"},
			DefaultType: "any",
			Params:      ParamsNameFirst,
			FileName:    func(base string) string { return ApplyNaming(NamingSnake, base) },
			Templates: merge(cTemplates(""), map[string]Variants{
				"print":       V("fmt.Println(...)"),
				"declare":     {Standard: "var ${name} = ${value|zero:nil}", Modern: "${name} := ${value|zero:nil}", Legacy: "var ${name} ${type:any} = ${value|zero:nil}"},
				"call_until":  V("for !(${cond}) {\n\t${name}()\n}"),
				"call_times":  V("for i := 0; i < ${count}; i++ {\n\t${name}()\n}"),
				"input":       V("fmt.Scanln(&${target})"),
				"exit":        V("os.Exit(${code:0})"),
				"throw":       V("panic(${value})"),
				"import":      V("import \"${path}\""),
				"if":          V("if ${cond} {\n${body}\n}"),
				"elif":        V("else if ${cond} {\n${body}\n}"),
				"else":        V("else {\n${body}\n}"),
				"while":       V("for ${cond} {\n${body}\n}"),
				"until":       V("for !(${cond}) {\n${body}\n}"),
				"forever":     V("for {\n${body}\n}"),
				"times":       V("for i := 0; i < ${count}; i++ {\n${body}\n}"),
				"for_range":   V("for ${var} := ${start:0}; ${var} < ${end}; ${var}++ {\n${body}\n}"),
				"for_each":    V("for _, ${var} := range ${iter} {\n${body}\n}"),
				"for_c":       V("for ${init}; ${cond}; ${post} {\n${body}\n}"),
				"for_varying": V("for ${var} = ${start}; !(${cond}); ${var} += ${step} {\n${body}\n}"),
				"switch":      V("switch ${subject} {\n${body}\n}"),
				"case":        V("case ${value}:\n${body}"),
				"default":     V("default:\n${body}"),
				"function":    V("func ${name}(${params:}) {\n${body}\n}"),
				"class":       V("type ${name} struct {\n${body}\n}"),
			}),
			Fusions: cFusions(""),
		},
	})
}
