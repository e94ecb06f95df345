package lang

import (
	"regexp"

	"codeshift/internal/model"
)

func init() {
	re := regexp.MustCompile

	Register(&Spec{
		Tag:        JavaScript,
		Name:       "javascript",
		Aliases:    []string{"js", "node"},
		Extensions: []string{".js", ".mjs", ".cjs"},
		Grammar:    GrammarDelimited,
		Signatures: []Signature{
			{re(`\bconsole\.(log|error|warn)\(`), 9, "console call"},
			{re(`(?m)^\s*(?:const|let|var)\s+\w+\s*=\s*require\(`), 9, "require"},
			{re(`(?m)^\s*module\.exports\s*=`), 9, "module.exports"},
			{re(`(?m)^\s*export\s+(default\s+)?(function|class|const)`), 7, "export"},
			{re(`(?m)^\s*(?:async\s+)?function\s*\*?\s*\w+\s*\(`), 6, "function declaration"},
			{re(`=>\s*\{`), 5, "arrow function"},
		},
		Keywords: map[string]int{
			"function": 2, "const": 1, "let": 2, "var": 1, "console": 3, "require": 3,
			"undefined": 3, "null": 1, "this": 1, "async": 1, "await": 1, "export": 2,
			"typeof": 3, "prototype": 3, "document": 3, "window": 2,
		},
		Comments: CommentSyntax{Line: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
		Imports: []ImportPattern{
			{Pattern: re(`(?m)^\s*import\s+(?:[^'"]*\s+from\s+)?['"](?P<dep>[^'"]+)['"]`), Mode: ImportSingle},
			{Pattern: re(`\brequire\(\s*['"](?P<dep>[^'"]+)['"]\s*\)`), Mode: ImportSingle},
		},
		ControlWords:  cControlWords,
		DeclWords:     []string{"class", "import", "export", "const", "let", "var"},
		StmtWords:     cStmtWords,
		Modifiers:     []string{"export", "default", "async", "static"},
		DecisionWords: []string{"if", "else if", "for", "while", "case", "catch", "do"},
		LogicalOps:    []string{"&&", "||", "??"},
		NewlineEnds:   true,
		LiteralAfter:  cLiteralAfter,
		Words: map[string]string{
			"&&": "&&", "||": "||", "!": "!", "===": "==", "!==": "!=", "==": "==", "!=": "!=",
			"true": "true", "false": "false", "null": "null", "undefined": "null",
		},
		TypeNames: map[string]string{"number": "decimal", "string": "string", "boolean": "bool"},
		Constructs: append(append([]Construct{
			{Key: "console-log", Kind: model.Statement, Concept: "print", Pattern: re(`^console\.log\((?P<args>.*)\)$`)},
			{Key: "exit", Kind: model.Statement, Concept: "exit", Pattern: re(`^process\.exit\((?P<code>.*)\)$`)},
			{Key: "import", Kind: model.Declaration, Concept: "import",
				Pattern:  re(`^import\s+(?:.*?\s+from\s+)?['"](?P<path>[^'"]+)['"]$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "require", Kind: model.Declaration, Concept: "import",
				Pattern:  re(`^(?:const|let|var)\s+\S+\s*=\s*require\(\s*['"](?P<path>[^'"]+)['"]\s*\)$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "arrow-function", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^(?:export\s+)?(?:const|let|var)\s+(?P<name>\w+)\s*=\s*(?:async\s+)?\((?P<params>.*)\)\s*=>$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
			{Key: "declare", Kind: model.Declaration, Concept: "declare",
				Pattern:  re(`^(?:export\s+)?(?:const|let|var)\s+(?P<name>\w+)(?:\s*=\s*(?P<value>.+))?$`),
				Captures: map[string]CaptureKind{"name": CaptureName}},
			{Key: "class", Kind: model.Declaration, Concept: "class",
				Pattern:  re(`^(?:export\s+)?(?:default\s+)?class\s+(?P<name>\w+)(?:\s+extends\s+(?P<base>[\w.]+))?$`),
				Captures: map[string]CaptureKind{"name": CaptureTypeName, "base": CaptureRaw}},
			{Key: "for-of", Kind: model.ControlFlow, Concept: "for_each",
				Pattern:  re(`^for\s*\(\s*(?:const|let|var)\s+(?P<var>\w+)\s+of\s+(?P<iter>.+)\)$`),
				Captures: map[string]CaptureKind{"var": CaptureName}},
			{Key: "for", Kind: model.ControlFlow, Concept: "for_c", Pattern: re(`^for\s*\((?P<init>[^;]*);(?P<cond>[^;]*);(?P<post>[^;]*)\)$`),
				Captures: map[string]CaptureKind{"init": CaptureRaw, "post": CaptureRaw}},
			{Key: "while", Kind: model.ControlFlow, Concept: "while", Pattern: re(`^while\s*\((?P<cond>.*)\)$`)},
			{Key: "catch", Kind: model.ControlFlow, Concept: "catch", Pattern: re(`^catch\s*(?:\(\s*(?P<var>\w+)\s*\))?$`),
				Captures: map[string]CaptureKind{"var": CaptureName}},
			{Key: "function", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(?P<name>\w+)\s*\((?P<params>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
			{Key: "method", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^(?:(?:async|static|get|set)\s+)*(?P<name>\w+)\s*\((?P<params>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
			{Key: "call", Kind: model.Statement, Concept: "call", Pattern: re(`^(?:await\s+)?(?P<name>[\w.]+)\((?P<args>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureRaw}},
		}, cStatementConstructs(re)...), cControlConstructs(re, true)...),
		Target: &TargetSpec{
			Indent:      "  ",
			LineComment: "//",
			Naming:      NamingCamel,
			ConcatJoin:  " + ",
			Render:      map[string]string{"==": "===", "!=": "!=="},
			Types:       map[string]string{"int": "number", "decimal": "number", "string": "string", "bool": "boolean"},
			Zero:        map[string]string{"int": "0", "decimal": "0", "string": `""`, "bool": "false"},
			Params:      ParamsNameOnly,
			FileName:    func(base string) string { return ApplyNaming(NamingCamel, base) },
			Templates: merge(cTemplates(";"), map[string]Variants{
				"print":       V("console.log(...);"),
				"declare":     {Standard: "let ${name} = ${value|zero:null};", Legacy: "var ${name} = ${value|zero:null};"},
				"call_until":  V("while (!(${cond})) {\n\t${name}();\n}"),
				"call_times":  V("for (let i = 0; i < ${count}; i++) {\n\t${name}();\n}"),
				"input":       V("${target} = prompt();"),
				"exit":        V("process.exit(${code:0});"),
				"pass":        V(";"),
				"throw":       V("throw ${value};"),
				"import":      {Standard: "import \"${path}\";", Legacy: "require(\"${path}\");"},
				"if":          V("if (${cond}) {\n${body}\n}"),
				"elif":        V("else if (${cond}) {\n${body}\n}"),
				"else":        V("else {\n${body}\n}"),
				"while":       V("while (${cond}) {\n${body}\n}"),
				"until":       V("while (!(${cond})) {\n${body}\n}"),
				"forever":     V("while (true) {\n${body}\n}"),
				"times":       V("for (let i = 0; i < ${count}; i++) {\n${body}\n}"),
				"for_range":   {Standard: "for (let ${var} = ${start:0}; ${var} < ${end}; ${var}++) {\n${body}\n}", Legacy: "for (var ${var} = ${start:0}; ${var} < ${end}; ${var}++) {\n${body}\n}"},
				"for_each":    {Standard: "for (const ${var} of ${iter}) {\n${body}\n}", Legacy: "for (var ${var} of ${iter}) {\n${body}\n}"},
				"for_c":       V("for (${init}; ${cond}; ${post}) {\n${body}\n}"),
				"for_varying": V("for (${var} = ${start}; !(${cond}); ${var} += ${step}) {\n${body}\n}"),
				"switch":      V("switch (${subject}) {\n${body}\n}"),
				"case":        V("case ${value}: {\n${body}\n\tbreak;\n}"),
				"default":     V("default: {\n${body}\n}"),
				"try":         V("try {\n${body}\n}"),
				"catch":       V("catch (${var:e}) {\n${body}\n}"),
				"finally":     V("finally {\n${body}\n}"),
				"function":    {Standard: "function ${name}(${params:}) {\n${body}\n}", Modern: "const ${name} = (${params:}) => {\n${body}\n};"},
				"class":       V("class ${name} {\n${body}\n}"),
			}),
			Fusions: cFusions(";"),
		},
	})
}
