package lang

import (
	"regexp"

	"codeshift/internal/model"
)

func init() {
	re := regexp.MustCompile

	Register(&Spec{
		Tag:        Python,
		Name:       "python",
		Aliases:    []string{"py", "python3"},
		Extensions: []string{".py", ".pyw"},
		Grammar:    GrammarIndented,
		Signatures: []Signature{
			{re(`if\s+__name__\s*==\s*["']__main__["']\s*:`), 10, "__main__ guard"},
			{re(`(?m)^#!.*\bpython[23]?\b`), 10, "python shebang"},
			{re(`(?m)^\s*def\s+\w+\s*\([^)]*\)\s*(->\s*[^:]+)?:\s*$`), 7, "def header"},
			{re(`(?m)^\s*elif\s+.+:\s*$`), 6, "elif"},
			{re(`(?m)^from\s+[\w.]+\s+import\s+`), 6, "from-import"},
			{re(`(?m)^\s*class\s+\w+(\([\w., ]*\))?:\s*$`), 6, "class header"},
		},
		Keywords: map[string]int{
			"def": 3, "elif": 4, "None": 3, "True": 1, "False": 1, "self": 2, "import": 1,
			"from": 1, "lambda": 2, "pass": 2, "print": 1, "yield": 1, "with": 1, "as": 1,
			"in": 1, "not": 1, "and": 1, "or": 1, "is": 1, "raise": 2, "except": 3,
		},
		Comments: CommentSyntax{Line: []string{"#"}},
		Imports: []ImportPattern{
			{Pattern: re(`(?m)^\s*import\s+(?P<dep>[\w.]+(?:\s*,\s*[\w.]+)*)`), Mode: ImportComma},
			{Pattern: re(`(?m)^\s*from\s+(?P<dep>[\w.]+)\s+import\b`), Mode: ImportSingle},
		},
		ControlWords: []string{"if", "elif", "else", "for", "while", "try", "except", "finally", "with", "match", "case"},
		DeclWords:    []string{"class", "import", "from", "global", "nonlocal"},
		DeclPattern:  re(`^\w+\s*:\s*[\w\[\], .]+(?:\s*=.*)?$`),
		StmtWords:    []string{"return", "raise", "del", "assert", "yield", "await", "lambda"},

		DecisionWords: []string{"if", "elif", "for", "while", "except", "case"},
		LogicalOps:    []string{"and", "or"},
		Words: map[string]string{
			"and": "&&", "or": "||", "not": "!", "==": "==", "!=": "!=",
			"True": "true", "False": "false", "None": "null",
		},
		TypeNames: map[string]string{"int": "int", "float": "decimal", "str": "string", "bool": "bool"},
		Constructs: []Construct{
			{Key: "print", Kind: model.Statement, Concept: "print", Pattern: re(`^print\((?P<args>.*)\)$`)},
			{Key: "exit", Kind: model.Statement, Concept: "exit", Pattern: re(`^(?:sys\.)?exit\((?P<code>.*)\)$`)},
			{Key: "return-value", Kind: model.Statement, Concept: "return_value", Pattern: re(`^return\s+(?P<value>.+)$`)},
			{Key: "return", Kind: model.Statement, Concept: "return", Pattern: re(`^return$`)},
			{Key: "pass", Kind: model.Statement, Concept: "pass", Pattern: re(`^pass$`)},
			{Key: "break", Kind: model.Statement, Concept: "break", Pattern: re(`^break$`)},
			{Key: "continue", Kind: model.Statement, Concept: "continue", Pattern: re(`^continue$`)},
			{Key: "raise", Kind: model.Statement, Concept: "throw", Pattern: re(`^raise\s+(?P<value>.+)$`)},
			{Key: "input", Kind: model.Statement, Concept: "input", Pattern: re(`^(?P<target>\w+)\s*=\s*input\((?P<prompt>.*)\)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "add-assign", Kind: model.Statement, Concept: "add", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*\+=\s*(?P<value>.+)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "sub-assign", Kind: model.Statement, Concept: "subtract", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*-=\s*(?P<value>.+)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "mul-assign", Kind: model.Statement, Concept: "multiply", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*\*=\s*(?P<value>.+)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "div-assign", Kind: model.Statement, Concept: "divide", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*/=\s*(?P<value>.+)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "assign", Kind: model.Statement, Concept: "assign", Pattern: re(`^(?P<target>[\w.\[\]]+)\s*=\s*(?P<value>[^=].*)$`),
				Captures: map[string]CaptureKind{"target": CaptureRaw}},
			{Key: "call", Kind: model.Statement, Concept: "call", Pattern: re(`^(?P<name>[\w.]+)\((?P<args>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureRaw}},

			{Key: "import", Kind: model.Declaration, Concept: "import", Pattern: re(`^import\s+(?P<path>[\w.]+(?:\s*,\s*[\w.]+)*)$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "from-import", Kind: model.Declaration, Concept: "import", Pattern: re(`^from\s+(?P<path>[\w.]+)\s+import\s+.+$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "annotated-assign", Kind: model.Declaration, Concept: "declare",
				Pattern:  re(`^(?P<name>\w+)\s*:\s*(?P<type>[\w\[\], .]+?)(?:\s*=\s*(?P<value>.+))?$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "type": CaptureType}},
			{Key: "class", Kind: model.Declaration, Concept: "class", Pattern: re(`^class\s+(?P<name>\w+)(?:\((?P<base>.*)\))?$`),
				Captures: map[string]CaptureKind{"name": CaptureTypeName, "base": CaptureRaw}},

			{Key: "if", Kind: model.ControlFlow, Concept: "if", Pattern: re(`^if\s+(?P<cond>.+)$`)},
			{Key: "elif", Kind: model.ControlFlow, Concept: "elif", Pattern: re(`^elif\s+(?P<cond>.+)$`)},
			{Key: "else", Kind: model.ControlFlow, Concept: "else", Pattern: re(`^else$`)},
			{Key: "while-true", Kind: model.ControlFlow, Concept: "forever", Pattern: re(`^while\s+(?:True|1)$`)},
			{Key: "while", Kind: model.ControlFlow, Concept: "while", Pattern: re(`^while\s+(?P<cond>.+)$`)},
			{Key: "for-range", Kind: model.ControlFlow, Concept: "for_range",
				Pattern:  re(`^for\s+(?P<var>\w+)\s+in\s+range\(\s*(?:(?P<start>[^,()]+)\s*,\s*)?(?P<end>[^,()]+)\s*\)$`),
				Captures: map[string]CaptureKind{"var": CaptureName}},
			{Key: "for", Kind: model.ControlFlow, Concept: "for_each", Pattern: re(`^for\s+(?P<var>\w+)\s+in\s+(?P<iter>.+)$`),
				Captures: map[string]CaptureKind{"var": CaptureName}},
			{Key: "match", Kind: model.ControlFlow, Concept: "switch", Pattern: re(`^match\s+(?P<subject>.+)$`)},
			{Key: "case-default", Kind: model.ControlFlow, Concept: "default", Pattern: re(`^case\s+_$`)},
			{Key: "case", Kind: model.ControlFlow, Concept: "case", Pattern: re(`^case\s+(?P<value>.+)$`)},
			{Key: "try", Kind: model.ControlFlow, Concept: "try", Pattern: re(`^try$`)},
			{Key: "except", Kind: model.ControlFlow, Concept: "catch",
				Pattern:  re(`^except(?:\s+(?P<type>[\w.]+))?(?:\s+as\s+(?P<var>\w+))?$`),
				Captures: map[string]CaptureKind{"type": CaptureRaw, "var": CaptureName}},
			{Key: "finally", Kind: model.ControlFlow, Concept: "finally", Pattern: re(`^finally$`)},

			{Key: "def", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^(?:async\s+)?def\s+(?P<name>\w+)\s*\((?P<params>.*)\)(?:\s*->\s*.+)?$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
		},
		Target: &TargetSpec{
			Indent:      "    ",
			LineComment: "#",
			EmptyBody:   "pass",
			Naming:      NamingSnake,
			ConcatJoin:  ", ",
			Render: map[string]string{
				"&&": "and", "||": "or", "!": "not", "true": "True", "false": "False", "null": "None",
			},
			Types:       map[string]string{"int": "int", "decimal": "float", "string": "str", "bool": "bool"},
			Zero:        map[string]string{"int": "0", "decimal": "0.0", "string": `""`, "bool": "False"},
			DefaultType: "object",
			Params:      ParamsNameOnly,
			FileName:    func(base string) string { return ApplyNaming(NamingSnake, base) },
			Templates: map[string]Variants{
				"print":        {Standard: "print(...)", Legacy: "print ..."},
				"assign":       V("${target} = ${value}"),
				"declare":      {Standard: "${name} = ${value|zero:None}", Modern: "${name}: ${type:object} = ${value|zero:None}"},
				"add":          V("${target} += ${value}"),
				"subtract":     V("${target} -= ${value}"),
				"multiply":     V("${target} *= ${value}"),
				"divide":       V("${target} /= ${value}"),
				"call":         V("${name}(${args:})"),
				"call_until":   V("while not (${cond}):\n\t${name}()"),
				"call_times":   V("for _ in range(${count}):\n\t${name}()"),
				"input":        {Standard: "${target} = input()", Legacy: "${target} = raw_input()"},
				"exit":         V("sys.exit(${code:0})"),
				"return":       V("return"),
				"return_value": V("return ${value}"),
				"pass":         V("pass"),
				"break":        V("break"),
				"continue":     V("continue"),
				"throw":        V("raise ${value}"),
				"import":       V("import ${path}"),
				"package":      V("# package ${path}"),
				"marker":       V("# ${text}"),
				"if":           V("if ${cond}:\n${body}"),
				"elif":         V("elif ${cond}:\n${body}"),
				"else":         V("else:\n${body}"),
				"while":        V("while ${cond}:\n${body}"),
				"until":        V("while not (${cond}):\n${body}"),
				"forever":      V("while True:\n${body}"),
				"times":        V("for _ in range(${count}):\n${body}"),
				"for_range":    V("for ${var} in range(${start:0}, ${end}):\n${body}"),
				"for_each":     V("for ${var} in ${iter}:\n${body}"),
				"for_varying":  V("${var} = ${start}\nwhile not (${cond}):\n${body}\n\t${var} += ${step}"),
				"switch":       V("match ${subject}:\n${body}"),
				"case":         V("case ${value}:\n${body}"),
				"default":      V("case _:\n${body}"),
				"try":          V("try:\n${body}"),
				"catch":        V("except ${type:Exception} as ${var:e}:\n${body}"),
				"finally":      V("finally:\n${body}"),
				"function":     {Standard: "def ${name}(${params:}):\n${body}", Modern: "def ${name}(${params:}) -> None:\n${body}"},
				"class":        V("class ${name}:\n${body}"),
			},
			Fusions: []Fusion{
				{First: "assign", Second: "add", Same: [][2]string{{"target", "target"}},
					Template: V("${first.target} = ${first.value} + ${second.value}")},
				{First: "add", Second: "add", Same: [][2]string{{"target", "target"}},
					Template: V("${first.target} += ${first.value} + ${second.value}")},
				{First: "assign", Second: "subtract", Same: [][2]string{{"target", "target"}},
					Template: V("${first.target} = ${first.value} - ${second.value}")},
			},
		},
	})
}
