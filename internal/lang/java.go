package lang

import (
	"regexp"

	"codeshift/internal/model"
)

func init() {
	re := regexp.MustCompile

	Register(&Spec{
		Tag:        Java,
		Name:       "java",
		Extensions: []string{".java"},
		Grammar:    GrammarDelimited,
		Signatures: []Signature{
			{re(`(?m)^\s*import\s+java\.`), 9, "java.* import"},
			{re(`public\s+static\s+void\s+main\s*\(\s*String`), 9, "main method"},
			{re(`System\.(out|err)\.print`), 8, "System.out"},
			{re(`(?m)^\s*(public\s+)?(final\s+|abstract\s+)?class\s+\w+(\s+extends\s+\w+)?(\s+implements\s+[\w, ]+)?\s*\{`), 7, "class declaration"},
			{re(`(?m)^\s*package\s+[\w.]+;`), 7, "package clause"},
			{re(`(?m)^\s*@Override\b`), 5, "annotation"},
		},
		Keywords: map[string]int{
			"public": 1, "private": 1, "protected": 1, "class": 1, "static": 1, "void": 2,
			"import": 1, "package": 1, "new": 1, "final": 1, "extends": 1, "implements": 2,
			"throws": 3, "boolean": 2, "String": 1, "System": 2, "interface": 1, "null": 1,
		},
		Comments: CommentSyntax{Line: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"},
		Imports: []ImportPattern{
			{Pattern: re(`(?m)^\s*import\s+(?:static\s+)?(?P<dep>[\w.]+?)(?:\.\*)?\s*;`), Mode: ImportSingle},
		},
		ControlWords:  cControlWords,
		DeclWords:     []string{"class", "interface", "enum", "record", "import", "package"},
		DeclPattern:   re(`^(?:(?:public|private|protected|static|final)\s+)*[\w.]+(?:<[^>]*>)?(?:\[\])*\s+\w+\s*(?:=.*)?;?$`),
		StmtWords:     cStmtWords,
		Modifiers:     []string{"public", "private", "protected", "static", "final", "abstract", "synchronized"},
		DecisionWords: []string{"if", "else if", "for", "while", "case", "catch", "do"},
		LogicalOps:    []string{"&&", "||"},
		LiteralAfter:  append(cLiteralAfter, "]"),
		Words: map[string]string{
			"&&": "&&", "||": "||", "!": "!", "==": "==", "!=": "!=", "true": "true", "false": "false", "null": "null",
		},
		TypeNames: map[string]string{
			"int": "int", "long": "int", "short": "int", "byte": "int", "Integer": "int", "Long": "int",
			"double": "decimal", "float": "decimal", "Double": "decimal", "BigDecimal": "decimal",
			"String": "string", "char": "string", "boolean": "bool", "Boolean": "bool",
		},
		Constructs: append(append([]Construct{
			{Key: "println", Kind: model.Statement, Concept: "print", Pattern: re(`^System\.out\.println\((?P<args>.*)\)$`)},
			{Key: "print", Kind: model.Statement, Concept: "print", Pattern: re(`^System\.out\.print\((?P<args>.*)\)$`)},
			{Key: "exit", Kind: model.Statement, Concept: "exit", Pattern: re(`^System\.exit\((?P<code>.*)\)$`)},
			{Key: "import", Kind: model.Declaration, Concept: "import", Pattern: re(`^import\s+(?:static\s+)?(?P<path>[\w.]+?)(?:\.\*)?$`),
				Captures: map[string]CaptureKind{"path": CaptureList}},
			{Key: "package", Kind: model.Declaration, Concept: "package", Pattern: re(`^package\s+(?P<path>[\w.]+)$`),
				Captures: map[string]CaptureKind{"path": CaptureRaw}},
			// Must precede declare, whose pattern also matches type headers.
			{Key: "class", Kind: model.Declaration, Concept: "class",
				Pattern:  re(`^(?:@\w+\s+)*(?:(?:public|private|protected|static|final|abstract)\s+)*(?:class|interface|enum|record)\s+(?P<name>\w+)`),
				Captures: map[string]CaptureKind{"name": CaptureTypeName}},
			{Key: "declare", Kind: model.Declaration, Concept: "declare",
				Pattern:  re(`^(?:(?:public|private|protected|static|final)\s+)*(?P<type>[\w.]+(?:<[^>]*>)?(?:\[\])*)\s+(?P<name>\w+)(?:\s*=\s*(?P<value>.+))?$`),
				Captures: map[string]CaptureKind{"type": CaptureType, "name": CaptureName}},
			{Key: "for-each", Kind: model.ControlFlow, Concept: "for_each",
				Pattern:  re(`^for\s*\(\s*(?:final\s+)?(?P<type>[\w.<>\[\]]+)\s+(?P<var>\w+)\s*:\s*(?P<iter>.+)\)$`),
				Captures: map[string]CaptureKind{"type": CaptureType, "var": CaptureName}},
			{Key: "for", Kind: model.ControlFlow, Concept: "for_c", Pattern: re(`^for\s*\((?P<init>[^;]*);(?P<cond>[^;]*);(?P<post>[^;]*)\)$`),
				Captures: map[string]CaptureKind{"init": CaptureRaw, "post": CaptureRaw}},
			{Key: "while", Kind: model.ControlFlow, Concept: "while", Pattern: re(`^while\s*\((?P<cond>.*)\)$`)},
			{Key: "catch", Kind: model.ControlFlow, Concept: "catch", Pattern: re(`^catch\s*\(\s*(?P<type>[\w.| ]+?)\s+(?P<var>\w+)\s*\)$`),
				Captures: map[string]CaptureKind{"type": CaptureRaw, "var": CaptureName}},
			{Key: "method", Kind: model.Procedure, Concept: "function",
				Pattern:  re(`^(?:@\w+\s+)*(?:(?:public|private|protected|static|final|abstract|synchronized)\s+)*(?:[\w.<>\[\]]+\s+)?(?P<name>\w+)\s*\((?P<params>.*)\)(?:\s*throws\s+[\w., ]+)?$`),
				Captures: map[string]CaptureKind{"name": CaptureName, "params": CaptureParams}},
			{Key: "call", Kind: model.Statement, Concept: "call", Pattern: re(`^(?P<name>[\w.]+)\((?P<args>.*)\)$`),
				Captures: map[string]CaptureKind{"name": CaptureRaw}},
		}, cStatementConstructs(re)...), cControlConstructs(re, true)...),
		Target: &TargetSpec{
			Indent:      "    ",
			LineComment: "//",
			Wrap:        "public class ${name} {\n${body}\n}",
			Naming:      NamingCamel,
			ConcatJoin:  " + ",
			Types:       map[string]string{"int": "int", "decimal": "double", "string": "String", "bool": "boolean"},
			Zero:        map[string]string{"int": "0", "decimal": "0.0", "string": `""`, "bool": "false"},
			DefaultType: "Object",
			Params:      ParamsTypeFirst,
			FileName:    func(base string) string { return ApplyNaming(NamingPascal, base) },
			Templates: merge(cTemplates(";"), map[string]Variants{
				"print":      V("System.out.println(...);"),
				"declare":    {Standard: "${type:var} ${name} = ${value|zero:null};", Modern: "var ${name} = ${value|zero:null};", Legacy: "${type:Object} ${name} = ${value|zero:null};"},
				"call_until": V("while (!(${cond})) {\n\t${name}();\n}"),
				"call_times": V("for (int i = 0; i < ${count}; i++) {\n\t${name}();\n}"),
				"input":      V("${target} = new java.util.Scanner(System.in).nextLine();"),
				"exit":       V("System.exit(${code:0});"),
				"pass":       V(";"),
				"throw":      V("throw ${value};"),
				"import":     V("import ${path};"),
				"if":         V("if (${cond}) {\n${body}\n}"),
				"elif":       V("else if (${cond}) {\n${body}\n}"),
				"else":       V("else {\n${body}\n}"),
				"while":      V("while (${cond}) {\n${body}\n}"),
				"until":      V("while (!(${cond})) {\n${body}\n}"),
				"forever":    V("while (true) {\n${body}\n}"),
				"times":      V("for (int i = 0; i < ${count}; i++) {\n${body}\n}"),
				"for_range":  V("for (int ${var} = ${start:0}; ${var} < ${end}; ${var}++) {\n${body}\n}"),
				"for_each":   {Standard: "for (var ${var} : ${iter}) {\n${body}\n}", Legacy: "for (${type:Object} ${var} : ${iter}) {\n${body}\n}"},
				"for_c":      V("for (${init}; ${cond}; ${post}) {\n${body}\n}"),
				"for_varying": V("for (${var} = ${start}; !(${cond}); ${var} += ${step}) {\n${body}\n}"),
				"switch":     V("switch (${subject}) {\n${body}\n}"),
				"case":       {Standard: "case ${value} -> {\n${body}\n}", Legacy: "case ${value}:\n${body}\n\tbreak;"},
				"default":    {Standard: "default -> {\n${body}\n}", Legacy: "default:\n${body}"},
				"try":        V("try {\n${body}\n}"),
				"catch":      V("catch (${type:Exception} ${var:e}) {\n${body}\n}"),
				"finally":    V("finally {\n${body}\n}"),
				"function":   {Standard: "public static void ${name}(${params:}) {\n${body}\n}", Modern: "static void ${name}(${params:}) {\n${body}\n}"},
				"class":      V("static class ${name} {\n${body}\n}"),
			}),
			Fusions: cFusions(";"),
		},
	})
}
