package lang

import (
	"regexp"

	"codeshift/internal/model"
)

func init() {
	ci := func(p string) *regexp.Regexp { return regexp.MustCompile(`(?i)` + p) }

	Register(&Spec{
		Tag:        COBOL,
		Name:       "cobol",
		Aliases:    []string{"cbl", "cob"},
		Extensions: []string{".cbl", ".cob", ".cobol", ".cpy"},
		Grammar:    GrammarKeywordPair,
		CaseFold:   true,
		Hyphenated: true,
		Signatures: []Signature{
			{ci(`(?m)^[\d ]{0,7}IDENTIFICATION\s+DIVISION\s*\.`), 10, "identification division"},
			{ci(`(?m)^[\d ]{0,7}PROCEDURE\s+DIVISION\b`), 9, "procedure division"},
			{ci(`(?m)^[\d ]{0,7}WORKING-STORAGE\s+SECTION\s*\.`), 8, "working-storage section"},
			{ci(`(?m)^[\d ]{0,7}DATA\s+DIVISION\s*\.`), 8, "data division"},
			{ci(`(?m)^\s*0[15]\s+[A-Z0-9-]+\s+PIC(TURE)?\s`), 6, "level-numbered data item"},
			{ci(`\bEND-PERFORM\b`), 5, "end-perform"},
		},
		Keywords: map[string]int{
			"DIVISION": 3, "SECTION": 2, "WORKING-STORAGE": 4, "PROCEDURE": 1,
			"PERFORM": 3, "END-PERFORM": 3, "END-IF": 3, "END-EVALUATE": 3,
			"DISPLAY": 2, "MOVE": 2, "COMPUTE": 2, "PIC": 3, "PICTURE": 3,
			"ACCEPT": 1, "GIVING": 2, "EVALUATE": 2, "PROGRAM-ID": 4, "STOP": 1,
		},
		Comments: CommentSyntax{Line: []string{"*>"}, FixedIndicator: true},
		Imports: []ImportPattern{
			{Pattern: ci(`(?m)^[\d ]*COPY\s+"?(?P<dep>[A-Z0-9_-]+)"?`), Mode: ImportSingle},
			{Pattern: ci(`\bCALL\s+['"](?P<dep>[^'"]+)['"]`), Mode: ImportSingle},
		},
		DecisionWords: []string{"IF", "WHEN", "PERFORM"},
		LogicalOps:    []string{"AND", "OR"},
		Words: map[string]string{
			"=": "==", "EQUAL": "==", "EQUALS": "==", "NOT": "!", "AND": "&&", "OR": "||",
			"GREATER": ">", "LESS": "<", "IS": "", "THAN": "", "TO": "",
			"TRUE": "true", "FALSE": "false", "SPACES": `""`, "SPACE": `""`, "ZERO": "0", "ZEROS": "0", "ZEROES": "0",
		},
		Phrases: []Phrase{
			{ci(`\bGREATER\s+(?:THAN\s+)?OR\s+EQUAL(?:\s+TO)?\b`), ">="},
			{ci(`\bLESS\s+(?:THAN\s+)?OR\s+EQUAL(?:\s+TO)?\b`), "<="},
			{ci(`\bNOT\s+EQUAL(?:\s+TO)?\b`), "!="},
			{ci(`\bNOT\s+=`), "!="},
			{ci(`\bNOT\s+GREATER(?:\s+THAN)?\b`), "<="},
			{ci(`\bNOT\s+LESS(?:\s+THAN)?\b`), ">="},
		},
		Constructs: cobolConstructs(ci),
	})
}

func cobolConstructs(ci func(string) *regexp.Regexp) []Construct {
	name := map[string]CaptureKind{"name": CaptureName}
	target := map[string]CaptureKind{"target": CaptureName}
	return []Construct{
		// sentences
		{Key: "DISPLAY", Kind: model.Statement, Concept: "print",
			Pattern:  ci(`^DISPLAY\s+(?P<args>.+?)(?:\s+UPON\s+\S+)?(?:\s+WITH\s+NO\s+ADVANCING)?$`),
			Captures: map[string]CaptureKind{"args": CaptureOperands}},
		{Key: "MOVE", Kind: model.Statement, Concept: "assign",
			Pattern: ci(`^MOVE\s+(?P<value>.+?)\s+TO\s+(?P<target>[A-Z0-9-]+)$`), Captures: target},
		{Key: "ADD", Kind: model.Statement, Concept: "add",
			Pattern: ci(`^ADD\s+(?P<value>.+?)\s+TO\s+(?P<target>[A-Z0-9-]+)$`), Captures: target},
		{Key: "SUBTRACT", Kind: model.Statement, Concept: "subtract",
			Pattern: ci(`^SUBTRACT\s+(?P<value>.+?)\s+FROM\s+(?P<target>[A-Z0-9-]+)$`), Captures: target},
		{Key: "MULTIPLY", Kind: model.Statement, Concept: "multiply",
			Pattern: ci(`^MULTIPLY\s+(?P<value>\S+)\s+BY\s+(?P<target>[A-Z0-9-]+)$`), Captures: target},
		{Key: "DIVIDE", Kind: model.Statement, Concept: "divide",
			Pattern: ci(`^DIVIDE\s+(?P<value>\S+)\s+INTO\s+(?P<target>[A-Z0-9-]+)$`), Captures: target},
		{Key: "COMPUTE", Kind: model.Statement, Concept: "assign",
			Pattern: ci(`^COMPUTE\s+(?P<target>[A-Z0-9-]+)(?:\s+ROUNDED)?\s*=\s*(?P<value>.+)$`), Captures: target},
		{Key: "PERFORM-UNTIL", Kind: model.Statement, Concept: "call_until",
			Pattern: ci(`^PERFORM\s+(?P<name>[A-Z0-9][A-Z0-9-]*)\s+(?:WITH\s+TEST\s+BEFORE\s+)?UNTIL\s+(?P<cond>.+)$`), Captures: name},
		{Key: "PERFORM-TIMES", Kind: model.Statement, Concept: "call_times",
			Pattern: ci(`^PERFORM\s+(?P<name>[A-Z][A-Z0-9-]*)\s+(?P<count>[A-Z0-9-]+)\s+TIMES$`), Captures: name},
		{Key: "PERFORM", Kind: model.Statement, Concept: "call",
			Pattern: ci(`^PERFORM\s+(?P<name>[A-Z0-9][A-Z0-9-]*)(?:\s+(?:THRU|THROUGH)\s+\S+)?$`), Captures: name},
		{Key: "CALL", Kind: model.Statement, Concept: "call",
			Pattern: ci(`^CALL\s+(?P<name>"[^"]+"|'[^']+')(?:\s+USING\s+(?P<args>.+))?$`),
			Captures: map[string]CaptureKind{"name": CaptureName, "args": CaptureOperands}},
		{Key: "ACCEPT", Kind: model.Statement, Concept: "input",
			Pattern: ci(`^ACCEPT\s+(?P<target>[A-Z0-9-]+)(?:\s+FROM\s+\S+)?$`), Captures: target},
		{Key: "STOP-RUN", Kind: model.Statement, Concept: "exit", Pattern: ci(`^STOP\s+RUN$`)},
		{Key: "GOBACK", Kind: model.Statement, Concept: "return", Pattern: ci(`^GOBACK$`)},
		{Key: "EXIT-PROGRAM", Kind: model.Statement, Concept: "return", Pattern: ci(`^EXIT\s+PROGRAM$`)},
		{Key: "CONTINUE", Kind: model.Statement, Concept: "pass", Pattern: ci(`^(?:CONTINUE|EXIT)$`)},

		// scopes
		{Key: "IF", Kind: model.ControlFlow, Concept: "if", Pattern: ci(`^IF\s+(?P<cond>.+?)(?:\s+THEN)?$`)},
		{Key: "ELSE", Kind: model.ControlFlow, Concept: "else", Pattern: ci(`^ELSE$`)},
		{Key: "PERFORM-VARYING", Kind: model.ControlFlow, Concept: "for_varying",
			Pattern:  ci(`^PERFORM\s+VARYING\s+(?P<var>[A-Z0-9-]+)\s+FROM\s+(?P<start>\S+)\s+BY\s+(?P<step>\S+)\s+UNTIL\s+(?P<cond>.+)$`),
			Captures: map[string]CaptureKind{"var": CaptureName}},
		{Key: "PERFORM-LOOP", Kind: model.ControlFlow, Concept: "until",
			Pattern: ci(`^PERFORM\s+(?:WITH\s+TEST\s+(?:BEFORE|AFTER)\s+)?UNTIL\s+(?P<cond>.+)$`)},
		{Key: "PERFORM-TIMES-LOOP", Kind: model.ControlFlow, Concept: "times",
			Pattern: ci(`^PERFORM\s+(?P<count>[A-Z0-9-]+)\s+TIMES$`)},
		{Key: "EVALUATE", Kind: model.ControlFlow, Concept: "switch", Pattern: ci(`^EVALUATE\s+(?P<subject>.+)$`)},
		{Key: "WHEN-OTHER", Kind: model.ControlFlow, Concept: "default", Pattern: ci(`^WHEN\s+OTHER$`)},
		{Key: "WHEN", Kind: model.ControlFlow, Concept: "case", Pattern: ci(`^WHEN\s+(?P<value>.+)$`)},

		// paragraphs
		{Key: "PARAGRAPH", Kind: model.Procedure, Concept: "function",
			Pattern: ci(`^(?P<name>[A-Z0-9][A-Z0-9-]*)(?:\s+SECTION)?$`), Captures: name},

		// data and headings
		{Key: "DIVISION", Kind: model.Declaration, Concept: "marker",
			Pattern: ci(`^(?P<text>[A-Z-]+\s+DIVISION)(?:\s+USING\s+.*)?$`), Captures: map[string]CaptureKind{"text": CaptureRaw}},
		{Key: "SECTION", Kind: model.Declaration, Concept: "marker",
			Pattern: ci(`^(?P<text>[A-Z0-9-]+\s+SECTION)$`), Captures: map[string]CaptureKind{"text": CaptureRaw}},
		{Key: "PROGRAM-ID", Kind: model.Declaration, Concept: "marker",
			Pattern: ci(`^(?P<text>PROGRAM-ID\.?\s+\S+.*)$`), Captures: map[string]CaptureKind{"text": CaptureRaw}},
		{Key: "IDENTIFICATION-PARAGRAPH", Kind: model.Declaration, Concept: "marker",
			Pattern:  ci(`^(?P<text>(?:AUTHOR|INSTALLATION|DATE-WRITTEN|DATE-COMPILED|SECURITY|REMARKS)\b.*)$`),
			Captures: map[string]CaptureKind{"text": CaptureRaw}},
		{Key: "END-PROGRAM", Kind: model.Declaration, Concept: "marker",
			Pattern: ci(`^(?P<text>END\s+PROGRAM\b.*)$`), Captures: map[string]CaptureKind{"text": CaptureRaw}},
		{Key: "COPY", Kind: model.Declaration, Concept: "import",
			Pattern: ci(`^COPY\s+"?(?P<path>[A-Z0-9_-]+)"?$`), Captures: map[string]CaptureKind{"path": CaptureList}},
		{Key: "DATA-ITEM", Kind: model.Declaration, Concept: "declare",
			Pattern: ci(`^(?P<level>\d{1,2})\s+(?P<name>[A-Z0-9-]+)\s+PIC(?:TURE)?\s+(?:IS\s+)?(?P<type>\S+)(?:\s+VALUE\s+(?:IS\s+)?(?P<value>.+))?$`),
			Captures: map[string]CaptureKind{"name": CaptureName, "type": CaptureType}},
		{Key: "GROUP-ITEM", Kind: model.Declaration, Concept: "class",
			Pattern: ci(`^(?P<level>\d{1,2})\s+(?P<name>[A-Z0-9-]+)$`), Captures: map[string]CaptureKind{"name": CaptureTypeName}},
	}
}
