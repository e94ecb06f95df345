package convert_test

import (
	"errors"
	"strings"
	"testing"

	"codeshift/internal/convert"
	"codeshift/internal/diag"
	"codeshift/internal/lang"
	"codeshift/internal/metrics"
	"codeshift/internal/source"
	"codeshift/internal/structure"
)

func run(t *testing.T, path, src string, opts convert.Options) *convert.Result {
	t.Helper()
	rs, err := convert.NewRuleSet(opts)
	if err != nil {
		t.Fatalf("rule set: %v", err)
	}
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual(path, []byte(src)))
	m, issues := structure.Build(f, opts.Source)
	if len(issues) != 0 {
		t.Fatalf("unexpected structural issues: %+v", issues)
	}
	res := convert.Convert(m, metrics.Score(m), rs)
	if got := res.Converted + res.Unmapped + res.Failed + res.Skipped; got != res.Blocks {
		t.Fatalf("block accounting: %d converted + %d unmapped + %d failed + %d skipped != %d blocks",
			res.Converted, res.Unmapped, res.Failed, res.Skipped, res.Blocks)
	}
	return res
}

func expectText(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("unexpected output:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

const hello = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. HELLO.
       PROCEDURE DIVISION.
       MAIN-LOGIC.
           DISPLAY "Hello".
           STOP RUN.
`

func TestCOBOLToPython(t *testing.T) {
	res := run(t, "hello.cbl", hello, convert.Options{Source: lang.COBOL, Target: lang.Python, Level: convert.LevelMinimal})
	expectText(t, res.Text, `# IDENTIFICATION DIVISION
# PROGRAM-ID. HELLO
# PROCEDURE DIVISION
def main_logic():
    print("Hello")
    sys.exit(0)
`)
	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %+v", res.Issues)
	}
	if res.Coverage() != 1 || res.Accuracy() != 1 {
		t.Fatalf("expected full coverage and accuracy, got %v and %v", res.Coverage(), res.Accuracy())
	}
}

func TestCOBOLToJavaIsWrapped(t *testing.T) {
	res := run(t, "hello.cbl", hello, convert.Options{Source: lang.COBOL, Target: lang.Java})
	expectText(t, res.Text, `// Converted from cobol to java by codeshift (balanced, standard)
public class Hello {
    // IDENTIFICATION DIVISION
    // PROGRAM-ID. HELLO
    // PROCEDURE DIVISION
    public static void mainLogic() {
        System.out.println("Hello");
        System.exit(0);
    }
}
`)
}

func TestCustomMappingOverridesDefault(t *testing.T) {
	for _, key := range []string{"DISPLAY", "display"} {
		res := run(t, "hello.cbl", hello, convert.Options{
			Source: lang.COBOL,
			Target: lang.Python,
			Custom: map[string]string{key: "log.info(...)"},
		})
		if !strings.Contains(res.Text, "    log.info(\"Hello\")\n") {
			t.Fatalf("custom mapping %q not applied:\n%s", key, res.Text)
		}
		if strings.Contains(res.Text, "print(") {
			t.Fatalf("default mapping used despite custom %q:\n%s", key, res.Text)
		}
	}
}

func TestMissingCaptureIsBlockScoped(t *testing.T) {
	res := run(t, "hello.cbl", hello, convert.Options{
		Source: lang.COBOL,
		Target: lang.Python,
		Custom: map[string]string{"DISPLAY": "log.info(${msg})"},
	})
	if res.Errors() != 1 || res.Failed != 1 {
		t.Fatalf("expected one failed block, got %d errors and %d failed", res.Errors(), res.Failed)
	}
	if res.Issues[0].Code != diag.ConvMissingCapture {
		t.Fatalf("expected missing capture, got %v", res.Issues[0].Code)
	}
	for _, want := range []string{
		"    # codeshift: cannot convert DISPLAY: missing ${msg}\n",
		"    # DISPLAY \"Hello\".\n",
		"    sys.exit(0)\n",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("expected %q in:\n%s", want, res.Text)
		}
	}
	if res.Accuracy() >= 1 {
		t.Fatalf("an error must lower accuracy, got %v", res.Accuracy())
	}
}

const additions = `       PROCEDURE DIVISION.
       MAIN-LOGIC.
           MOVE 1 TO X.
           ADD 2 TO X.
           ADD 3 TO X.
`

func TestFusionLeftmostWins(t *testing.T) {
	res := run(t, "sum.cbl", additions, convert.Options{Source: lang.COBOL, Target: lang.Python, Level: convert.LevelAggressive})
	if !strings.Contains(res.Text, "    x = 1 + 2\n    x += 3\n") {
		t.Fatalf("expected the first pair to fuse:\n%s", res.Text)
	}
	if res.Fused != 1 {
		t.Fatalf("expected one fusion, got %d", res.Fused)
	}
	var infos int
	for _, d := range res.Issues {
		if d.Severity == diag.SevInfo && d.Code == diag.ConvFused {
			infos++
		}
	}
	if infos != 1 || res.Errors() != 0 {
		t.Fatalf("expected one fusion note and no errors, got %+v", res.Issues)
	}
}

func TestFusionNeedsAggressiveLevel(t *testing.T) {
	res := run(t, "sum.cbl", additions, convert.Options{Source: lang.COBOL, Target: lang.Python})
	if !strings.Contains(res.Text, "    x = 1\n    x += 2\n    x += 3\n") || res.Fused != 0 {
		t.Fatalf("unexpected fusion at balanced level:\n%s", res.Text)
	}
}

func TestUnmappedConstructIsCommented(t *testing.T) {
	src := "with open(p) as fh:\n    data = fh.read()\n"
	res := run(t, "w.py", src, convert.Options{Source: lang.Python, Target: lang.JavaScript})
	expectText(t, res.Text, `// Converted from python to javascript by codeshift (balanced, standard)
// with open(p) as fh:
//     data = fh.read()
`)
	if res.Unmapped != 1 || res.Skipped != 1 || res.Converted != 0 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.Issues) != 1 || res.Issues[0].Severity != diag.SevWarning || res.Issues[0].Code != diag.ConvUnmappedConstruct {
		t.Fatalf("expected one unmapped warning, got %+v", res.Issues)
	}
	if res.Accuracy() != 1 {
		t.Fatalf("warnings must not lower accuracy, got %v", res.Accuracy())
	}
}

func TestIdentityIsIdempotent(t *testing.T) {
	src := "\n\ndef f(x):   \n    return x\n\n\n\nprint(f(1))  \n\n"
	first := run(t, "a.py", src, convert.Options{Source: lang.Python, Target: lang.Python})
	expectText(t, first.Text, "def f(x):\n    return x\n\nprint(f(1))\n")
	second := run(t, "a.py", first.Text, convert.Options{Source: lang.Python, Target: lang.Python})
	expectText(t, second.Text, first.Text)
	if first.Coverage() != 1 || len(first.Issues) != 0 {
		t.Fatalf("identity must convert every block without issues")
	}
}

func TestEmptyBodyPlaceholder(t *testing.T) {
	src := "class A {\n    void f() {\n    }\n}\n"
	res := run(t, "A.java", src, convert.Options{Source: lang.Java, Target: lang.Python, Level: convert.LevelMinimal})
	expectText(t, res.Text, "class A:\n    def f():\n        pass\n")
}

func TestCommentOnlyBodyGetsPlaceholder(t *testing.T) {
	src := "type P struct {\n\tX int\n}\n"
	res := run(t, "p.go", src, convert.Options{Source: lang.Go, Target: lang.Python, Level: convert.LevelMinimal})
	expectText(t, res.Text, "class P:\n    # X int\n    pass\n")
	if res.Unmapped != 1 {
		t.Fatalf("expected the field to stay unmapped, got %+v", res)
	}
}

func TestPreserveStructure(t *testing.T) {
	src := "x = 1\n\ny = 2\nz = 3\n"
	opts := convert.Options{Source: lang.Python, Target: lang.JavaScript, Level: convert.LevelMinimal}
	plain := run(t, "s.py", src, opts)
	if strings.Contains(plain.Text, "\n\n") {
		t.Fatalf("blank lines kept without preserveStructure:\n%s", plain.Text)
	}
	opts.PreserveStructure = true
	kept := run(t, "s.py", src, opts)
	if strings.Count(kept.Text, "\n\n") != 1 {
		t.Fatalf("expected exactly one blank line:\n%s", kept.Text)
	}
}

func TestPreserveStructureSameLine(t *testing.T) {
	opts := convert.Options{Source: lang.JavaScript, Target: lang.Python, Level: convert.LevelMinimal, PreserveStructure: true}
	res := run(t, "a.js", "let a = 1; let b = 2;\n", opts)
	if !strings.Contains(res.Text, "a = 1\nb = 2\n") {
		t.Fatalf("blocks on one line must stay adjacent:\n%s", res.Text)
	}
}

func TestJavaTypeHeaders(t *testing.T) {
	src := "public class Hello {\n    public static void main(String[] args) {\n        System.out.println(\"hi\");\n    }\n}\n"
	cases := []struct {
		target lang.Tag
		header string
		method string
		wrong  string
	}{
		{lang.Python, "class Hello:\n", "\n    def main(", "Hello = None"},
		{lang.JavaScript, "class Hello {\n", "\n  function main(", "let Hello"},
		{lang.Go, "type Hello struct {\n", "\n\tfunc main(", "var Hello"},
	}
	for _, tc := range cases {
		res := run(t, "Hello.java", src, convert.Options{Source: lang.Java, Target: tc.target, Level: convert.LevelMinimal})
		if !strings.Contains(res.Text, tc.header) || strings.Contains(res.Text, tc.wrong) {
			t.Fatalf("%v: class header not converted:\n%s", tc.target, res.Text)
		}
		if !strings.Contains(res.Text, tc.method) {
			t.Fatalf("%v: method not nested in the class:\n%s", tc.target, res.Text)
		}
	}

	res := run(t, "Shape.java", "interface Shape {\n}\n", convert.Options{Source: lang.Java, Target: lang.Python, Level: convert.LevelMinimal})
	expectText(t, res.Text, "class Shape:\n    pass\n")
}

func TestParameterStyles(t *testing.T) {
	src := "class Calc {\n    static int sum(int a, String b) {\n        return a;\n    }\n}\n"
	res := run(t, "Calc.java", src, convert.Options{Source: lang.Java, Target: lang.Go})
	if !strings.Contains(res.Text, "func sum(a int, b string) {\n") {
		t.Fatalf("parameters not rewritten:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "package main\n") {
		t.Fatalf("missing prelude:\n%s", res.Text)
	}

	py := "def add(self, a, b):\n    return a + b\n"
	res = run(t, "add.py", py, convert.Options{Source: lang.Python, Target: lang.Java})
	if !strings.Contains(res.Text, "public static void add(Object a, Object b) {\n") {
		t.Fatalf("parameters not rewritten:\n%s", res.Text)
	}
}

func TestHighComplexityReviewComment(t *testing.T) {
	var b strings.Builder
	b.WriteString("def f(a):\n")
	for i := 0; i < 9; i++ {
		b.WriteString("    if a == 1:\n        return 1\n")
	}
	res := run(t, "c.py", b.String(), convert.Options{Source: lang.Python, Target: lang.JavaScript})
	if !strings.Contains(res.Text, "// codeshift: f has cyclomatic complexity 10, review manually\nfunction f(a) {\n") {
		t.Fatalf("expected a review comment:\n%s", res.Text)
	}
	res = run(t, "c.py", b.String(), convert.Options{Source: lang.Python, Target: lang.JavaScript, Level: convert.LevelMinimal})
	if strings.Contains(res.Text, "//") {
		t.Fatalf("minimal level emits no comments:\n%s", res.Text)
	}
}

func TestCOBOLPayrollToPython(t *testing.T) {
	src := `       IDENTIFICATION DIVISION.
       PROGRAM-ID. PAYROLL.
       DATA DIVISION.
       WORKING-STORAGE SECTION.
       01 WS-COUNTER PIC 9(3) VALUE 0.
       01 WS-RECORD.
          05 WS-NAME PIC X(20).
          05 WS-AMOUNT PIC 9(5)V99.
       PROCEDURE DIVISION.
       MAIN-LOGIC.
           PERFORM PROCESS-ITEM UNTIL WS-COUNTER >= 10.
           IF WS-COUNTER > 5
               DISPLAY "BIG"
           ELSE
               DISPLAY "SMALL".
       PROCESS-ITEM.
           PERFORM UNTIL WS-COUNTER > 20
               ADD 2 TO WS-COUNTER
           END-PERFORM.
           EVALUATE WS-COUNTER
               WHEN 1
                   DISPLAY "ONE"
               WHEN OTHER
                   DISPLAY "MANY"
           END-EVALUATE.
`
	res := run(t, "payroll.cbl", src, convert.Options{Source: lang.COBOL, Target: lang.Python, Level: convert.LevelMinimal})
	expectText(t, res.Text, `# IDENTIFICATION DIVISION
# PROGRAM-ID. PAYROLL
# DATA DIVISION
# WORKING-STORAGE SECTION
ws_counter = 0
class WsRecord:
    ws_name = ""
    ws_amount = 0.0
# PROCEDURE DIVISION
def main_logic():
    while not (ws_counter >= 10):
        process_item()
    if ws_counter > 5:
        print("BIG")
    else:
        print("SMALL")
def process_item():
    while not (ws_counter > 20):
        ws_counter += 2
    match ws_counter:
        case 1:
            print("ONE")
        case _:
            print("MANY")
`)
	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %+v", res.Issues)
	}
}

func TestDeepNestingDoesNotRecurse(t *testing.T) {
	const depth = 1000
	src := strings.Repeat("if (a) {\n", depth) + strings.Repeat("}\n", depth)
	res := run(t, "deep.js", src, convert.Options{Source: lang.JavaScript, Target: lang.Python, Level: convert.LevelMinimal})
	if res.Converted != depth {
		t.Fatalf("expected %d converted blocks, got %d", depth, res.Converted)
	}
	want := strings.Repeat("    ", depth) + "pass\n"
	if !strings.HasSuffix(res.Text, want) {
		t.Fatalf("innermost body not at depth %d", depth)
	}
}

func TestNewRuleSetValidation(t *testing.T) {
	tests := []struct {
		name string
		opts convert.Options
		want error
	}{
		{"source only target", convert.Options{Source: lang.Python, Target: lang.COBOL}, convert.ErrUnsupportedPair},
		{"unknown language", convert.Options{Source: lang.Unknown, Target: lang.Python}, convert.ErrUnsupportedPair},
		{"empty template", convert.Options{Source: lang.COBOL, Target: lang.Python, Custom: map[string]string{"DISPLAY": " "}}, convert.ErrBadMapping},
		{"empty key", convert.Options{Source: lang.COBOL, Target: lang.Python, Custom: map[string]string{"": "x"}}, convert.ErrBadMapping},
		{"broken placeholder", convert.Options{Source: lang.COBOL, Target: lang.Python, Custom: map[string]string{"DISPLAY": "log(${msg"}}, convert.ErrBadMapping},
		{"bad level", convert.Options{Source: lang.COBOL, Target: lang.Python, Level: 9}, convert.ErrBadOption},
		{"bad style", convert.Options{Source: lang.COBOL, Target: lang.Python, Style: 9}, convert.ErrBadOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert.NewRuleSet(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	opts := convert.Options{Source: lang.COBOL, Target: lang.Java, Custom: map[string]string{"DISPLAY": "log(...)"}}
	a, err := convert.NewRuleSet(opts)
	if err != nil {
		t.Fatalf("rule set: %v", err)
	}
	b, _ := convert.NewRuleSet(opts)
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal options must give equal fingerprints")
	}
	opts.Level = convert.LevelAggressive
	c, _ := convert.NewRuleSet(opts)
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("level must change the fingerprint")
	}
}

func TestStyleVariants(t *testing.T) {
	src := "x = 5\n"
	res := run(t, "v.go", "var x = 5\n", convert.Options{Source: lang.Go, Target: lang.JavaScript, Style: lang.StyleLegacy, Level: convert.LevelMinimal})
	expectText(t, res.Text, "var x = 5;\n")
	res = run(t, "v.py", src, convert.Options{Source: lang.Python, Target: lang.Go, Level: convert.LevelMinimal})
	expectText(t, res.Text, "package main\n\nx = 5\n")
}
