package convert

import (
	"reflect"
	"testing"

	"codeshift/internal/lang"
)

func translatorFor(src, dst lang.Tag) translator {
	return translator{src: lang.Lookup(src), dst: lang.Lookup(dst)}
}

func TestExprTranslation(t *testing.T) {
	tests := []struct {
		src, dst lang.Tag
		in, want string
	}{
		{lang.COBOL, lang.Python, `WS-A GREATER THAN OR EQUAL TO 10 AND NOT WS-B = 'X'`, `ws_a >= 10 and not ws_b == "X"`},
		{lang.COBOL, lang.JavaScript, `WS-A GREATER THAN OR EQUAL TO 10 AND NOT WS-B = 'X'`, `wsA >= 10 && !wsB === "X"`},
		{lang.COBOL, lang.Java, `WS-A NOT EQUAL TO SPACES`, `wsA != ""`},
		{lang.COBOL, lang.Python, `"SAY ""HI"""`, `"SAY \"HI\""`},
		{lang.COBOL, lang.Python, `'C:\DIR ''X'''`, `"C:\\DIR 'X'"`},
		{lang.Python, lang.Java, `x == 1 and not y`, `x == 1 && !y`},
		{lang.Python, lang.Go, `'a"b'`, `"a\"b"`},
		{lang.Python, lang.Go, `'a\"b'`, `"a\"b"`},
		{lang.Python, lang.JavaScript, `'it\'s' + 'c:\\"'`, `"it's" + "c:\\\""`},
		{lang.JavaScript, lang.Python, `a === null || b`, `a == None or b`},
		{lang.Go, lang.Java, `err != nil`, `err != null`},
		{lang.Java, lang.Python, `items.size() - 1`, `items.size() - 1`},
	}
	for _, tt := range tests {
		if got := translatorFor(tt.src, tt.dst).expr(tt.in); got != tt.want {
			t.Fatalf("%s -> %s %q: expected %q, got %q", tt.src, tt.dst, tt.in, tt.want, got)
		}
	}
}

func TestOperands(t *testing.T) {
	tr := translatorFor(lang.COBOL, lang.Java)
	if got := tr.operands(`"TOTAL: " WS-TOTAL`); got != `"TOTAL: " + wsTotal` {
		t.Fatalf("unexpected operands %q", got)
	}
	tr = translatorFor(lang.COBOL, lang.Python)
	if got := tr.operands(`"A", WS-B`); got != `"A", ws_b` {
		t.Fatalf("unexpected operands %q", got)
	}
}

func TestTypeMapping(t *testing.T) {
	tr := translatorFor(lang.COBOL, lang.Java)
	if got, canon := tr.typ("S9(5)V99"); got != "double" || canon != "decimal" {
		t.Fatalf("unexpected decimal mapping %q %q", got, canon)
	}
	if got, _ := tr.typ("X(10)"); got != "String" {
		t.Fatalf("unexpected alphanumeric mapping %q", got)
	}
	tr = translatorFor(lang.Java, lang.Python)
	if got, _ := tr.typ("Widget"); got != "" {
		t.Fatalf("unknown types must not map, got %q", got)
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		src, dst lang.Tag
		in, want string
	}{
		{lang.Go, lang.Java, "a, b int, s string", "int a, int b, String s"},
		{lang.Python, lang.Go, "self, n: int, label='x'", "n int, label any"},
		{lang.Java, lang.JavaScript, "final int a, List<String> b", "a, b"},
		{lang.JavaScript, lang.Java, "a, b = 2", "Object a, Object b"},
		{lang.Python, lang.Python, "self, x", "self, x"},
	}
	for _, tt := range tests {
		if got := translatorFor(tt.src, tt.dst).params(tt.in); got != tt.want {
			t.Fatalf("%s -> %s %q: expected %q, got %q", tt.src, tt.dst, tt.in, tt.want, got)
		}
	}
}

func TestList(t *testing.T) {
	if got := translatorFor(lang.Go, lang.Python).list(`"fmt" "os"`); !reflect.DeepEqual(got, []string{"fmt", "os"}) {
		t.Fatalf("unexpected quoted list %v", got)
	}
	if got := translatorFor(lang.Python, lang.Java).list("os, sys"); !reflect.DeepEqual(got, []string{"os", "sys"}) {
		t.Fatalf("unexpected bare list %v", got)
	}
}

func TestTemplateParse(t *testing.T) {
	tpl, err := parseTemplate("if ${cond} {\n\t${body}\n\t${a|b:none} ...\n}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !tpl.hasBody() {
		t.Fatalf("expected a body line")
	}
	if got := tpl.refs(); !reflect.DeepEqual(got, []string{"cond", "a", "b", "args"}) {
		t.Fatalf("unexpected refs %v", got)
	}
	lines, missing := tpl.render(map[string]string{"b": "B"})
	if !reflect.DeepEqual(missing, []string{"cond"}) {
		t.Fatalf("unexpected missing %v", missing)
	}
	if lines[1].indent != 1 || !lines[1].body || lines[2].text != "B " || lines[2].indent != 1 {
		t.Fatalf("unexpected lines %+v", lines)
	}

	for _, bad := range []string{"${x", "${}", "${:d}"} {
		if _, err := parseTemplate(bad); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestSplitTop(t *testing.T) {
	got := splitTop(`a, f(b, c), "d,e", m[1,2]`, ',')
	want := []string{"a", " f(b, c)", ` "d,e"`, " m[1,2]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
