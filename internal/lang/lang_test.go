package lang

import (
	"testing"

	"codeshift/internal/model"
)

func TestRegistryOrder(t *testing.T) {
	all := All()
	want := []Tag{COBOL, Java, Python, Go, JavaScript}
	if len(all) != len(want) {
		t.Fatalf("expected %d languages, got %d", len(want), len(all))
	}
	for i, s := range all {
		if s.Tag != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], s.Tag)
		}
	}
}

func TestParseAliases(t *testing.T) {
	tests := map[string]Tag{
		"cobol": COBOL, "CBL": COBOL, "java": Java, "py": Python, "Python": Python,
		"golang": Go, "go": Go, "js": JavaScript, " javascript ": JavaScript,
	}
	for in, want := range tests {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Errorf("Parse(%q) = %s, %v; want %s", in, got, ok, want)
		}
	}
	if _, ok := Parse("fortran"); ok {
		t.Fatalf("expected fortran to be unknown")
	}
}

func TestByExtension(t *testing.T) {
	tests := map[string]Tag{
		"a/PAYROLL.CBL": COBOL, "x.cob": COBOL, "Main.java": Java, "tool.py": Python,
		"main.go": Go, "app.mjs": JavaScript,
	}
	for path, want := range tests {
		got := ByExtension(path)
		if len(got) != 1 || got[0] != want {
			t.Errorf("ByExtension(%q) = %v; want [%s]", path, got, want)
		}
	}
	if got := ByExtension("README"); got != nil {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestSupportsPair(t *testing.T) {
	tests := []struct {
		src, dst Tag
		want     bool
	}{
		{COBOL, Java, true},
		{COBOL, Python, true},
		{Python, Java, true},
		{Java, COBOL, false},
		{COBOL, COBOL, true},
		{Unknown, Java, false},
		{Java, Unknown, false},
	}
	for _, tt := range tests {
		if got := SupportsPair(tt.src, tt.dst); got != tt.want {
			t.Errorf("SupportsPair(%s, %s) = %v; want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestConstructKeysUnique(t *testing.T) {
	for _, s := range All() {
		seen := map[string]bool{}
		for _, c := range s.Constructs {
			if seen[c.Key] {
				t.Errorf("%s: duplicate construct key %q", s.Name, c.Key)
			}
			seen[c.Key] = true
			if c.Kind == model.KindInvalid {
				t.Errorf("%s: construct %q has no kind", s.Name, c.Key)
			}
		}
	}
}

func TestTargetTemplatesCoverConcepts(t *testing.T) {
	// every concept produced by a source construct has a template in at
	// least one target, so no construct is unreachable
	concepts := map[string]bool{}
	for _, s := range All() {
		for _, c := range s.Constructs {
			concepts[c.Concept] = true
		}
	}
	for concept := range concepts {
		found := false
		for _, s := range All() {
			if s.Target == nil {
				continue
			}
			if _, ok := s.Target.Templates[concept]; ok {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("concept %q has no target template", concept)
		}
	}
}

func TestApplyNaming(t *testing.T) {
	tests := []struct {
		n    Naming
		in   string
		want string
	}{
		{NamingCamel, "CUSTOMER-ID", "customerId"},
		{NamingSnake, "CUSTOMER-ID", "customer_id"},
		{NamingPascal, "CUSTOMER-RECORD", "CustomerRecord"},
		{NamingSnake, "mainLogic", "main_logic"},
		{NamingCamel, "main_logic", "mainLogic"},
		{NamingCamel, "100-INIT", "_100Init"},
		{NamingKeep, "WS-X", "WS-X"},
	}
	for _, tt := range tests {
		if got := ApplyNaming(tt.n, tt.in); got != tt.want {
			t.Errorf("ApplyNaming(%d, %q) = %q; want %q", tt.n, tt.in, got, tt.want)
		}
	}
}

func TestPictureType(t *testing.T) {
	tests := map[string]string{
		"9(3)": "int", "S9(5)": "int", "999": "int", "9(5)V99": "decimal",
		"X(30)": "string", "A(2)": "string", "X.": "string",
	}
	for pic, want := range tests {
		if got := PictureType(pic); got != want {
			t.Errorf("PictureType(%q) = %q; want %q", pic, got, want)
		}
	}
}

func TestTargetPath(t *testing.T) {
	if got := Lookup(Java).TargetPath("src/payroll-report.cbl"); got != "src/PayrollReport.java" {
		t.Fatalf("unexpected java path %q", got)
	}
	if got := Lookup(Python).TargetPath("src/PAYROLL.cbl"); got != "src/payroll.py" {
		t.Fatalf("unexpected python path %q", got)
	}
	if got := Lookup(COBOL).TargetPath("a/b.cob"); got != "a/b.cbl" {
		t.Fatalf("unexpected cobol path %q", got)
	}
}

func TestVariantsPick(t *testing.T) {
	v := Variants{Standard: "s", Legacy: "l"}
	if v.Pick(StyleModern) != "s" || v.Pick(StyleLegacy) != "l" || v.Pick(StyleStandard) != "s" {
		t.Fatalf("unexpected variant selection")
	}
	if _, ok := ParseStyle("baroque"); ok {
		t.Fatalf("expected unknown style")
	}
}

func TestClassifyHeader(t *testing.T) {
	java := Lookup(Java)
	if k, ok := java.ClassifyHeader("} else if (x) "); !ok || k != model.ControlFlow {
		t.Fatalf("expected control flow, got %s %v", k, ok)
	}
	if !java.IsDeclaration("int count = 0") {
		t.Fatalf("expected typed local to be a declaration")
	}
	if java.IsDeclaration("return count") {
		t.Fatalf("return must stay a statement")
	}
}
