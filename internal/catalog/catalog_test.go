package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	p := Pattern{Name: "rust-fn", Kind: KindFunction, Language: "rust", Expr: `fn\s+(\w+)`}
	cp, err := p.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if cp.RE == nil {
		t.Fatal("Compile() returned nil regexp")
	}
	m := cp.RE.FindStringSubmatch("fn main()")
	if len(m) != 2 || m[1] != "main" {
		t.Errorf("submatch = %v, want capture %q", m, "main")
	}
}

func TestCompileRejectsInvalidExpression(t *testing.T) {
	p := Pattern{Name: "bad", Language: "rust", Expr: `fn\s+([unclosed`}
	if _, err := p.Compile(); err == nil {
		t.Error("Compile() accepted an invalid expression")
	}
}

func TestCompileRequiresCaptureGroup(t *testing.T) {
	p := Pattern{Name: "no-group", Language: "rust", Expr: `fn\s+\w+`}
	_, err := p.Compile()
	if err == nil {
		t.Fatal("Compile() accepted a pattern without a capture group")
	}
	if !strings.Contains(err.Error(), "capture group") {
		t.Errorf("error %q does not mention the capture group", err)
	}
}

func TestCompileRequiresName(t *testing.T) {
	p := Pattern{Language: "rust", Expr: `fn\s+(\w+)`}
	if _, err := p.Compile(); err == nil {
		t.Error("Compile() accepted an unnamed pattern")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Pattern{
		{Name: "rust-fn", Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "rust-fn", Language: "rust", Expr: `fn\s+(\w+)`},
	})
	if err == nil {
		t.Error("New() accepted duplicate language+name")
	}
}

func TestNewAllowsSameNameAcrossLanguages(t *testing.T) {
	c, err := New([]Pattern{
		{Name: "fn", Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "fn", Language: "go", Expr: `func\s+(\w+)`},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := c.Languages(); len(got) != 2 {
		t.Errorf("Languages() = %v, want 2 entries", got)
	}
}

func TestBuiltinCompiles(t *testing.T) {
	c := Builtin()
	langs := c.Languages()
	if len(langs) == 0 {
		t.Fatal("builtin catalog is empty")
	}
	for _, lang := range langs {
		if _, err := c.CompileFor(lang); err != nil {
			t.Errorf("CompileFor(%q) error = %v", lang, err)
		}
	}
}

func TestBuiltinFixtureExpressions(t *testing.T) {
	// The documented rust patterns must stay byte-identical to the
	// fixture headers.
	want := map[string]string{
		"rust-fn":     `fn\s+(\w+)`,
		"rust-struct": `struct\s+(\w+)`,
		"rust-enum":   `enum\s+(\w+)`,
	}
	for _, p := range Builtin().ForLanguage("rust") {
		if expr, ok := want[p.Name]; ok && p.Expr != expr {
			t.Errorf("%s expr = %q, want %q", p.Name, p.Expr, expr)
		}
	}
}

func TestMergeReplacesAndAppends(t *testing.T) {
	base, err := New([]Pattern{
		{Name: "rust-fn", Kind: KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "rust-struct", Kind: KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
	})
	if err != nil {
		t.Fatalf("New(base) error = %v", err)
	}
	overlay, err := New([]Pattern{
		{Name: "rust-fn", Kind: KindFunction, Language: "rust", Expr: `pub\s+fn\s+(\w+)`},
		{Name: "rust-macro", Kind: KindFunction, Language: "rust", Expr: `macro_rules!\s+(\w+)`},
		{Name: "go-func", Kind: KindFunction, Language: "go", Expr: `func\s+(\w+)`},
	})
	if err != nil {
		t.Fatalf("New(overlay) error = %v", err)
	}

	merged := base.Merge(overlay)

	rust := merged.ForLanguage("rust")
	if len(rust) != 3 {
		t.Fatalf("merged rust patterns = %d, want 3", len(rust))
	}
	if rust[0].Name != "rust-fn" || rust[0].Expr != `pub\s+fn\s+(\w+)` {
		t.Errorf("rust-fn not replaced in place: %+v", rust[0])
	}
	if rust[2].Name != "rust-macro" {
		t.Errorf("overlay pattern not appended: %+v", rust[2])
	}
	if len(merged.ForLanguage("go")) != 1 {
		t.Error("new language from overlay missing")
	}

	// The base catalog is not mutated.
	if len(base.ForLanguage("rust")) != 2 || base.ForLanguage("rust")[0].Expr != `fn\s+(\w+)` {
		t.Error("Merge() mutated the receiver")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`patterns:
  - name: rust-macro
    kind: function
    language: rust
    expr: 'macro_rules!\s+(\w+)'
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := c.ForLanguage("rust")
	if len(got) != 1 || got[0].Name != "rust-macro" {
		t.Errorf("ForLanguage(rust) = %+v", got)
	}
}

func TestParseRejectsBadPattern(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid expr", "patterns:\n  - name: x\n    language: rust\n    expr: '(['\n"},
		{"no capture group", "patterns:\n  - name: x\n    language: rust\n    expr: 'fn'\n"},
		{"no language", "patterns:\n  - name: x\n    expr: 'fn\\s+(\\w+)'\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.data)); err == nil {
			t.Errorf("%s: Parse() accepted bad input", tt.name)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	data := "patterns:\n  - name: rs-impl\n    kind: type\n    language: rust\n    expr: 'impl\\s+(\\w+)'\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.ForLanguage("rust")) != 1 {
		t.Errorf("loaded catalog = %+v", c.All())
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file did not error")
	}
}

func TestAllGroupedByLanguage(t *testing.T) {
	all := Builtin().All()
	if len(all) == 0 {
		t.Fatal("All() returned nothing")
	}
	lastLang := ""
	seen := map[string]bool{}
	for _, p := range all {
		if p.Language != lastLang {
			if seen[p.Language] {
				t.Fatalf("language %q appears in more than one group", p.Language)
			}
			seen[p.Language] = true
			lastLang = p.Language
		}
	}
}
