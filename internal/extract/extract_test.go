package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/regexle/regexle/internal/catalog"
)

func compilePatterns(t *testing.T, patterns []catalog.Pattern) []catalog.Compiled {
	t.Helper()
	out := make([]catalog.Compiled, 0, len(patterns))
	for _, p := range patterns {
		cp, err := p.Compile()
		if err != nil {
			t.Fatalf("Compile(%q) error = %v", p.Name, err)
		}
		out = append(out, cp)
	}
	return out
}

func rustFixture(t *testing.T) []byte {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", "app.rs"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return content
}

func TestExtractFileRustFixture(t *testing.T) {
	content := rustFixture(t)
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-fn", Kind: catalog.KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "rust-struct", Kind: catalog.KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
		{Name: "rust-enum", Kind: catalog.KindEnum, Language: "rust", Expr: `enum\s+(\w+)`},
	})

	matches := New().ExtractFile("app.rs", content, patterns)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"rust-fn", []string{"calculate_total", "process_user_data", "fetch_data", "get_name", "set_email"}},
		{"rust-struct", []string{"User", "Config"}},
		{"rust-enum", []string{"Status", "Color"}},
	}
	for _, tt := range tests {
		got := Names(matches, tt.pattern)
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %d names %v, want %d %v", tt.pattern, len(got), got, len(tt.want), tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s[%d] = %q, want %q", tt.pattern, i, got[i], tt.want[i])
			}
		}
	}

	counts := CountByKind(matches)
	if counts[catalog.KindFunction] != 5 {
		t.Errorf("function count = %d, want 5", counts[catalog.KindFunction])
	}
	if counts[catalog.KindStruct] != 2 {
		t.Errorf("struct count = %d, want 2", counts[catalog.KindStruct])
	}
	if counts[catalog.KindEnum] != 2 {
		t.Errorf("enum count = %d, want 2", counts[catalog.KindEnum])
	}
}

func TestExtractFileHeaderDoesNotSelfMatch(t *testing.T) {
	// The fixture header mentions the patterns themselves; the escaped
	// whitespace class must not count as a declaration.
	content := []byte("// Test patterns: /fn\\s+(\\w+)/g\nfn real_one() {}\n")
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-fn", Kind: catalog.KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
	})

	matches := New().ExtractFile("x.rs", content, patterns)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Name != "real_one" {
		t.Errorf("Name = %q, want %q", matches[0].Name, "real_one")
	}
}

func TestExtractFilePositions(t *testing.T) {
	content := []byte("struct A;\n\n  struct B;\n")
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-struct", Kind: catalog.KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
	})

	matches := New().ExtractFile("x.rs", content, patterns)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Line != 1 || matches[0].Col != 1 {
		t.Errorf("first match at %d:%d, want 1:1", matches[0].Line, matches[0].Col)
	}
	if matches[1].Line != 3 || matches[1].Col != 3 {
		t.Errorf("second match at %d:%d, want 3:3", matches[1].Line, matches[1].Col)
	}
}

func TestExtractFileCRLF(t *testing.T) {
	content := []byte("fn alpha() {}\r\nstruct Beta;\r\n\r\nfn gamma() {}\r\n")
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-fn", Kind: catalog.KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "rust-struct", Kind: catalog.KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
	})

	matches := New().ExtractFile("x.rs", content, patterns)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(matches), matches)
	}

	tests := []struct {
		name      string
		line, col int
	}{
		{"alpha", 1, 1},
		{"Beta", 2, 1},
		{"gamma", 4, 1},
	}
	for i, tt := range tests {
		m := matches[i]
		if m.Name != tt.name {
			t.Errorf("match[%d].Name = %q, want %q", i, m.Name, tt.name)
		}
		if m.Line != tt.line || m.Col != tt.col {
			t.Errorf("%s at %d:%d, want %d:%d", tt.name, m.Line, m.Col, tt.line, tt.col)
		}
	}
}

func TestExtractFileSortedAcrossPatterns(t *testing.T) {
	content := []byte("enum Z { A }\nfn alpha() {}\nstruct M;\n")
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-struct", Kind: catalog.KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
		{Name: "rust-fn", Kind: catalog.KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
		{Name: "rust-enum", Kind: catalog.KindEnum, Language: "rust", Expr: `enum\s+(\w+)`},
	})

	matches := New().ExtractFile("x.rs", content, patterns)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	order := []string{"Z", "alpha", "M"}
	for i, want := range order {
		if matches[i].Name != want {
			t.Errorf("match[%d].Name = %q, want %q", i, matches[i].Name, want)
		}
	}
}

func TestExtractFileEmpty(t *testing.T) {
	patterns := compilePatterns(t, []catalog.Pattern{
		{Name: "rust-fn", Kind: catalog.KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
	})
	if got := New().ExtractFile("x.rs", nil, patterns); got != nil {
		t.Errorf("ExtractFile(empty) = %v, want nil", got)
	}
	if got := New().ExtractFile("x.rs", []byte("fn a() {}"), nil); got != nil {
		t.Errorf("ExtractFile(no patterns) = %v, want nil", got)
	}
}

func TestLineIndexPosition(t *testing.T) {
	ix := buildLineIndex([]byte("ab\ncd\nef"))
	tests := []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		line, col := ix.position(tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}
