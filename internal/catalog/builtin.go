package catalog

// Declaration kinds shared across languages.
const (
	KindFunction  = "function"
	KindMethod    = "method"
	KindStruct    = "struct"
	KindEnum      = "enum"
	KindTrait     = "trait"
	KindClass     = "class"
	KindInterface = "interface"
	KindType      = "type"
	KindConst     = "const"
	KindStatic    = "static"
	KindVar       = "var"
	KindPackage   = "package"
	KindModule    = "module"
)

// builtinPatterns is the shipped catalog. The rust fn/struct/enum
// expressions are the documented fixture patterns and must stay
// byte-identical to the fixture headers.
var builtinPatterns = []Pattern{
	// Rust
	{Name: "rust-fn", Kind: KindFunction, Language: "rust", Expr: `fn\s+(\w+)`},
	{Name: "rust-struct", Kind: KindStruct, Language: "rust", Expr: `struct\s+(\w+)`},
	{Name: "rust-enum", Kind: KindEnum, Language: "rust", Expr: `enum\s+(\w+)`},
	{Name: "rust-trait", Kind: KindTrait, Language: "rust", Expr: `trait\s+(\w+)`},
	{Name: "rust-const", Kind: KindConst, Language: "rust", Expr: `const\s+(\w+)\s*:`},
	{Name: "rust-static", Kind: KindStatic, Language: "rust", Expr: `static\s+(\w+)\s*:`},
	{Name: "rust-mod", Kind: KindModule, Language: "rust", Expr: `\bmod\s+(\w+)`},

	// Go
	{Name: "go-func", Kind: KindFunction, Language: "go", Expr: `func\s+(\w+)`},
	{Name: "go-method", Kind: KindMethod, Language: "go", Expr: `func\s+\([^)]*\)\s+(\w+)`},
	{Name: "go-type", Kind: KindType, Language: "go", Expr: `type\s+(\w+)`},
	{Name: "go-package", Kind: KindPackage, Language: "go", Expr: `package\s+(\w+)`},
	{Name: "go-const", Kind: KindConst, Language: "go", Expr: `\bconst\s+(\w+)`},
	{Name: "go-var", Kind: KindVar, Language: "go", Expr: `\bvar\s+(\w+)`},

	// Python
	{Name: "py-def", Kind: KindFunction, Language: "python", Expr: `def\s+(\w+)`},
	{Name: "py-class", Kind: KindClass, Language: "python", Expr: `class\s+(\w+)`},

	// JavaScript
	{Name: "js-function", Kind: KindFunction, Language: "javascript", Expr: `function\s+(\w+)`},
	{Name: "js-class", Kind: KindClass, Language: "javascript", Expr: `class\s+(\w+)`},
	{Name: "js-const", Kind: KindConst, Language: "javascript", Expr: `\bconst\s+(\w+)\s*=`},

	// TypeScript
	{Name: "ts-function", Kind: KindFunction, Language: "typescript", Expr: `function\s+(\w+)`},
	{Name: "ts-class", Kind: KindClass, Language: "typescript", Expr: `class\s+(\w+)`},
	{Name: "ts-interface", Kind: KindInterface, Language: "typescript", Expr: `interface\s+(\w+)`},
	{Name: "ts-type", Kind: KindType, Language: "typescript", Expr: `\btype\s+(\w+)\s*=`},
	{Name: "ts-enum", Kind: KindEnum, Language: "typescript", Expr: `\benum\s+(\w+)`},
}

// Builtin returns the shipped catalog. The builtin set always
// compiles; New cannot fail on it, so the error is ignored.
func Builtin() *Catalog {
	c, _ := New(builtinPatterns)
	return c
}
