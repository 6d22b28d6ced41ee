// Package ast provides a tree-sitter backed declaration extractor used
// to cross-check the regex catalog against a real grammar. It emits
// the same Match shape as the regex engine so the two backends can be
// diffed directly.
package ast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/regexle/regexle/internal/catalog"
	"github.com/regexle/regexle/internal/extract"
)

// BackendName marks matches produced by the AST backend.
const BackendName = "ast"

// Parser wraps a tree-sitter parser for one language.
type Parser struct {
	language string
	parser   *sitter.Parser
	walk     func(p *Parser, node *sitter.Node, path string, content []byte, out *[]extract.Match)
}

// ForLanguage returns an AST parser for the language, or false when no
// grammar is wired.
func ForLanguage(lang string) (*Parser, bool) {
	switch lang {
	case "rust":
		return newParser(lang, rust.GetLanguage(), walkRust), true
	case "go":
		return newParser(lang, golang.GetLanguage(), walkGo), true
	case "python":
		return newParser(lang, python.GetLanguage(), walkPython), true
	default:
		return nil, false
	}
}

func newParser(lang string, tsLang *sitter.Language, walk func(*Parser, *sitter.Node, string, []byte, *[]extract.Match)) *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)
	return &Parser{language: lang, parser: parser, walk: walk}
}

// Language returns the language identifier.
func (p *Parser) Language() string {
	return p.language
}

// Declarations extracts declaration matches from source content.
func (p *Parser) Declarations(ctx context.Context, path string, content []byte) ([]extract.Match, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("ast parse of %s failed: %w", path, err)
	}
	defer tree.Close()

	var matches []extract.Match
	p.walk(p, tree.RootNode(), path, content, &matches)
	return matches, nil
}

func (p *Parser) match(node, nameNode *sitter.Node, path string, content []byte, kind string) extract.Match {
	return extract.Match{
		Pattern:  BackendName,
		Kind:     kind,
		Language: p.language,
		Name:     string(content[nameNode.StartByte():nameNode.EndByte()]),
		File:     path,
		Line:     int(node.StartPoint().Row) + 1,
		Col:      int(node.StartPoint().Column) + 1,
		Text:     firstLine(content[node.StartByte():node.EndByte()]),
	}
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			return string(b[:i])
		}
	}
	return string(b)
}

// walkRust extracts Rust declarations. impl blocks contribute their
// functions as methods; modules are recursed into.
func walkRust(p *Parser, node *sitter.Node, path string, content []byte, out *[]extract.Match) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindFunction))
			}
		case "struct_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindStruct))
			}
		case "enum_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindEnum))
			}
		case "trait_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindTrait))
			}
		case "const_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindConst))
			}
		case "static_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindStatic))
			}
		case "impl_item":
			if body := child.ChildByFieldName("body"); body != nil {
				for j := 0; j < int(body.NamedChildCount()); j++ {
					item := body.NamedChild(j)
					if item.Type() != "function_item" {
						continue
					}
					if name := item.ChildByFieldName("name"); name != nil {
						*out = append(*out, p.match(item, name, path, content, catalog.KindFunction))
					}
				}
			}
		case "mod_item":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindModule))
			}
			if body := child.ChildByFieldName("body"); body != nil {
				walkRust(p, body, path, content, out)
			}
		default:
			walkRust(p, child, path, content, out)
		}
	}
}

// walkGo extracts Go declarations.
func walkGo(p *Parser, node *sitter.Node, path string, content []byte, out *[]extract.Match) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindFunction))
			}
		case "method_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindMethod))
			}
		case "type_declaration":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "type_spec" {
					continue
				}
				if name := spec.ChildByFieldName("name"); name != nil {
					*out = append(*out, p.match(spec, name, path, content, catalog.KindType))
				}
			}
		case "const_declaration":
			collectGoSpecs(p, child, "const_spec", path, content, catalog.KindConst, out)
		case "var_declaration":
			collectGoSpecs(p, child, "var_spec", path, content, catalog.KindVar, out)
		case "package_clause":
			if child.NamedChildCount() > 0 {
				name := child.NamedChild(0)
				*out = append(*out, p.match(child, name, path, content, catalog.KindPackage))
			}
		default:
			walkGo(p, child, path, content, out)
		}
	}
}

// collectGoSpecs pulls names out of grouped const/var declarations.
func collectGoSpecs(p *Parser, node *sitter.Node, specType, path string, content []byte, kind string, out *[]extract.Match) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == specType {
				if name := child.ChildByFieldName("name"); name != nil {
					*out = append(*out, p.match(child, name, path, content, kind))
				}
				continue
			}
			visit(child)
		}
	}
	visit(node)
}

// walkPython extracts Python declarations, looking through decorators.
func walkPython(p *Parser, node *sitter.Node, path string, content []byte, out *[]extract.Match) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindFunction))
			}
			if body := child.ChildByFieldName("body"); body != nil {
				walkPython(p, body, path, content, out)
			}
		case "class_definition":
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, p.match(child, name, path, content, catalog.KindClass))
			}
			if body := child.ChildByFieldName("body"); body != nil {
				walkPython(p, body, path, content, out)
			}
		case "decorated_definition":
			walkPython(p, child, path, content, out)
		default:
			walkPython(p, child, path, content, out)
		}
	}
}
