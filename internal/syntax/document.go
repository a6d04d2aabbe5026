package syntax

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/rainbow/nesting"
)

// ErrUnsupportedLanguage is returned when no grammar exists for a language
// or file extension.
var ErrUnsupportedLanguage = errors.New("syntax: unsupported language")

// Document is one parsed snapshot of a source file. Its nodes implement
// nesting.Node and it implements nesting.Tree.
type Document struct {
	tree  *sitter.Tree
	src   []byte
	lang  string
	lines *nesting.TextDocument
}

var _ nesting.Tree = (*Document)(nil)

// Parse parses src with the grammar of lang.
func Parse(ctx context.Context, src []byte, lang string) (*Document, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: tree-sitter parse failed: %w", err)
	}
	return &Document{
		tree:  tree,
		src:   src,
		lang:  lang,
		lines: nesting.NewTextDocument(string(src)),
	}, nil
}

// ParseFile reads and parses a file, picking the grammar from its extension.
func ParseFile(ctx context.Context, path string) (*Document, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("syntax: reading %s: %w", path, err)
	}
	return Parse(ctx, src, lang)
}

// Close releases the tree-sitter tree. Nodes must not be used afterwards.
func (d *Document) Close() {
	d.tree.Close()
}

// Language returns the canonical language name.
func (d *Document) Language() string {
	return d.lang
}

// Source returns the parsed bytes.
func (d *Document) Source() []byte {
	return d.src
}

// Lines returns the line index of the source.
func (d *Document) Lines() *nesting.TextDocument {
	return d.lines
}

// HasError reports whether the parse produced error nodes.
func (d *Document) HasError() bool {
	return d.tree.RootNode().HasError()
}

// Root returns the root node.
func (d *Document) Root() nesting.Node {
	return d.wrap(d.tree.RootNode())
}

// LeafAt returns the leaf covering offset. When offset falls between tokens
// (whitespace or comments the grammar does not expose), it returns the child
// of the innermost enclosing node that follows offset, so that the returned
// node's parent is that enclosing node.
func (d *Document) LeafAt(offset int) nesting.Node {
	cur := d.tree.RootNode()
	if cur == nil {
		return nil
	}
	off := uint32(max(0, min(offset, len(d.src))))
	for {
		count := int(cur.ChildCount())
		if count == 0 {
			return d.wrap(cur)
		}
		var next, after *sitter.Node
		for i := 0; i < count; i++ {
			child := cur.Child(i)
			if child == nil {
				continue
			}
			if child.StartByte() <= off && off < child.EndByte() {
				next = child
				break
			}
			if after == nil && child.StartByte() >= off {
				after = child
			}
		}
		if next != nil {
			cur = next
			continue
		}
		if after == nil {
			after = cur.Child(count - 1)
		}
		return d.wrap(after)
	}
}

func (d *Document) wrap(n *sitter.Node) nesting.Node {
	if n == nil {
		return nil
	}
	return node{n: n, doc: d}
}

// node adapts a tree-sitter node. smacker/go-tree-sitter caches *sitter.Node
// per tree, so equal nodes of one Document compare equal.
type node struct {
	n   *sitter.Node
	doc *Document
}

func (n node) Parent() nesting.Node {
	return n.doc.wrap(n.n.Parent())
}

func (n node) FirstChild() nesting.Node {
	if n.n.ChildCount() == 0 {
		return nil
	}
	return n.doc.wrap(n.n.Child(0))
}

func (n node) LastChild() nesting.Node {
	count := int(n.n.ChildCount())
	if count == 0 {
		return nil
	}
	return n.doc.wrap(n.n.Child(count - 1))
}

func (n node) NextSibling() nesting.Node {
	return n.doc.wrap(n.n.NextSibling())
}

func (n node) PrevSibling() nesting.Node {
	return n.doc.wrap(n.n.PrevSibling())
}

func (n node) Text() string {
	return n.n.Content(n.doc.src)
}

func (n node) TextLen() int {
	return int(n.n.EndByte() - n.n.StartByte())
}

func (n node) Span() nesting.Span {
	return nesting.Span{Start: int(n.n.StartByte()), End: int(n.n.EndByte())}
}

// Type returns the grammar node type, e.g. "block" or "(".
func Type(n nesting.Node) string {
	if sn, ok := n.(node); ok {
		return sn.n.Type()
	}
	return ""
}
