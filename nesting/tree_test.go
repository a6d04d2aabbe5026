package nesting

import "strings"

// tnode is an in-memory tree for tests. Build composite nodes with group and
// leaves with tok, then call build on the root to wire parents and spans.
type tnode struct {
	parent   *tnode
	children []*tnode
	index    int
	text     string
	start    int
}

func tok(text string) *tnode {
	return &tnode{text: text}
}

func group(children ...*tnode) *tnode {
	return &tnode{children: children}
}

// build wires parent links, sibling indexes, text and spans under root.
func build(root *tnode) *tnode {
	layout(root, nil, 0, 0)
	return root
}

func layout(n, parent *tnode, index, offset int) int {
	n.parent = parent
	n.index = index
	n.start = offset
	if len(n.children) == 0 {
		return offset + len(n.text)
	}
	var sb strings.Builder
	for i, c := range n.children {
		offset = layout(c, n, i, offset)
		sb.WriteString(c.text)
	}
	n.text = sb.String()
	return offset
}

func (n *tnode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *tnode) FirstChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *tnode) LastChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

func (n *tnode) NextSibling() Node {
	if n.parent == nil || n.index+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[n.index+1]
}

func (n *tnode) PrevSibling() Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.children[n.index-1]
}

func (n *tnode) Text() string { return n.text }
func (n *tnode) TextLen() int { return len(n.text) }
func (n *tnode) Span() Span   { return Span{Start: n.start, End: n.start + len(n.text)} }

// leafAt returns the leaf under root covering offset.
func leafAt(root Node, offset int) Node {
	var found Node
	Leaves(root, func(n Node) {
		if found == nil && n.Span().Contains(offset) {
			found = n
		}
	})
	return found
}

// nest wraps inner in k round containers and returns the outermost node.
func nest(inner *tnode, k int) *tnode {
	cur := inner
	for range k {
		cur = group(tok("("), cur, tok(")"))
	}
	return cur
}
