package nesting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopeTree builds "f{a{b}c}" where both braces pairs are blocks:
//
//	offset: 0 1 2 3 4 5 6 7
//	text:   f { a { b } c }
func scopeTree() (root *tnode, outer, inner *tnode) {
	inner = group(tok("{"), tok("b"), tok("}"))
	outer = group(tok("{"), tok("a"), inner, tok("c"), tok("}"))
	root = build(group(tok("f"), outer))
	return root, outer, inner
}

func TestFindEnclosingBlock(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()
	root, outer, inner := scopeTree()

	block, ok := c.FindEnclosingBlock(leafAt(root, 4))
	require.True(t, ok)
	assert.Equal(t, Node(inner), block)

	block, ok = c.FindEnclosingBlock(leafAt(root, 2))
	require.True(t, ok)
	assert.Equal(t, Node(outer), block)

	// The brace leaves belong to the block they delimit.
	block, ok = c.FindEnclosingBlock(leafAt(root, 5))
	require.True(t, ok)
	assert.Equal(t, Node(inner), block)

	_, ok = c.FindEnclosingBlock(leafAt(root, 0))
	assert.False(t, ok, "caret with no block ancestors")

	_, ok = c.FindEnclosingBlock(nil)
	assert.False(t, ok)
}

func TestFindScope_Colors(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()
	root, _, _ := scopeTree()

	s, ok := c.FindScope(leafAt(root, 2))
	require.True(t, ok)
	assert.Equal(t, Span{Start: 1, End: 8}, s.Span)
	assert.Equal(t, 0, s.Depth)
	assert.Equal(t, Yellow, s.Color)

	s, ok = c.FindScope(leafAt(root, 4))
	require.True(t, ok)
	assert.Equal(t, Span{Start: 3, End: 6}, s.Span)
	assert.Equal(t, 1, s.Depth)
	assert.Equal(t, Blue, s.Color)
}

func TestIsBlock_CurlyOnly(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()

	tests := []struct {
		name string
		node *tnode
		want bool
	}{
		{"curly", group(tok("{"), tok("}")), true},
		{"round is a container but not a block", group(tok("("), tok(")")), false},
		{"mixed open", group(tok("("), tok("}")), false},
		{"template braces", group(tok("{{"), tok("x"), tok("}}")), false},
	}
	for _, tt := range tests {
		n := build(tt.node)
		assert.Equal(t, tt.want, c.IsBlock(n), tt.name)
	}
}

func TestIsBlock_ScanLimit(t *testing.T) {
	t.Parallel()

	children := []*tnode{tok("{")}
	for range 60 {
		children = append(children, tok("x"))
	}
	children = append(children, tok("}"))
	for range 55 {
		children = append(children, tok(";"))
	}
	n := build(group(children...))

	c, _ := newTestClassifier()
	assert.False(t, c.IsBlock(n), "closing brace beyond the default block bound")

	c, _ = newTestClassifier(WithBlockScanLimit(60))
	assert.True(t, c.IsBlock(n))
}

func TestBlocks(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()
	root, outer, inner := scopeTree()

	blocks := c.Blocks(root)
	require.Len(t, blocks, 2)
	assert.Equal(t, Node(outer), blocks[0].Block)
	assert.Equal(t, 0, blocks[0].Depth)
	assert.Equal(t, Node(inner), blocks[1].Block)
	assert.Equal(t, 1, blocks[1].Depth)
}

func TestLeaves(t *testing.T) {
	t.Parallel()
	root, _, _ := scopeTree()

	var texts string
	Leaves(root, func(n Node) { texts += n.Text() })
	assert.Equal(t, "f{a{b}c}", texts)
}
