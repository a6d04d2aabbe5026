package nesting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(opts ...Option) (*Classifier, *ModTracker) {
	var stamps ModTracker
	return NewClassifier(&stamps, opts...), &stamps
}

func TestIsContainer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *tnode
		want bool
	}{
		{"round pair", group(tok("("), tok("x"), tok(")")), true},
		{"curly pair", group(tok("{"), tok("}")), true},
		{"angle pair", group(tok("<"), tok("T"), tok(">")), true},
		{"mixed kinds are not cross-checked", group(tok("("), tok("x"), tok("]")), true},
		{"opener not first", group(tok("f"), tok("("), tok("a"), tok(")")), true},
		{"closer not last", group(tok("["), tok("0"), tok("]"), tok(";")), true},
		{"only opener", group(tok("("), tok("x")), false},
		{"only closer", group(tok("x"), tok(")")), false},
		{"multi-character tokens", group(tok("(("), tok("x"), tok("))")), false},
		{"comparison operators", group(tok("<="), tok("x"), tok(">=")), false},
		{"no delimiters", group(tok("a"), tok("b")), false},
		{"leaf", tok("("), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClassifier()
			n := build(tt.node)
			assert.Equal(t, tt.want, c.IsContainer(n))
		})
	}
}

func TestIsContainer_ScanLimit(t *testing.T) {
	t.Parallel()

	noise := func(n int) []*tnode {
		out := make([]*tnode, n)
		for i := range out {
			out[i] = tok("x")
		}
		return out
	}

	// Opener hidden behind 5 noise children.
	children := append(noise(5), tok("("), tok(")"))
	n := build(group(children...))

	c, _ := newTestClassifier(WithScanLimit(5))
	assert.False(t, c.IsContainer(n), "opener beyond the scan bound is a false negative")

	c, _ = newTestClassifier(WithScanLimit(6))
	assert.True(t, c.IsContainer(n))

	// Closer hidden behind 5 trailing noise children.
	children = append([]*tnode{tok("("), tok(")")}, noise(5)...)
	n = build(group(children...))

	c, _ = newTestClassifier(WithScanLimit(5))
	assert.False(t, c.IsContainer(n))

	c, _ = newTestClassifier()
	assert.True(t, c.IsContainer(n))
}

func TestIsContainer_StableUnderFixedStamp(t *testing.T) {
	t.Parallel()

	c, stamps := newTestClassifier()
	n := build(group(tok("("), tok("x"), tok(")")))

	require.True(t, c.IsContainer(n))

	// Mutate the tree without bumping the stamp: the memoized answer for
	// (node, stamp) must not change.
	n.children = []*tnode{tok("x")}
	build(n)
	for range 3 {
		assert.True(t, c.IsContainer(n))
	}

	// A new stamp invalidates the cached result.
	stamps.Bump()
	assert.False(t, c.IsContainer(n))
	assert.False(t, c.IsContainer(n))
}

func TestDepthOf(t *testing.T) {
	t.Parallel()

	for k := 0; k <= 6; k++ {
		t.Run(fmt.Sprintf("%d containers", k), func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClassifier()

			bracket := tok("(")
			var inner *tnode
			if k == 0 {
				inner = group(tok("f"), bracket)
			} else {
				inner = nest(bracket, k)
			}
			build(group(tok("x"), inner))

			assert.Equal(t, max(k-1, 0), c.DepthOf(bracket))
		})
	}
}

func TestDepthOf_RootIsExcluded(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()

	// The root itself looks like a container but never counts.
	bracket := tok("(")
	build(group(tok("("), group(tok("{"), bracket, tok("}")), tok(")")))

	assert.Equal(t, 0, c.DepthOf(bracket))
}

func TestDepthOf_MaxDepth(t *testing.T) {
	t.Parallel()

	bracket := tok("[")
	build(group(tok("x"), nest(bracket, 30)))

	c, _ := newTestClassifier()
	assert.Equal(t, DefaultMaxDepth-1, c.DepthOf(bracket))

	c, _ = newTestClassifier(WithMaxDepth(5))
	assert.Equal(t, 4, c.DepthOf(bracket))
}

func TestDepthOf_CeilingCountsContainersNotAncestors(t *testing.T) {
	t.Parallel()

	// Each level adds a plain wrapper node between containers, as syntax
	// trees do, so there are twice as many ancestors as containers.
	wrapped := func(inner *tnode, k int) *tnode {
		cur := inner
		for range k {
			cur = group(tok("("), group(tok("x"), cur), tok(")"))
		}
		return cur
	}

	bracket := tok("(")
	build(group(tok("x"), wrapped(group(tok("y"), bracket), 15)))
	c, _ := newTestClassifier()
	assert.Equal(t, 14, c.DepthOf(bracket))

	deep := tok("(")
	build(group(tok("x"), wrapped(group(tok("y"), deep), 30)))
	c, _ = newTestClassifier()
	assert.Equal(t, DefaultMaxDepth-1, c.DepthOf(deep))
}

func TestClassify(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()

	bracket := tok("(")
	build(group(tok("x"), nest(bracket, 3)))

	got, ok := c.Classify(bracket)
	require.True(t, ok)
	assert.Equal(t, Round, got.Kind)
	assert.True(t, got.Opening)
	assert.Equal(t, 2, got.Depth)
	assert.Equal(t, Orange, got.Color)
	assert.Same(t, c.Styles().StyleFor(Orange), got.Style)
	assert.Equal(t, bracket.Span(), got.Span)
}

func TestClassify_NotApplicable(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()

	ident := tok("x")
	arrow := tok("->")
	inner := group(tok("("), tok(")"))
	build(group(ident, arrow, inner))

	_, ok := c.Classify(ident)
	assert.False(t, ok, "not a delimiter")
	_, ok = c.Classify(arrow)
	assert.False(t, ok, "wrong length")
	_, ok = c.Classify(nil)
	assert.False(t, ok, "absent node")

	// A node whose text is a single bracket but which has children.
	wrapped := group(tok("}"))
	build(group(tok("{"), wrapped))
	_, ok = c.Classify(wrapped)
	assert.False(t, ok, "has children")
}

func TestClassify_ClosingBracketSharesDepth(t *testing.T) {
	t.Parallel()
	c, _ := newTestClassifier()

	open, closing := tok("{"), tok("}")
	build(group(tok("x"), group(tok("("), group(open, tok("y"), closing), tok(")"))))

	o, ok := c.Classify(open)
	require.True(t, ok)
	cl, ok := c.Classify(closing)
	require.True(t, ok)

	assert.Equal(t, Curly, o.Kind)
	assert.False(t, cl.Opening)
	assert.Equal(t, o.Depth, cl.Depth)
	assert.Equal(t, 1, o.Depth)
	assert.Equal(t, Blue, cl.Color)
}

func TestClassify_CustomPalettes(t *testing.T) {
	t.Parallel()

	ps := DefaultPalettes()
	require.NoError(t, ps.Set(Square, Palette{Red, Green}))
	c, _ := newTestClassifier(WithPalettes(ps))

	bracket := tok("[")
	build(group(tok("x"), nest(bracket, 2)))

	got, ok := c.Classify(bracket)
	require.True(t, ok)
	assert.Equal(t, 1, got.Depth)
	assert.Equal(t, Green, got.Color)
}
