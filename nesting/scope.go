package nesting

// FindEnclosingBlock returns the nearest ancestor of n, starting at n's
// parent and excluding the tree root, that is a curly block.
func (c *Classifier) FindEnclosingBlock(n Node) (Node, bool) {
	if n == nil {
		return nil, false
	}
	for cur := n.Parent(); cur != nil && !isRoot(cur); cur = cur.Parent() {
		if c.IsBlock(cur) {
			return cur, true
		}
	}
	return nil, false
}

// BlockDepth counts the curly blocks strictly above block, excluding the
// tree root. There is no off-by-one correction: an outermost block is 0.
func (c *Classifier) BlockDepth(block Node) int {
	depth := 0
	for cur := block.Parent(); cur != nil && !isRoot(cur); cur = cur.Parent() {
		if c.IsBlock(cur) {
			depth++
		}
	}
	return depth
}

// Scope is an enclosing block and the color of its guide line.
type Scope struct {
	Block Node
	Span  Span
	Depth int
	Color Color
}

// FindScope finds the block enclosing the caret node and picks its guide
// color from the curly palette.
func (c *Classifier) FindScope(caret Node) (Scope, bool) {
	block, ok := c.FindEnclosingBlock(caret)
	if !ok {
		return Scope{}, false
	}
	depth := c.BlockDepth(block)
	return Scope{
		Block: block,
		Span:  block.Span(),
		Depth: depth,
		Color: c.palettes.ColorFor(Curly, depth),
	}, true
}

// Blocks returns every curly block below root in document order. The root
// itself never counts as a block.
func (c *Classifier) Blocks(root Node) []Scope {
	var out []Scope
	Walk(root, func(n Node) bool {
		if !isLeaf(n) && !isRoot(n) && c.IsBlock(n) {
			depth := c.BlockDepth(n)
			out = append(out, Scope{
				Block: n,
				Span:  n.Span(),
				Depth: depth,
				Color: c.palettes.ColorFor(Curly, depth),
			})
		}
		return true
	})
	return out
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		Walk(child, fn)
	}
}

// Leaves calls fn for every childless node under n in document order.
func Leaves(n Node, fn func(Node)) {
	Walk(n, func(cur Node) bool {
		if isLeaf(cur) {
			fn(cur)
			return false
		}
		return true
	})
}
