package nesting

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether offset falls inside [Start, End).
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Node is a read-only handle into one syntax tree snapshot.
//
// Navigation methods return an untyped nil when the neighbor does not exist.
// Implementations must be comparable, and two handles for the same node of
// the same snapshot must compare equal: nodes are used as cache keys.
type Node interface {
	Parent() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PrevSibling() Node

	// Text is the exact source text covered by the node.
	Text() string
	// TextLen is len(Text()) without materializing the text.
	TextLen() int
	// Span is the absolute byte range of the node.
	Span() Span
}

// isLeaf reports whether n has no children.
func isLeaf(n Node) bool {
	return n.FirstChild() == nil
}

// isRoot reports whether n is the top of its tree.
func isRoot(n Node) bool {
	return n.Parent() == nil
}
