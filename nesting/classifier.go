package nesting

// Default bounds. They cap the cost of a single query on pathological trees;
// hitting a bound yields a false negative, never an error.
const (
	DefaultScanLimit      = 100
	DefaultBlockScanLimit = 50
	DefaultMaxDepth       = 20
)

// Classifier computes container predicates, nesting depths and colors over
// syntax trees. It is safe for concurrent use.
type Classifier struct {
	stamps         StampSource
	palettes       Palettes
	styles         *StyleCache
	scanLimit      int
	blockScanLimit int
	maxDepth       int

	containers *versionedCache[Node, bool]
	blocks     *versionedCache[Node, bool]
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPalettes replaces the default palettes.
func WithPalettes(ps Palettes) Option {
	return func(c *Classifier) {
		c.palettes = ps
	}
}

// WithStyleCache shares a StyleCache between classifiers.
func WithStyleCache(sc *StyleCache) Option {
	return func(c *Classifier) {
		c.styles = sc
	}
}

// WithScanLimit bounds how many children the container predicate inspects
// from each end of a node. Values below 1 are ignored.
func WithScanLimit(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.scanLimit = n
		}
	}
}

// WithBlockScanLimit bounds the child scans of the curly-block predicate.
// Values below 1 are ignored.
func WithBlockScanLimit(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.blockScanLimit = n
		}
	}
}

// WithMaxDepth caps how many containers DepthOf counts, so depths never
// exceed n-1. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// NewClassifier creates a Classifier whose caches are keyed by the stamps
// reported by stamps.
func NewClassifier(stamps StampSource, opts ...Option) *Classifier {
	c := &Classifier{
		stamps:         stamps,
		palettes:       DefaultPalettes(),
		scanLimit:      DefaultScanLimit,
		blockScanLimit: DefaultBlockScanLimit,
		maxDepth:       DefaultMaxDepth,
		containers:     newVersionedCache[Node, bool](),
		blocks:         newVersionedCache[Node, bool](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.styles == nil {
		c.styles = NewStyleCache()
	}
	return c
}

// Palettes returns the classifier's palettes.
func (c *Classifier) Palettes() Palettes {
	return c.palettes
}

// Styles returns the style cache used by Classify.
func (c *Classifier) Styles() *StyleCache {
	return c.styles
}

// IsContainer reports whether n structurally looks like a bracketed
// container: one of its first scanLimit children is exactly an opening
// delimiter and one of its last scanLimit children is exactly a closing
// delimiter. The two are not checked to be the same kind.
func (c *Classifier) IsContainer(n Node) bool {
	stamp := c.stamps.ModificationCount()
	if v, ok := c.containers.get(n, stamp); ok {
		return v
	}
	v := delimited(n, isOpener, isCloser, c.scanLimit)
	c.containers.put(n, stamp, v)
	return v
}

// IsBlock reports whether n is a curly block: a direct child is exactly "{"
// and a direct child is exactly "}", each within blockScanLimit children of
// its end.
func (c *Classifier) IsBlock(n Node) bool {
	stamp := c.stamps.ModificationCount()
	if v, ok := c.blocks.get(n, stamp); ok {
		return v
	}
	v := delimited(n, isCurlyOpen, isCurlyClose, c.blockScanLimit)
	c.blocks.put(n, stamp, v)
	return v
}

func isCurlyOpen(text string) bool  { return text == "{" }
func isCurlyClose(text string) bool { return text == "}" }

// delimited scans n's children forward for an opening child and, only if
// one was found, backward for a closing child. Candidates must be exactly
// one character long so multi-character tokens such as "<=" or "{{" never
// count.
func delimited(n Node, open, closing func(string) bool, limit int) bool {
	found := false
	count := 0
	for child := n.FirstChild(); child != nil && count < limit; child = child.NextSibling() {
		if child.TextLen() == 1 && open(child.Text()) {
			found = true
			break
		}
		count++
	}
	if !found {
		return false
	}

	count = 0
	for child := n.LastChild(); child != nil && count < limit; child = child.PrevSibling() {
		if child.TextLen() == 1 && closing(child.Text()) {
			return true
		}
		count++
	}
	return false
}

// DepthOf returns the nesting depth of a bracket leaf. Containers are
// counted from leaf's parent upward, excluding the tree root, and counting
// stops once maxDepth containers were seen. The bracket's own enclosing
// container is level 0, so the result is count-1 clamped at 0.
func (c *Classifier) DepthOf(leaf Node) int {
	count := 0
	for cur := leaf.Parent(); cur != nil && !isRoot(cur) && count < c.maxDepth; cur = cur.Parent() {
		if c.IsContainer(cur) {
			count++
		}
	}
	return max(count-1, 0)
}

// Classification is the result of classifying one bracket leaf.
type Classification struct {
	Kind    Kind
	Opening bool
	Depth   int
	Color   Color
	Style   *Style
	Span    Span
}

// Classify colors a bracket leaf. It returns false for anything that is not
// a childless single-character delimiter token.
func (c *Classifier) Classify(leaf Node) (Classification, bool) {
	if leaf == nil || leaf.TextLen() != 1 || !isLeaf(leaf) {
		return Classification{}, false
	}
	kind, opening, ok := KindOf(leaf.Text())
	if !ok {
		return Classification{}, false
	}
	depth := c.DepthOf(leaf)
	color := c.palettes.ColorFor(kind, depth)
	return Classification{
		Kind:    kind,
		Opening: opening,
		Depth:   depth,
		Color:   color,
		Style:   c.styles.StyleFor(color),
		Span:    leaf.Span(),
	}, true
}
