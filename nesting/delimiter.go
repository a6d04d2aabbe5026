package nesting

// Kind identifies a delimiter family. Each kind has its own palette.
type Kind int

const (
	Round  Kind = iota // ( )
	Square             // [ ]
	Curly              // { }
	Angle              // < >

	numKinds = 4
)

var kindNames = [numKinds]string{"round", "square", "curly", "angle"}

// Kinds lists every delimiter kind in palette order.
var Kinds = []Kind{Round, Square, Curly, Angle}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a kind name ("round", "square", "curly", "angle") to a Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Open returns the opening character of the kind.
func (k Kind) Open() string {
	return delimiterPairs[k][0]
}

// Close returns the closing character of the kind.
func (k Kind) Close() string {
	return delimiterPairs[k][1]
}

var delimiterPairs = [numKinds][2]string{
	Round:  {"(", ")"},
	Square: {"[", "]"},
	Curly:  {"{", "}"},
	Angle:  {"<", ">"},
}

var (
	openers = map[string]Kind{"(": Round, "[": Square, "{": Curly, "<": Angle}
	closers = map[string]Kind{")": Round, "]": Square, "}": Curly, ">": Angle}
)

// KindOf returns the delimiter kind of a single-character text and whether
// it is an opening delimiter. ok is false for anything that is not exactly
// one delimiter character.
func KindOf(text string) (kind Kind, opening bool, ok bool) {
	if k, found := openers[text]; found {
		return k, true, true
	}
	if k, found := closers[text]; found {
		return k, false, true
	}
	return 0, false, false
}

func isOpener(text string) bool {
	_, ok := openers[text]
	return ok
}

func isCloser(text string) bool {
	_, ok := closers[text]
	return ok
}
