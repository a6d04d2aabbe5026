// Package nesting classifies bracket tokens and enclosing blocks of a syntax
// tree by structural nesting depth and maps depths onto cyclic color palettes.
//
// The package works on any tree exposing the [Node] interface. It never
// references a concrete editor or parser: trees, rendering sinks and timers
// are injected collaborators.
//
// # Classifier
//
// A [Classifier] answers three questions:
//
//   - [Classifier.IsContainer]: does a node look like a bracketed container
//     (an opening delimiter child near the front, a closing one near the back)?
//   - [Classifier.Classify]: for a single-character bracket leaf, which
//     delimiter kind, depth and color does it get?
//   - [Classifier.FindScope]: which curly block encloses a caret node, and
//     which color should its guide line have?
//
// Predicate results are cached per (node, modification stamp). Bumping the
// [StampSource] invalidates every cached result lazily on the next read.
//
// # Scope guides
//
// [ScopeHighlighter] keeps at most one guide line per editor and recomputes
// it after caret movement settles, using a [Debouncer] on top of a
// [Scheduler].
package nesting
