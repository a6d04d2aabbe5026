// Package rainbow colors brackets by nesting depth and finds the block that
// encloses a caret, on top of tree-sitter syntax trees.
//
// # Pipeline
//
// For each source file, rainbow parses with tree-sitter, walks every leaf,
// and classifies single-character delimiter tokens with a
// [nesting.Classifier]. Each bracket's depth is the number of bracketed
// containers above it, minus one, and its color is picked from the palette of
// its delimiter kind. Every curly block is recorded with its own depth and
// guide color. Results are written to SQLite.
//
// # Usage
//
//	e, err := rainbow.New("rainbow.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	brackets, err := q.Brackets("main.go")
//
// [Engine.ClassifyAt] and [Engine.ScopeAt] skip the database and answer from
// a fresh parse.
//
// # Live highlighting
//
// [Editors] holds open [FileEditor]s and hands their trees to a
// [nesting.ScopeHighlighter] built by [Engine.NewScopeHighlighter]. Caret
// moves are debounced; each recomputation replaces the editor's guide line.
//
// # Palettes
//
// Palettes come from, in increasing priority: the built-in seven colors,
// [WithPalettes], and a Risor script given to [WithPaletteScript]. A change
// of palette or scan limits invalidates every stored file on the next
// [Engine.IndexFiles].
package rainbow
