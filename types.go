package rainbow

import (
	"github.com/jward/rainbow/internal/store"
	"github.com/jward/rainbow/nesting"
)

// Public type aliases for internal store types used in the QueryBuilder API.
// These are Go type aliases (=) so no conversion is needed.

type Store = store.Store
type File = store.File
type Bracket = store.Bracket
type Block = store.Block
type DepthCount = store.DepthCount

// Aliases for the classifier types that appear in Engine options.

type Color = nesting.Color
type Palette = nesting.Palette
type Palettes = nesting.Palettes
type Kind = nesting.Kind
