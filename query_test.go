package rainbow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", goSource)
	writeFile(t, dir, "lib.py", "def f(a):\n    return {'k': [a]}\n")

	e := newTestEngine(t)
	require.NoError(t, e.IndexDirectory(context.Background(), dir))
	return e, path
}

func TestQuery_UnknownPath(t *testing.T) {
	t.Parallel()
	e, _ := indexedEngine(t)
	q := e.Query()

	brackets, err := q.Brackets("/never/indexed.go")
	require.NoError(t, err)
	assert.Nil(t, brackets)

	b, err := q.BracketAt("/never/indexed.go", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, b)

	blocks, err := q.Blocks("/never/indexed.go")
	require.NoError(t, err)
	assert.Nil(t, blocks)

	blk, err := q.BlockAt("/never/indexed.go", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, blk)
}

func TestQuery_BlockAt(t *testing.T) {
	t.Parallel()
	e, path := indexedEngine(t)
	q := e.Query()

	tests := []struct {
		name      string
		line, col int
		depth     int
		found     bool
	}{
		{"inside if body", 5, 2, 1, true},
		{"if closing brace", 6, 1, 1, true},
		{"function body", 3, 1, 0, true},
		{"function closing brace", 7, 0, 0, true},
		{"package clause", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.BlockAt(path, tt.line, tt.col)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.depth, got.Depth)
		})
	}
}

func TestQuery_Summary(t *testing.T) {
	t.Parallel()
	e, _ := indexedEngine(t)

	s, err := e.Query().Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Files)
	require.Len(t, s.Languages, 2)
	assert.Equal(t, "go", s.Languages[0].Language)
	assert.Equal(t, 12, s.Languages[0].Brackets)
	assert.Equal(t, "python", s.Languages[1].Language)
	assert.Equal(t, s.Languages[0].Brackets+s.Languages[1].Brackets, s.Brackets)
	assert.Equal(t, 3, s.Blocks, "two go blocks and the python dict")
	assert.Equal(t, 2, s.MaxDepth)

	total := 0
	for _, d := range s.Depths {
		total += d.Count
	}
	assert.Equal(t, s.Brackets, total)
}
