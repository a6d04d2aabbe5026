package nesting

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFor_Cyclic(t *testing.T) {
	t.Parallel()
	ps := DefaultPalettes()

	for _, k := range Kinds {
		for depth := 0; depth < 30; depth++ {
			assert.Equal(t, ps.ColorFor(k, depth), ps.ColorFor(k, depth+7), "kind %s depth %d", k, depth)
		}
	}
}

func TestColorFor_CanonicalOrder(t *testing.T) {
	t.Parallel()
	ps := DefaultPalettes()

	want := []Color{Yellow, Blue, Orange, Purple, Green, Cyan, Red}
	for depth, c := range want {
		assert.Equal(t, c, ps.ColorFor(Curly, depth))
	}
	assert.Equal(t, Yellow, ps.ColorFor(Round, -3), "negative depth clamps to 0")
}

func TestPalettes_Independent(t *testing.T) {
	t.Parallel()
	ps := DefaultPalettes()

	require.NoError(t, ps.Set(Angle, Palette{Cyan}))
	assert.Equal(t, Cyan, ps.ColorFor(Angle, 4))
	assert.Equal(t, Green, ps.ColorFor(Round, 4))

	assert.Error(t, ps.Set(Angle, nil))
	assert.Error(t, ps.Set(Kind(9), Palette{Red}))
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#FFD702", Yellow, false},
		{"ffd702", Yellow, false},
		{" #179fff ", Blue, false},
		{"#fff", RGB(0xFF, 0xFF, 0xFF), false},
		{"#12345", Color{}, true},
		{"not a color", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorHex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#ffd702", Yellow.Hex())
	assert.Equal(t, "#ff4500", Red.String())

	for _, c := range DefaultPalette() {
		back, err := ParseColor(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds {
		got, opening, ok := KindOf(k.Open())
		assert.True(t, ok)
		assert.True(t, opening)
		assert.Equal(t, k, got)

		got, opening, ok = KindOf(k.Close())
		assert.True(t, ok)
		assert.False(t, opening)
		assert.Equal(t, k, got)

		parsed, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}

	_, _, ok := KindOf("((")
	assert.False(t, ok)
	_, ok = ParseKind("pointy")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(7).String())
}

func TestStyleCache(t *testing.T) {
	t.Parallel()
	sc := NewStyleCache()

	var wg sync.WaitGroup
	results := make([]*Style, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = sc.StyleFor(Purple)
		}()
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, Purple, results[0].Foreground)
	assert.NotSame(t, results[0], sc.StyleFor(Green))
	assert.Equal(t, 2, sc.Len())
}
