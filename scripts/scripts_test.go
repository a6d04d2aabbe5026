package scripts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/rainbow/internal/script"
	"github.com/jward/rainbow/nesting"
	"github.com/jward/rainbow/scripts"
)

func runPreset(t *testing.T, name string) nesting.Palettes {
	t.Helper()
	rt := script.NewRuntime("", script.WithRuntimeFS(scripts.FS))
	ps, err := rt.RunPaletteScript(context.Background(), scripts.PresetPath(name))
	require.NoError(t, err)
	return ps
}

func TestPresets(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"mono", "pastel", "reversed"}, scripts.Presets())
}

func TestPresets_AllEvaluate(t *testing.T) {
	t.Parallel()
	for _, name := range scripts.Presets() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ps := runPreset(t, name)
			for _, k := range nesting.Kinds {
				assert.NotEmpty(t, ps[k], "kind %s", k)
			}
		})
	}
}

func TestPreset_Mono(t *testing.T) {
	t.Parallel()
	ps := runPreset(t, "mono")
	for _, k := range nesting.Kinds {
		require.Len(t, ps[k], 3)
		assert.Equal(t, "#e0e0e0", ps.ColorFor(k, 0).Hex())
		assert.Equal(t, "#e0e0e0", ps.ColorFor(k, 3).Hex(), "depth wraps around")
	}
}

func TestPreset_Reversed(t *testing.T) {
	t.Parallel()
	ps := runPreset(t, "reversed")
	assert.Equal(t, nesting.Red, ps.ColorFor(nesting.Round, 0))
	assert.Equal(t, nesting.Yellow, ps.ColorFor(nesting.Square, 6))
	assert.Equal(t, nesting.Yellow, ps.ColorFor(nesting.Curly, 0), "blocks keep the default cycle")
}

func TestPreset_Unknown(t *testing.T) {
	t.Parallel()
	rt := script.NewRuntime("", script.WithRuntimeFS(scripts.FS))
	_, err := rt.RunPaletteScript(context.Background(), scripts.PresetPath("neon"))
	assert.Error(t, err)
}
