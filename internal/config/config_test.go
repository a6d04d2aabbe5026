package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/rainbow/nesting"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.Equal(t, 100, cfg.ScanLimit)
	assert.Equal(t, 20, cfg.MaxDepth)
	assert.Equal(t, 50, cfg.BlockScanLimit)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceDelay())
	assert.False(t, cfg.HasPalettes())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := Find(dir)
	require.NoError(t, os.WriteFile(path, []byte(`
scan_limit = 10
debounce_ms = 40
palette_script = "colors.risor"
languages = ["go", "rust"]

[palettes]
all = ["#111111"]
curly = ["#ffd702", "#179fff"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 10, cfg.ScanLimit)
	assert.Equal(t, 20, cfg.MaxDepth, "unset keys keep defaults")
	assert.Equal(t, 40*time.Millisecond, cfg.DebounceDelay())
	assert.Equal(t, filepath.Join(dir, "colors.risor"), cfg.PaletteScript)
	assert.Equal(t, []string{"go", "rust"}, cfg.Languages)

	ps, err := cfg.PaletteOverrides()
	require.NoError(t, err)
	assert.Equal(t, nesting.RGB(0x11, 0x11, 0x11), ps.ColorFor(nesting.Round, 3))
	assert.Equal(t, nesting.Blue, ps.ColorFor(nesting.Curly, 1), "per-kind key wins over all")
}

func TestParse_Preset(t *testing.T) {
	t.Parallel()
	cfg, err := Parse("test.toml", []byte("palette_preset = \"pastel\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "pastel", cfg.PalettePreset)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		parseErr  bool
		wantLine  int
		wantValue bool
	}{
		{"syntax", "scan_limit = \n", true, 1, false},
		{"wrong type", "scan_limit = \"ten\"\n", true, -1, false},
		{"unknown key", "\n\ncolour = 1\n", true, 3, false},
		{"negative", "max_depth = -1\n", false, 0, true},
		{"bad color", "[palettes]\nround = [\"#zz\"]\n", false, 0, true},
		{"bad kind", "[palettes]\nwavy = [\"#fff\"]\n", false, 0, true},
		{"unknown preset", "palette_preset = \"neon\"\n", false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("test.toml", []byte(tt.data))
			require.Error(t, err)

			var pe *ParseError
			assert.Equal(t, tt.parseErr, errors.As(err, &pe))
			if tt.parseErr {
				assert.Equal(t, "test.toml", pe.Path)
				if tt.wantLine >= 0 {
					assert.Equal(t, tt.wantLine, pe.Line)
				}
				assert.Contains(t, pe.Error(), "parse error in test.toml")
			}
			assert.Equal(t, tt.wantValue, errors.Is(err, ErrInvalidValue))
		})
	}
}

func TestParseError_Format(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "parse error in a.toml: boom", (&ParseError{Path: "a.toml", Message: "boom"}).Error())
	assert.Equal(t, "parse error in a.toml at line 2: boom", (&ParseError{Path: "a.toml", Line: 2, Message: "boom"}).Error())
	assert.Equal(t, "parse error in a.toml at line 2, column 5: boom",
		(&ParseError{Path: "a.toml", Line: 2, Column: 5, Message: "boom"}).Error())

	inner := errors.New("inner")
	assert.ErrorIs(t, &ParseError{Err: inner}, inner)
}
