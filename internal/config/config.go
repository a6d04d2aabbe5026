// Package config loads the optional .rainbow.toml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jward/rainbow/nesting"
	"github.com/jward/rainbow/scripts"
)

// FileName is the config file looked up at the repository root.
const FileName = ".rainbow.toml"

// ErrInvalidValue indicates a setting outside its allowed range.
var ErrInvalidValue = errors.New("config: invalid value")

// Config holds classifier and engine settings. Zero values mean "use the
// built-in default".
type Config struct {
	ScanLimit      int                 `toml:"scan_limit"`
	MaxDepth       int                 `toml:"max_depth"`
	BlockScanLimit int                 `toml:"block_scan_limit"`
	DebounceMS     int                 `toml:"debounce_ms"`
	PaletteScript  string              `toml:"palette_script"`
	PalettePreset  string              `toml:"palette_preset"`
	Languages      []string            `toml:"languages"`
	Palettes       map[string][]string `toml:"palettes"`

	// Path is the file the config was read from, or "" for defaults.
	Path string `toml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ScanLimit:      nesting.DefaultScanLimit,
		MaxDepth:       nesting.DefaultMaxDepth,
		BlockScanLimit: nesting.DefaultBlockScanLimit,
		DebounceMS:     int(nesting.DefaultDebounceDelay / time.Millisecond),
	}
}

// Find returns the path of the config file under root.
func Find(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data over the defaults. Unknown keys are rejected.
func Parse(source string, data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, newParseError(source, err)
	}
	cfg.Path = source
	if cfg.PaletteScript != "" && !filepath.IsAbs(cfg.PaletteScript) && source != "" {
		cfg.PaletteScript = filepath.Join(filepath.Dir(source), cfg.PaletteScript)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and palette contents.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"scan_limit", c.ScanLimit},
		{"max_depth", c.MaxDepth},
		{"block_scan_limit", c.BlockScanLimit},
		{"debounce_ms", c.DebounceMS},
	} {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidValue, f.name, f.v)
		}
	}
	if c.PalettePreset != "" && !slices.Contains(scripts.Presets(), c.PalettePreset) {
		return fmt.Errorf("%w: unknown palette_preset %q (have %s)", ErrInvalidValue,
			c.PalettePreset, strings.Join(scripts.Presets(), ", "))
	}
	if _, err := c.PaletteOverrides(); err != nil {
		return err
	}
	return nil
}

// DebounceDelay returns the caret debounce delay.
func (c Config) DebounceDelay() time.Duration {
	if c.DebounceMS <= 0 {
		return nesting.DefaultDebounceDelay
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HasPalettes reports whether the file overrides any palette.
func (c Config) HasPalettes() bool {
	return len(c.Palettes) > 0
}

// PaletteOverrides applies the [palettes] table over the default palettes.
// The key "all" applies to every kind before per-kind keys are applied.
func (c Config) PaletteOverrides() (nesting.Palettes, error) {
	ps := nesting.DefaultPalettes()

	keys := make([]string, 0, len(c.Palettes))
	for k := range c.Palettes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "all" || keys[j] == "all" {
			return keys[i] == "all" && keys[j] != "all"
		}
		return keys[i] < keys[j]
	})

	for _, name := range keys {
		p := make(nesting.Palette, 0, len(c.Palettes[name]))
		for i, s := range c.Palettes[name] {
			col, err := nesting.ParseColor(s)
			if err != nil {
				return nesting.Palettes{}, fmt.Errorf("%w: palettes.%s[%d]: %v", ErrInvalidValue, name, i, err)
			}
			p = append(p, col)
		}

		kinds := nesting.Kinds
		if name != "all" {
			k, ok := nesting.ParseKind(name)
			if !ok {
				return nesting.Palettes{}, fmt.Errorf("%w: unknown palette kind %q", ErrInvalidValue, name)
			}
			kinds = []nesting.Kind{k}
		}
		for _, k := range kinds {
			if err := ps.Set(k, p); err != nil {
				return nesting.Palettes{}, fmt.Errorf("%w: palettes.%s: %v", ErrInvalidValue, name, err)
			}
		}
	}
	return ps, nil
}
