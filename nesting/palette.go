package nesting

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor parses "#rrggbb" or "#rgb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("nesting: invalid color %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("nesting: invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Hex()
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Canonical palette, level 0 first. Adjacent levels are chosen for contrast.
var (
	Yellow = RGB(0xFF, 0xD7, 0x02)
	Blue   = RGB(0x17, 0x9F, 0xFF)
	Orange = RGB(0xFF, 0x93, 0x00)
	Purple = RGB(0xDA, 0x70, 0xD6)
	Green  = RGB(0x17, 0xE5, 0x61)
	Cyan   = RGB(0x00, 0xBF, 0xFF)
	Red    = RGB(0xFF, 0x45, 0x00)
)

// Palette is an ordered color cycle indexed by depth modulo its length.
type Palette []Color

// DefaultPalette returns a fresh copy of the 7-color canonical cycle.
func DefaultPalette() Palette {
	return Palette{Yellow, Blue, Orange, Purple, Green, Cyan, Red}
}

// At returns the color for depth. Negative depths are clamped to 0.
// An empty palette yields the zero Color.
func (p Palette) At(depth int) Color {
	if len(p) == 0 {
		return Color{}
	}
	if depth < 0 {
		depth = 0
	}
	return p[depth%len(p)]
}

// Palettes holds one independent palette per delimiter kind.
type Palettes [numKinds]Palette

// DefaultPalettes returns palettes where every kind uses the canonical cycle.
func DefaultPalettes() Palettes {
	var ps Palettes
	for _, k := range Kinds {
		ps[k] = DefaultPalette()
	}
	return ps
}

// ColorFor returns palette[kind][depth mod size].
func (ps *Palettes) ColorFor(kind Kind, depth int) Color {
	if kind < 0 || kind >= numKinds {
		kind = Round
	}
	return ps[kind].At(depth)
}

// Set replaces the palette for one kind.
func (ps *Palettes) Set(kind Kind, p Palette) error {
	if kind < 0 || kind >= numKinds {
		return fmt.Errorf("nesting: unknown delimiter kind %d", kind)
	}
	if len(p) == 0 {
		return fmt.Errorf("nesting: empty palette for %s", kind)
	}
	ps[kind] = append(Palette(nil), p...)
	return nil
}
