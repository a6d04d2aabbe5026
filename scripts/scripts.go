// Package scripts embeds the built-in palette presets. Each preset is a
// Risor palette script under palettes/, selected by its base name.
package scripts

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed palettes/*.risor
var FS embed.FS

// PresetPath returns the path of the named preset inside FS.
func PresetPath(name string) string {
	return path.Join("palettes", name+".risor")
}

// Presets returns the names of the embedded presets, sorted.
func Presets() []string {
	entries, err := fs.ReadDir(FS, "palettes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".risor"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
