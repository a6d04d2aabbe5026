package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/rainbow/nesting"
)

// collector accumulates palette(...) calls made by one script run.
type collector struct {
	palettes nesting.Palettes
	calls    int
}

func newCollector() *collector {
	return &collector{palettes: nesting.DefaultPalettes()}
}

func (c *collector) globals() map[string]any {
	return map[string]any{"palette": c.paletteFn()}
}

// paletteFn creates the "palette" host function.
//
// palette(kind, colors) → nil
func (c *collector) paletteFn() *object.Builtin {
	return object.NewBuiltin("palette", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("palette", 2, len(args))
		}

		kindName, err := toString(args[0])
		if err != nil {
			return object.Errorf("palette: kind: %v", err)
		}
		colors, err := toColors(args[1])
		if err != nil {
			return object.Errorf("palette: %v", err)
		}

		kinds := nesting.Kinds[:]
		if kindName != "all" {
			k, ok := nesting.ParseKind(kindName)
			if !ok {
				return object.Errorf("palette: unknown kind %q", kindName)
			}
			kinds = []nesting.Kind{k}
		}
		for _, k := range kinds {
			if err := c.palettes.Set(k, colors); err != nil {
				return object.Errorf("palette: %v", err)
			}
		}
		c.calls++
		return object.Nil
	})
}

// makeDefaultPaletteFn creates "default_palette", returning the built-in
// colors as hex strings so scripts can reorder or extend them.
//
// default_palette() → list of strings
func makeDefaultPaletteFn() *object.Builtin {
	return object.NewBuiltin("default_palette", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("default_palette", 0, len(args))
		}
		def := nesting.DefaultPalette()
		items := make([]object.Object, len(def))
		for i, c := range def {
			items[i] = object.NewString(c.Hex())
		}
		return object.NewList(items)
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toColors(obj object.Object) (nesting.Palette, error) {
	list, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("colors must be a list, got %s", obj.Type())
	}
	items := list.Value()
	if len(items) == 0 {
		return nil, fmt.Errorf("colors must not be empty")
	}
	out := make(nesting.Palette, 0, len(items))
	for i, item := range items {
		s, err := toString(item)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		c, err := nesting.ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
