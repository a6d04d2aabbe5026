// Package script evaluates Risor palette scripts.
//
// A palette script calls palette(kind, colors) once per delimiter kind it
// wants to recolor. kind is "round", "square", "curly", "angle" or "all";
// colors is a list of hex strings. Kinds the script leaves alone keep the
// default palette.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/rainbow/nesting"
)

// ErrNoPalette is returned when a script finishes without calling palette.
var ErrNoPalette = errors.New("script: no palette defined")

// Runtime embeds a Risor VM and exposes the palette host functions.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts and resolve imports
// from an fs.FS instead of from disk.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger routes the script-visible log object to l.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves relative script paths and
// imports against scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunPaletteScript loads the script at path and returns the palettes it
// defines.
func (r *Runtime) RunPaletteScript(ctx context.Context, path string) (nesting.Palettes, error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return nesting.Palettes{}, err
	}
	return r.evalPalettes(ctx, src, path)
}

// RunPaletteSource evaluates palette script source directly.
func (r *Runtime) RunPaletteSource(ctx context.Context, source string) (nesting.Palettes, error) {
	return r.evalPalettes(ctx, source, "<inline>")
}

func (r *Runtime) evalPalettes(ctx context.Context, source, label string) (nesting.Palettes, error) {
	c := newCollector()
	if err := r.eval(ctx, source, label, c.globals()); err != nil {
		return nesting.Palettes{}, err
	}
	if c.calls == 0 {
		return nesting.Palettes{}, fmt.Errorf("%w: %s", ErrNoPalette, label)
	}
	r.logger.Debug("palette script evaluated", "script", label, "calls", c.calls)
	return c.palettes, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("script: %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script
// source, or nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("script: loading %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("script: loading %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the globals exposed to every script.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log":             mustProxy(&logObject{logger: r.logger}),
		"default_palette": makeDefaultPaletteFn(),
		"kinds":           kindNames(),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func kindNames() []any {
	out := make([]any, 0, len(nesting.Kinds))
	for _, k := range nesting.Kinds {
		out = append(out, k.String())
	}
	return out
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("script: proxy error: %v", err))
	}
	return p
}
