package rainbow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jward/rainbow/internal/script"
	"github.com/jward/rainbow/internal/store"
	"github.com/jward/rainbow/internal/syntax"
	"github.com/jward/rainbow/nesting"
	"github.com/jward/rainbow/scripts"
)

// settingsHashKey is the metadata key holding the digest of the palettes and
// limits the stored classifications were computed with.
const settingsHashKey = "settings_hash"

// Engine orchestrates the rainbow pipeline: file discovery, change
// detection, parsing, classification, and query access.
type Engine struct {
	store     *store.Store
	languages map[string]bool // nil means all languages
	logger    *slog.Logger

	palettes       nesting.Palettes
	paletteScript  string
	palettePreset  string
	scanLimit      int
	maxDepth       int
	blockScanLimit int
	styles         *nesting.StyleCache

	// useParallel enables the parallel indexing pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithParallel controls parallel indexing. When true (default), IndexFiles
// uses a worker pool for parsing and classification, with a single writer
// committing batches to SQLite. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithPalettes replaces the default palettes.
func WithPalettes(ps Palettes) Option {
	return func(e *Engine) {
		e.palettes = ps
	}
}

// WithPaletteScript loads palettes from a Risor script when the Engine is
// created. It takes priority over WithPalettes.
func WithPaletteScript(path string) Option {
	return func(e *Engine) {
		e.paletteScript = path
	}
}

// WithPalettePreset loads one of the embedded palette presets by name.
// WithPaletteScript takes priority over it.
func WithPalettePreset(name string) Option {
	return func(e *Engine) {
		e.palettePreset = name
	}
}

// WithScanLimit sets how many children the container predicate inspects
// from each end of a node.
func WithScanLimit(n int) Option {
	return func(e *Engine) {
		e.scanLimit = n
	}
}

// WithMaxDepth caps how many containers the depth counter counts.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithBlockScanLimit sets how many children the block predicate inspects
// from each end of a node.
func WithBlockScanLimit(n int) Option {
	return func(e *Engine) {
		e.blockScanLimit = n
	}
}

// WithLogger sets the logger for indexing progress. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("rainbow: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("rainbow: migrate: %w", err)
	}

	e := &Engine{
		store:          s,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		palettes:       nesting.DefaultPalettes(),
		scanLimit:      nesting.DefaultScanLimit,
		maxDepth:       nesting.DefaultMaxDepth,
		blockScanLimit: nesting.DefaultBlockScanLimit,
		styles:         nesting.NewStyleCache(),
		useParallel:    true,
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case e.paletteScript != "":
		rt := script.NewRuntime(filepath.Dir(e.paletteScript), script.WithLogger(e.logger))
		ps, err := rt.RunPaletteScript(context.Background(), e.paletteScript)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("rainbow: palette script: %w", err)
		}
		e.palettes = ps
	case e.palettePreset != "":
		rt := script.NewRuntime("", script.WithRuntimeFS(scripts.FS), script.WithLogger(e.logger))
		ps, err := rt.RunPaletteScript(context.Background(), scripts.PresetPath(e.palettePreset))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("rainbow: palette preset %q: %w", e.palettePreset, err)
		}
		e.palettes = ps
	}

	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Palettes returns the palettes the Engine classifies with.
func (e *Engine) Palettes() Palettes {
	return e.palettes
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// NewClassifier returns a classifier configured like the Engine's, reading
// modification stamps from stamps.
func (e *Engine) NewClassifier(stamps nesting.StampSource) *nesting.Classifier {
	return nesting.NewClassifier(stamps,
		nesting.WithPalettes(e.palettes),
		nesting.WithStyleCache(e.styles),
		nesting.WithScanLimit(e.scanLimit),
		nesting.WithMaxDepth(e.maxDepth),
		nesting.WithBlockScanLimit(e.blockScanLimit),
	)
}

// settingsHash digests everything that affects classification output.
func (e *Engine) settingsHash() string {
	settings := map[string]string{
		"scan_limit":       strconv.Itoa(e.scanLimit),
		"max_depth":        strconv.Itoa(e.maxDepth),
		"block_scan_limit": strconv.Itoa(e.blockScanLimit),
	}
	for _, k := range nesting.Kinds {
		ps := e.palettes
		hexes := make([]string, 0, len(ps[k]))
		for _, c := range ps[k] {
			hexes = append(hexes, c.Hex())
		}
		settings["palette."+k.String()] = strings.Join(hexes, ",")
	}
	return store.HashSettings(settings)
}

// SettingsChanged reports whether the stored classifications were computed
// with different palettes or limits. True when nothing was stored yet.
func (e *Engine) SettingsChanged() bool {
	stored, err := e.store.GetMetadata(settingsHashKey)
	if err != nil || stored == "" {
		return true
	}
	return stored != e.settingsHash()
}

// invalidateIfSettingsChanged clears every stored content hash when the
// settings differ, so the next pass reclassifies every file.
func (e *Engine) invalidateIfSettingsChanged() error {
	if !e.SettingsChanged() {
		return nil
	}
	if _, err := e.store.DB().Exec("UPDATE files SET hash = ''"); err != nil {
		return fmt.Errorf("invalidate file hashes: %w", err)
	}
	return e.store.SetMetadata(settingsHashKey, e.settingsHash())
}

// IndexFiles indexes the given file paths. When WithParallel is enabled,
// uses a worker pool for concurrent classification with batched SQLite
// writes. Otherwise falls back to the serial path.
//
// For each file:
// 1. Detect language from extension
// 2. Skip unsupported or filtered-out languages
// 3. Skip unchanged files (same content hash)
// 4. Delete stale data, insert the file record
// 5. Parse, classify every bracket, record every block
//
// Errors on individual files are collected; processing continues.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	if err := e.invalidateIfSettingsChanged(); err != nil {
		return fmt.Errorf("rainbow: %w", err)
	}
	if e.useParallel {
		return e.IndexFilesParallel(ctx, paths)
	}
	return e.indexFilesSerial(ctx, paths)
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.indexFile(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	item, skip, err := e.prepareFile(ctx, path)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	doc, err := syntax.Parse(ctx, item.content, item.lang)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer doc.Close()

	n, err := e.classifyDocument(doc, item.fileID, e.store)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if err := e.store.MarkIndexed(item.fileID, n, item.hash); err != nil {
		return err
	}
	e.logger.Debug("indexed file", "path", path, "language", item.lang, "brackets", n)
	return nil
}

// classifyDocument walks doc, writes one row per bracket and per curly block
// to ds, and returns the bracket count.
func (e *Engine) classifyDocument(doc *syntax.Document, fileID int64, ds store.DataStore) (int, error) {
	c := e.NewClassifier(nesting.FixedStamp(0))
	lines := doc.Lines()

	count := 0
	var insertErr error
	nesting.Leaves(doc.Root(), func(n nesting.Node) {
		if insertErr != nil {
			return
		}
		cl, ok := c.Classify(n)
		if !ok {
			return
		}
		pos := lines.Position(cl.Span.Start)
		_, insertErr = ds.InsertBracket(&store.Bracket{
			FileID:    fileID,
			Kind:      cl.Kind.String(),
			Text:      n.Text(),
			Opening:   cl.Opening,
			Depth:     cl.Depth,
			Color:     cl.Color.Hex(),
			StartByte: cl.Span.Start,
			EndByte:   cl.Span.End,
			Line:      pos.Line,
			Col:       pos.Col,
		})
		count++
	})
	if insertErr != nil {
		return 0, insertErr
	}

	for _, sc := range c.Blocks(doc.Root()) {
		if _, err := ds.InsertBlock(blockRow(fileID, lines, sc)); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// blockRow converts a scope to a store row. The end position is that of the
// closing brace.
func blockRow(fileID int64, lines *nesting.TextDocument, sc nesting.Scope) *store.Block {
	start := lines.Position(sc.Span.Start)
	end := lines.Position(max(sc.Span.End-1, sc.Span.Start))
	return &store.Block{
		FileID:    fileID,
		Depth:     sc.Depth,
		Color:     sc.Color.Hex(),
		StartByte: sc.Span.Start,
		EndByte:   sc.Span.End,
		StartLine: start.Line,
		StartCol:  start.Col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}

// skipDirs lists directories excluded from indexing.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// IndexDirectory walks root and indexes all files with supported extensions.
// If root is inside a git repository, uses git ls-files to respect .gitignore.
// Falls back to filesystem walk (skipping hidden dirs, node_modules, vendor,
// __pycache__) if git is unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.gitListFiles(ctx, root)
	if err != nil {
		e.logger.Debug("git ls-files unavailable, walking", "root", root, "err", err)
		paths, err = e.walkListFiles(root)
		if err != nil {
			return err
		}
	}
	if err := e.pruneMissing(root, paths); err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// pruneMissing removes stored files under root that discovery no longer
// reports, e.g. deleted or newly ignored files.
func (e *Engine) pruneMissing(root string, paths []string) error {
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		present[p] = true
	}
	files, err := e.store.Files()
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	prefix := filepath.Clean(root) + string(filepath.Separator)
	var stale []int64
	for _, f := range files {
		if strings.HasPrefix(f.Path, prefix) && !present[f.Path] {
			stale = append(stale, f.ID)
			e.logger.Debug("pruning file", "path", f.Path)
		}
	}
	if err := e.store.DeleteFiles(stale); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (e *Engine) gitListFiles(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := syntax.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a fallback
// when git is not available.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := syntax.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// parseLive reads and parses path without touching the store.
func (e *Engine) parseLive(ctx context.Context, path string) (*syntax.Document, error) {
	lang, ok := syntax.LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("rainbow: %w: %s", syntax.ErrUnsupportedLanguage, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rainbow: read %s: %w", path, err)
	}
	doc, err := syntax.Parse(ctx, src, lang)
	if err != nil {
		return nil, fmt.Errorf("rainbow: %w", err)
	}
	return doc, nil
}

// ClassifyAt parses path and classifies the token at the 0-based (line, col).
// Returns nil if no bracket covers that position.
func (e *Engine) ClassifyAt(ctx context.Context, path string, line, col int) (*Bracket, error) {
	doc, err := e.parseLive(ctx, path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	offset := doc.Lines().Offset(line, col)
	leaf := doc.LeafAt(offset)
	c := e.NewClassifier(nesting.FixedStamp(0))
	cl, ok := c.Classify(leaf)
	// Between tokens LeafAt yields the following token.
	if !ok || !cl.Span.Contains(offset) {
		return nil, nil
	}
	pos := doc.Lines().Position(cl.Span.Start)
	return &Bracket{
		Kind:      cl.Kind.String(),
		Text:      leaf.Text(),
		Opening:   cl.Opening,
		Depth:     cl.Depth,
		Color:     cl.Color.Hex(),
		StartByte: cl.Span.Start,
		EndByte:   cl.Span.End,
		Line:      pos.Line,
		Col:       pos.Col,
	}, nil
}

// ScopeAt parses path and returns the curly block enclosing the caret at the
// 0-based (line, col), or nil when the caret is not inside a block.
func (e *Engine) ScopeAt(ctx context.Context, path string, line, col int) (*Block, error) {
	doc, err := e.parseLive(ctx, path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	leaf := doc.LeafAt(doc.Lines().Offset(line, col))
	c := e.NewClassifier(nesting.FixedStamp(0))
	sc, ok := c.FindScope(leaf)
	if !ok {
		return nil, nil
	}
	return blockRow(0, doc.Lines(), sc), nil
}

// fileRecord builds the row inserted for a file about to be reclassified.
func fileRecord(path, lang string, content []byte) *store.File {
	return &store.File{
		Path:        path,
		Language:    lang,
		Hash:        store.HashContent(content),
		LineCount:   bytes.Count(content, []byte{'\n'}) + 1,
		LastIndexed: time.Now(),
	}
}
