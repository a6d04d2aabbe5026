package nesting

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Highlight is a drawn range highlight owned by a rendering sink.
type Highlight interface {
	Remove()
}

// RenderSink accepts range highlights with a custom paint callback.
type RenderSink interface {
	AddRangeHighlight(span Span, paint PaintFunc) Highlight
}

// Editor is the host editor instance a ScopeHighlighter decorates.
type Editor interface {
	// ID identifies the editor for the lifetime of the highlighter.
	ID() string
	// Disposed reports whether the editor was torn down.
	Disposed() bool
	// Markup is where the editor's guide lines are drawn.
	Markup() RenderSink
}

// Tree is one committed syntax tree snapshot.
type Tree interface {
	// LeafAt returns the leaf covering offset, or nil.
	LeafAt(offset int) Node
}

// TreeProvider returns the current tree of an editor's document. It reports
// false when no committed tree is available (e.g. uncommitted edits).
type TreeProvider interface {
	Tree(ed Editor) (Tree, bool)
}

// CaretEvent is a caret movement in an editor.
type CaretEvent struct {
	Editor Editor
	Offset int
}

// ActiveGuide is the guide currently shown in an editor.
type ActiveGuide struct {
	Span  Span
	Depth int
	Color Color

	highlight Highlight
}

// ScopeHighlighter maintains at most one scope guide line per editor and
// recomputes it after caret movement settles.
type ScopeHighlighter struct {
	classifier *Classifier
	trees      TreeProvider
	debouncer  *Debouncer
	logger     *slog.Logger

	mu        sync.Mutex
	closed    bool
	installed map[string]Editor
	active    map[string]ActiveGuide
	// pendingID is the editor the debouncer's pending task belongs to.
	pendingID string
	// installs counts installs per editor, so a task scheduled before
	// an uninstall never runs against a later install.
	installs  map[string]uint64
}

// HighlighterOption configures a ScopeHighlighter.
type HighlighterOption func(*highlighterConfig)

type highlighterConfig struct {
	sched  Scheduler
	delay  time.Duration
	logger *slog.Logger
}

// WithScheduler replaces the timer-based scheduler, e.g. with a host event
// loop or a manual clock in tests.
func WithScheduler(s Scheduler) HighlighterOption {
	return func(c *highlighterConfig) {
		c.sched = s
	}
}

// WithDebounceDelay sets the caret quiescence delay.
func WithDebounceDelay(d time.Duration) HighlighterOption {
	return func(c *highlighterConfig) {
		c.delay = d
	}
}

// WithHighlighterLogger sets the logger for debug tracing of updates.
func WithHighlighterLogger(l *slog.Logger) HighlighterOption {
	return func(c *highlighterConfig) {
		c.logger = l
	}
}

// NewScopeHighlighter creates a ScopeHighlighter that reads trees from
// trees and classifies blocks with classifier.
func NewScopeHighlighter(classifier *Classifier, trees TreeProvider, opts ...HighlighterOption) *ScopeHighlighter {
	cfg := highlighterConfig{
		sched: TimerScheduler{},
		delay: DefaultDebounceDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ScopeHighlighter{
		classifier: classifier,
		trees:      trees,
		debouncer:  NewDebouncer(cfg.sched, cfg.delay),
		logger:     cfg.logger,
		installed:  make(map[string]Editor),
		active:     make(map[string]ActiveGuide),
		installs:   make(map[string]uint64),
	}
}

// Install starts tracking caret events of ed. Installing twice is a no-op.
func (h *ScopeHighlighter) Install(ed Editor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if _, ok := h.installed[ed.ID()]; ok {
		return
	}
	h.installed[ed.ID()] = ed
	h.installs[ed.ID()]++
}

// Uninstall stops tracking ed, cancels its pending recomputation and
// removes its guide.
func (h *ScopeHighlighter) Uninstall(ed Editor) {
	h.mu.Lock()
	id := ed.ID()
	delete(h.installed, id)
	h.clearLocked(id)
	pending := h.pendingID == id
	if pending {
		h.pendingID = ""
	}
	h.mu.Unlock()
	if pending {
		h.debouncer.Cancel()
	}
}

// CaretMoved schedules a recomputation of ed's guide for the event offset,
// cancelling any recomputation still pending. Events from editors that are
// not installed are ignored.
func (h *ScopeHighlighter) CaretMoved(ev CaretEvent) {
	id := ev.Editor.ID()
	h.mu.Lock()
	_, ok := h.installed[id]
	closed := h.closed
	install := h.installs[id]
	if ok && !closed {
		h.pendingID = id
	}
	h.mu.Unlock()
	if !ok || closed {
		return
	}
	h.debouncer.Trigger(func() {
		h.mu.Lock()
		stale := h.installs[id] != install
		if h.pendingID == id {
			h.pendingID = ""
		}
		h.mu.Unlock()
		if stale {
			return
		}
		h.Update(ev.Editor, ev.Offset)
	})
}

// Update synchronously recomputes the guide of ed for a caret at offset.
// It aborts silently when the highlighter is closed, the editor is disposed
// or no committed tree is available; otherwise any previous guide is removed
// before the new one (if any) is drawn.
func (h *ScopeHighlighter) Update(ed Editor, offset int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || ed.Disposed() {
		return
	}
	if _, ok := h.installed[ed.ID()]; !ok {
		return
	}

	tree, ok := h.trees.Tree(ed)
	if !ok {
		h.logger.Debug("scope update skipped: no committed tree", "editor", ed.ID())
		return
	}

	h.clearLocked(ed.ID())

	leaf := tree.LeafAt(offset)
	if leaf == nil {
		return
	}
	scope, ok := h.classifier.FindScope(leaf)
	if !ok {
		return
	}

	hl := ed.Markup().AddRangeHighlight(scope.Span, GuidePainter(scope.Span, scope.Color))
	h.active[ed.ID()] = ActiveGuide{
		Span:      scope.Span,
		Depth:     scope.Depth,
		Color:     scope.Color,
		highlight: hl,
	}
	h.logger.Debug("scope guide drawn",
		"editor", ed.ID(), "start", scope.Span.Start, "end", scope.Span.End,
		"depth", scope.Depth, "color", scope.Color.Hex())
}

// Active returns the guide currently drawn in ed.
func (h *ScopeHighlighter) Active(ed Editor) (ActiveGuide, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.active[ed.ID()]
	return g, ok
}

// Close cancels any pending recomputation and removes every guide. Later
// calls are no-ops.
func (h *ScopeHighlighter) Close() {
	h.debouncer.Cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.active {
		h.clearLocked(id)
	}
	clear(h.installed)
}

// clearLocked removes the guide of editor id. Must hold h.mu.
func (h *ScopeHighlighter) clearLocked(id string) {
	g, ok := h.active[id]
	if !ok {
		return
	}
	if g.highlight != nil {
		g.highlight.Remove()
	}
	delete(h.active, id)
}
