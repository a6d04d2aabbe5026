package rainbow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jward/rainbow/internal/syntax"
	"github.com/jward/rainbow/nesting"
)

// FileEditor is an in-process editor over one file on disk. Its committed
// tree is replaced on Reload; between MarkDirty and the next Reload it has
// no committed tree.
type FileEditor struct {
	id     string
	path   string
	sink   nesting.RenderSink
	stamps *nesting.ModTracker

	mu       sync.Mutex
	doc      *syntax.Document
	dirty    bool
	disposed bool
}

var _ nesting.Editor = (*FileEditor)(nil)

func (fe *FileEditor) ID() string { return fe.id }

// Path returns the file the editor shows.
func (fe *FileEditor) Path() string { return fe.path }

func (fe *FileEditor) Markup() nesting.RenderSink { return fe.sink }

func (fe *FileEditor) Disposed() bool {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.disposed
}

// Document returns the committed document, or nil while dirty or disposed.
func (fe *FileEditor) Document() *syntax.Document {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if fe.dirty || fe.disposed {
		return nil
	}
	return fe.doc
}

// MarkDirty records that the file changed and the tree is stale.
func (fe *FileEditor) MarkDirty() {
	fe.mu.Lock()
	fe.dirty = true
	fe.mu.Unlock()
}

// Reload reparses the file and commits the new tree. The previous tree is
// left to the garbage collector because a highlighter may still hold its
// nodes.
func (fe *FileEditor) Reload(ctx context.Context) error {
	doc, err := syntax.ParseFile(ctx, fe.path)
	if err != nil {
		return fmt.Errorf("rainbow: reload %s: %w", fe.path, err)
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if fe.disposed {
		doc.Close()
		return nil
	}
	fe.doc = doc
	fe.dirty = false
	fe.stamps.Bump()
	return nil
}

// Dispose marks the editor torn down. Later caret events are ignored.
func (fe *FileEditor) Dispose() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.disposed = true
	fe.doc = nil
	fe.stamps.Bump()
}

// Editors tracks open FileEditors, provides their trees to a
// ScopeHighlighter, and owns the modification stamps shared with its
// classifier.
type Editors struct {
	stamps nesting.ModTracker

	mu   sync.Mutex
	byID map[string]*FileEditor
}

var _ nesting.TreeProvider = (*Editors)(nil)

// NewEditors returns an empty editor set.
func NewEditors() *Editors {
	return &Editors{byID: make(map[string]*FileEditor)}
}

// Stamps is the modification counter bumped on every reload or dispose.
func (es *Editors) Stamps() nesting.StampSource {
	return &es.stamps
}

// Open parses path and returns an editor drawing into sink.
func (es *Editors) Open(ctx context.Context, path string, sink nesting.RenderSink) (*FileEditor, error) {
	fe := &FileEditor{
		id:     uuid.NewString(),
		path:   path,
		sink:   sink,
		stamps: &es.stamps,
	}
	if err := fe.Reload(ctx); err != nil {
		return nil, err
	}
	es.mu.Lock()
	es.byID[fe.id] = fe
	es.mu.Unlock()
	return fe, nil
}

// Get returns the open editor with the given ID.
func (es *Editors) Get(id string) (*FileEditor, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()
	fe, ok := es.byID[id]
	return fe, ok
}

// Close disposes an editor and forgets it.
func (es *Editors) Close(fe *FileEditor) {
	fe.Dispose()
	es.mu.Lock()
	delete(es.byID, fe.id)
	es.mu.Unlock()
}

// Tree returns the committed tree of an editor opened by this set.
func (es *Editors) Tree(ed nesting.Editor) (nesting.Tree, bool) {
	fe, ok := es.Get(ed.ID())
	if !ok {
		return nil, false
	}
	doc := fe.Document()
	if doc == nil {
		return nil, false
	}
	return doc, true
}

// NewScopeHighlighter returns a highlighter for editors opened by es,
// classifying with the Engine's palettes and limits.
func (e *Engine) NewScopeHighlighter(es *Editors, opts ...nesting.HighlighterOption) *nesting.ScopeHighlighter {
	opts = append([]nesting.HighlighterOption{nesting.WithHighlighterLogger(e.logger)}, opts...)
	return nesting.NewScopeHighlighter(e.NewClassifier(es.Stamps()), es, opts...)
}
