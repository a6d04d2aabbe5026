package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jward/rainbow"
	"github.com/jward/rainbow/nesting"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Follow a file and redraw the scope guide as the caret moves",
	Long: `Opens a file in an in-process editor and reads caret positions from stdin,
one "line col" pair per line (0-based). After the caret settles the guide
line of the enclosing block is redrawn. The file is reparsed whenever it
changes on disk. Enter "q" to quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagTabWidth, "tab-width", 4, "columns per tab stop")
}

func runWatch(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	cfg, err := loadConfig(findRepoRoot(cwd))
	if err != nil {
		return err
	}
	engine, err := openEngineAt(false)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := newWatchSession(ctx, engine, file, cfg.DebounceDelay(), os.Stdout)
	if err != nil {
		return err
	}
	defer w.Close()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()
	// Editors often save by renaming over the file, so watch its directory.
	if err := fsw.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watching %s: %w", file, err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	w.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == file && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				w.FileChanged()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "q" {
				return nil
			}
			l, c, err := parseCaret(strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				continue
			}
			w.MoveCaret(l, c)
		}
	}
}

// watchSession ties one FileEditor to a ScopeHighlighter and redraws the
// file after every guide update or reload.
type watchSession struct {
	ctx        context.Context
	editors    *rainbow.Editors
	editor     *rainbow.FileEditor
	sink       *paintSink
	highlight  *nesting.ScopeHighlighter
	classifier *nesting.Classifier
	reload     *nesting.Debouncer
	out        io.Writer
	logger     *slog.Logger

	mu        sync.Mutex
	line, col int
}

func newWatchSession(ctx context.Context, engine *rainbow.Engine, file string, delay time.Duration, out io.Writer) (*watchSession, error) {
	w := &watchSession{
		ctx:     ctx,
		editors: rainbow.NewEditors(),
		sink:    newPaintSink(),
		out:     out,
		logger:  newLogger(),
	}
	ed, err := w.editors.Open(ctx, file, w.sink)
	if err != nil {
		return nil, err
	}
	w.editor = ed

	sched := redrawScheduler{inner: nesting.TimerScheduler{}, after: w.redraw}
	w.highlight = engine.NewScopeHighlighter(w.editors,
		nesting.WithDebounceDelay(delay),
		nesting.WithScheduler(sched),
	)
	w.highlight.Install(ed)
	w.classifier = engine.NewClassifier(w.editors.Stamps())
	w.reload = nesting.NewDebouncer(nesting.TimerScheduler{}, delay)
	return w, nil
}

// MoveCaret schedules a guide update for the 0-based position.
func (w *watchSession) MoveCaret(line, col int) {
	w.mu.Lock()
	w.line, w.col = line, col
	w.mu.Unlock()
	w.caretMoved()
}

func (w *watchSession) caretMoved() {
	doc := w.editor.Document()
	if doc == nil {
		return
	}
	w.mu.Lock()
	offset := doc.Lines().Offset(w.line, w.col)
	w.mu.Unlock()
	w.highlight.CaretMoved(nesting.CaretEvent{Editor: w.editor, Offset: offset})
}

// FileChanged marks the tree stale and reparses once writes settle.
func (w *watchSession) FileChanged() {
	w.editor.MarkDirty()
	w.reload.Trigger(func() {
		if err := w.editor.Reload(w.ctx); err != nil {
			w.logger.Warn("reload failed", "path", w.editor.Path(), "error", err)
			return
		}
		w.redraw()
		w.caretMoved()
	})
}

func (w *watchSession) redraw() {
	doc := w.editor.Document()
	if doc == nil {
		return
	}
	s := newScreen(doc.Lines(), flagTabWidth)
	colorBrackets(s, w.classifier, doc.Root())
	w.sink.paint(s)

	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.out.(*os.File); ok && f == os.Stdout {
		fmt.Fprint(w.out, "\x1b[H\x1b[2J")
	}
	_ = s.render(w.out)
	fmt.Fprintf(w.out, "-- %s  caret %d:%d\n", filepath.Base(w.editor.Path()), w.line, w.col)
}

// Close stops pending work and disposes the editor.
func (w *watchSession) Close() {
	w.reload.Cancel()
	w.highlight.Close()
	w.editors.Close(w.editor)
}

// redrawScheduler runs after once each scheduled task completes.
type redrawScheduler struct {
	inner nesting.Scheduler
	after func()
}

func (s redrawScheduler) ScheduleAfter(d time.Duration, task func()) nesting.Cancellable {
	return s.inner.ScheduleAfter(d, func() {
		task()
		s.after()
	})
}
