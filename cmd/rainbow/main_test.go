package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/rainbow"
	"github.com/jward/rainbow/internal/syntax"
	"github.com/jward/rainbow/nesting"
)

const goSource = "package main\n\nfunc f() {\n\tg(a[0])\n\tif ok {\n\t\th()\n\t}\n}\n"

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.ErrorContains(t, validateFormat("yaml"), "json or text")
}

func TestParseCaret(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in        string
		line, col int
		wantErr   bool
	}{
		{"5:2", 5, 2, false},
		{"5 2", 5, 2, false},
		{"0:0", 0, 0, false},
		{"5", 0, 0, true},
		{"a:2", 0, 0, true},
		{"-1:2", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			line, col, err := parseCaret(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestWriteResultText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := writeResultText(&buf, CLIResult{Results: CLISummary{
		FileCount:    1,
		BracketCount: 12,
		BlockCount:   2,
		MaxDepth:     2,
		Languages:    []CLILanguageStats{{Language: "go", FileCount: 1, BracketCount: 12}},
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Brackets: 12")
	assert.Contains(t, buf.String(), "go: 1 files, 12 brackets")

	buf.Reset()
	require.NoError(t, writeResultText(&buf, CLIResult{Results: CLIBlock{Depth: 1, Color: "#179fff", StartLine: 4, StartCol: 7, EndLine: 6, EndCol: 1}}))
	assert.Contains(t, buf.String(), "4:7")
	assert.Contains(t, buf.String(), "#179fff")

	buf.Reset()
	require.NoError(t, writeResultText(&buf, CLIResult{Results: nil}))
	assert.Empty(t, buf.String())

	assert.Error(t, writeResultText(&buf, CLIResult{Results: 42}))
}

func TestScreen_BracketsAndGuide(t *testing.T) {
	t.Parallel()
	doc, err := syntax.Parse(context.Background(), []byte(goSource), "go")
	require.NoError(t, err)
	defer doc.Close()

	c := nesting.NewClassifier(nesting.FixedStamp(0))
	s := newScreen(doc.Lines(), 4)
	assert.Equal(t, 12, colorBrackets(s, c, doc.Root()))

	// "[" on line 3 sits after one tab and "g(a".
	assert.True(t, s.rows[3][7].colored)
	assert.Equal(t, nesting.Orange, s.rows[3][7].color)

	sink := newPaintSink()
	scope, ok := c.FindScope(doc.LeafAt(doc.Lines().Offset(5, 2)))
	require.True(t, ok)
	h := sink.AddRangeHighlight(scope.Span, nesting.GuidePainter(scope.Span, scope.Color))
	sink.paint(s)

	// The if block starts on line 4 (indent one tab) and closes on line 6,
	// so only line 5 carries the guide, at column 4.
	assert.Equal(t, guideRune, s.rows[5][4].ch)
	assert.Equal(t, nesting.Blue, s.rows[5][4].color)
	assert.Equal(t, "i", s.rows[4][4].ch, "the guide starts below the opening line")

	var buf bytes.Buffer
	require.NoError(t, s.render(&buf))
	assert.Contains(t, buf.String(), guideRune)
	assert.Equal(t, 8, strings.Count(buf.String(), "\n"))

	h.Remove()
	assert.Equal(t, 0, sink.Len())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchSession(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte(goSource), 0o644))

	engine, err := rainbow.New(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	defer engine.Close()

	out := &lockedBuffer{}
	w, err := newWatchSession(context.Background(), engine, file, 5*time.Millisecond, out)
	require.NoError(t, err)
	defer w.Close()

	w.MoveCaret(5, 2)
	require.Eventually(t, func() bool {
		g, ok := w.highlight.Active(w.editor)
		return ok && g.Color == nesting.Blue
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, w.sink.Len())
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), guideRune)
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(file, []byte("package main\n\nvar x = 1\n"), 0o644))
	w.FileChanged()
	require.Eventually(t, func() bool {
		_, ok := w.highlight.Active(w.editor)
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, w.sink.Len())
}
