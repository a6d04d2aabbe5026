package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/rainbow/internal/syntax"
	"github.com/jward/rainbow/nesting"
)

var (
	flagCaret    string
	flagTabWidth int
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a file with depth-colored brackets",
	Long:  "Parses a file and prints it with every bracket colored by nesting depth. With --caret line:col the guide line of the enclosing block is drawn too.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&flagCaret, "caret", "", "0-based line:col whose enclosing block gets a guide line")
	showCmd.Flags().IntVar(&flagTabWidth, "tab-width", 4, "columns per tab stop")
}

func runShow(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return err
	}
	engine, err := openEngineAt(false)
	if err != nil {
		return err
	}
	defer engine.Close()

	doc, err := syntax.ParseFile(context.Background(), file)
	if err != nil {
		return err
	}
	defer doc.Close()

	c := engine.NewClassifier(nesting.FixedStamp(0))
	s := newScreen(doc.Lines(), flagTabWidth)
	colorBrackets(s, c, doc.Root())

	if flagCaret != "" {
		line, col, err := parseCaret(flagCaret)
		if err != nil {
			return err
		}
		sink := newPaintSink()
		if scope, ok := c.FindScope(doc.LeafAt(doc.Lines().Offset(line, col))); ok {
			sink.AddRangeHighlight(scope.Span, nesting.GuidePainter(scope.Span, scope.Color))
		}
		sink.paint(s)
	}
	return s.render(os.Stdout)
}

// parseCaret parses "line:col" or "line col".
func parseCaret(v string) (int, int, error) {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ':' || r == ' ' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid caret %q: want line:col", v)
	}
	line, err := parseIntArg(parts[0], "line")
	if err != nil {
		return 0, 0, err
	}
	col, err := parseIntArg(parts[1], "col")
	if err != nil {
		return 0, 0, err
	}
	return line, col, nil
}
