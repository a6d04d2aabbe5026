package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/rainbow"
)

var (
	flagLive     bool
	flagLanguage string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the bracket index",
	Long:  "Run queries against an indexed codebase. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.PersistentFlags().BoolVar(&flagLive, "live", false, "parse the file from disk instead of reading the index")

	filesCmd.Flags().StringVar(&flagLanguage, "language", "", "only files of this language")

	queryCmd.AddCommand(filesCmd)
	queryCmd.AddCommand(summaryCmd)
	queryCmd.AddCommand(bracketsCmd)
	queryCmd.AddCommand(blocksCmd)
	queryCmd.AddCommand(bracketAtCmd)
	queryCmd.AddCommand(scopeAtCmd)
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List indexed files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return outputError("files", err)
		}
		defer engine.Close()

		var files []*rainbow.File
		if flagLanguage != "" {
			files, err = engine.Query().FilesByLanguage(flagLanguage)
		} else {
			files, err = engine.Query().Files()
		}
		if err != nil {
			return outputError("files", err)
		}
		out := make([]CLIFile, 0, len(files))
		for _, f := range files {
			out = append(out, fileToCLI(f))
		}
		return outputResult(CLIResult{Command: "files", Results: out})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-language totals and the depth histogram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return outputError("summary", err)
		}
		defer engine.Close()

		s, err := engine.Query().Summary()
		if err != nil {
			return outputError("summary", err)
		}
		return outputResult(CLIResult{Command: "summary", Results: summaryToCLI(s)})
	},
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets <file>",
	Short: "List the classified brackets of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := resolveFilePath(args[0])
		if err != nil {
			return outputError("brackets", err)
		}
		engine, err := openEngine()
		if err != nil {
			return outputError("brackets", err)
		}
		defer engine.Close()

		brackets, err := engine.Query().Brackets(file)
		if err != nil {
			return outputError("brackets", err)
		}
		out := make([]CLIBracket, 0, len(brackets))
		for _, b := range brackets {
			out = append(out, bracketToCLI(b, file))
		}
		return outputResult(CLIResult{Command: "brackets", Results: out})
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks <file>",
	Short: "List the curly blocks of a file with their guide colors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := resolveFilePath(args[0])
		if err != nil {
			return outputError("blocks", err)
		}
		engine, err := openEngine()
		if err != nil {
			return outputError("blocks", err)
		}
		defer engine.Close()

		blocks, err := engine.Query().Blocks(file)
		if err != nil {
			return outputError("blocks", err)
		}
		out := make([]CLIBlock, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, blockToCLI(b, file))
		}
		return outputResult(CLIResult{Command: "blocks", Results: out})
	},
}

var bracketAtCmd = &cobra.Command{
	Use:   "bracket-at <file> <line> <col>",
	Short: "Classify the bracket at a position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, line, col, err := parsePositionArgs(args)
		if err != nil {
			return outputError("bracket-at", err)
		}
		engine, err := openEngine()
		if err != nil {
			return outputError("bracket-at", err)
		}
		defer engine.Close()

		var b *rainbow.Bracket
		if flagLive {
			b, err = engine.ClassifyAt(context.Background(), file, line, col)
		} else {
			b, err = engine.Query().BracketAt(file, line, col)
		}
		if err != nil {
			return outputError("bracket-at", err)
		}
		if b == nil {
			return outputResult(CLIResult{Command: "bracket-at", Results: nil})
		}
		return outputResult(CLIResult{Command: "bracket-at", Results: bracketToCLI(b, file)})
	},
}

var scopeAtCmd = &cobra.Command{
	Use:   "scope-at <file> <line> <col>",
	Short: "Find the innermost curly block enclosing a position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, line, col, err := parsePositionArgs(args)
		if err != nil {
			return outputError("scope-at", err)
		}
		engine, err := openEngine()
		if err != nil {
			return outputError("scope-at", err)
		}
		defer engine.Close()

		var b *rainbow.Block
		if flagLive {
			b, err = engine.ScopeAt(context.Background(), file, line, col)
		} else {
			b, err = engine.Query().BlockAt(file, line, col)
		}
		if err != nil {
			return outputError("scope-at", err)
		}
		if b == nil {
			return outputResult(CLIResult{Command: "scope-at", Results: nil})
		}
		return outputResult(CLIResult{Command: "scope-at", Results: blockToCLI(b, file)})
	},
}

// --- Helpers ---

// openEngine opens the Engine over the --db path (or default) with the
// repo's settings applied. The database must already exist.
func openEngine() (*rainbow.Engine, error) {
	return openEngineAt(true)
}

// openEngineAt opens the Engine, creating the database when requireIndex
// is false.
func openEngineAt(requireIndex bool) (*rainbow.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		if requireIndex {
			return nil, fmt.Errorf("database not found: %s (run 'rainbow index' first)", dbPath)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
		}
	}

	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, err
	}
	return rainbow.New(dbPath, opts...)
}

// resolveFilePath converts a file argument to an absolute path.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// parsePositionArgs parses <file> <line> <col>.
func parsePositionArgs(args []string) (string, int, int, error) {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return "", 0, 0, err
	}
	line, err := parseIntArg(args[1], "line")
	if err != nil {
		return "", 0, 0, err
	}
	col, err := parseIntArg(args[2], "col")
	if err != nil {
		return "", 0, 0, err
	}
	return file, line, col, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

func fileToCLI(f *rainbow.File) CLIFile {
	return CLIFile{
		ID:           f.ID,
		Path:         f.Path,
		Language:     f.Language,
		LineCount:    f.LineCount,
		BracketCount: f.BracketCount,
	}
}

func bracketToCLI(b *rainbow.Bracket, file string) CLIBracket {
	return CLIBracket{
		File:    file,
		Kind:    b.Kind,
		Text:    b.Text,
		Opening: b.Opening,
		Depth:   b.Depth,
		Color:   b.Color,
		Line:    b.Line,
		Col:     b.Col,
	}
}

func blockToCLI(b *rainbow.Block, file string) CLIBlock {
	return CLIBlock{
		File:      file,
		Depth:     b.Depth,
		Color:     b.Color,
		StartLine: b.StartLine,
		StartCol:  b.StartCol,
		EndLine:   b.EndLine,
		EndCol:    b.EndCol,
	}
}

func summaryToCLI(s *rainbow.Summary) CLISummary {
	out := CLISummary{
		FileCount:    s.Files,
		BracketCount: s.Brackets,
		BlockCount:   s.Blocks,
		MaxDepth:     s.MaxDepth,
		Languages:    make([]CLILanguageStats, 0, len(s.Languages)),
		Depths:       make([]CLIDepthCount, 0, len(s.Depths)),
	}
	for _, l := range s.Languages {
		out.Languages = append(out.Languages, CLILanguageStats{
			Language:     l.Language,
			FileCount:    l.Files,
			BracketCount: l.Brackets,
		})
	}
	for _, d := range s.Depths {
		out.Depths = append(out.Depths, CLIDepthCount{Kind: d.Kind, Depth: d.Depth, Count: d.Count})
	}
	return out
}
