package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatFilesText formats CLIFile results as aligned columns.
func formatFilesText(w io.Writer, files []CLIFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tLANGUAGE\tLINES\tBRACKETS")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", f.ID, f.Path, f.Language, f.LineCount, f.BracketCount)
	}
	tw.Flush()
}

// formatBracketsText formats CLIBracket results as aligned columns.
func formatBracketsText(w io.Writer, brackets []CLIBracket) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tCOL\tTEXT\tKIND\tDEPTH\tCOLOR")
	for _, b := range brackets {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n", b.Line, b.Col, b.Text, b.Kind, b.Depth, b.Color)
	}
	tw.Flush()
}

// formatBlocksText formats CLIBlock results as aligned columns.
func formatBlocksText(w io.Writer, blocks []CLIBlock) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tDEPTH\tCOLOR")
	for _, b := range blocks {
		fmt.Fprintf(tw, "%d:%d\t%d:%d\t%d\t%s\n", b.StartLine, b.StartCol, b.EndLine, b.EndCol, b.Depth, b.Color)
	}
	tw.Flush()
}

// formatSummaryText formats CLISummary as readable text.
func formatSummaryText(w io.Writer, s CLISummary) {
	fmt.Fprintln(w, "Index Summary")
	fmt.Fprintln(w, "=============")
	fmt.Fprintf(w, "Files: %d\n", s.FileCount)
	fmt.Fprintf(w, "Brackets: %d\n", s.BracketCount)
	fmt.Fprintf(w, "Blocks: %d\n", s.BlockCount)
	fmt.Fprintf(w, "Max depth: %d\n", s.MaxDepth)

	if len(s.Languages) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Languages:")
		for _, lang := range s.Languages {
			fmt.Fprintf(w, "  %s: %d files, %d brackets\n", lang.Language, lang.FileCount, lang.BracketCount)
		}
	}

	if len(s.Depths) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Depths:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range s.Depths {
			fmt.Fprintf(tw, "  %s\t%d\t%d\n", d.Kind, d.Depth, d.Count)
		}
		tw.Flush()
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	return writeResultText(os.Stdout, result)
}

func writeResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIFile:
		formatFilesText(w, v)
	case []CLIBracket:
		formatBracketsText(w, v)
	case CLIBracket:
		formatBracketsText(w, []CLIBracket{v})
	case []CLIBlock:
		formatBlocksText(w, v)
	case CLIBlock:
		formatBlocksText(w, []CLIBlock{v})
	case CLISummary:
		formatSummaryText(w, v)
	case nil:
		// No output for nil results (e.g., bracket-at with no match).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
