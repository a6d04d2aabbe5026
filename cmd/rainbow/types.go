package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIFile is a JSON-friendly file representation.
type CLIFile struct {
	ID           int64  `json:"id"`
	Path         string `json:"path"`
	Language     string `json:"language"`
	LineCount    int    `json:"line_count"`
	BracketCount int    `json:"bracket_count"`
}

// CLIBracket is a JSON-friendly classified bracket.
type CLIBracket struct {
	File    string `json:"file,omitempty"`
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Opening bool   `json:"opening"`
	Depth   int    `json:"depth"`
	Color   string `json:"color"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
}

// CLIBlock is a JSON-friendly curly block with its guide color.
type CLIBlock struct {
	File      string `json:"file,omitempty"`
	Depth     int    `json:"depth"`
	Color     string `json:"color"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// CLILanguageStats is per-language totals.
type CLILanguageStats struct {
	Language     string `json:"language"`
	FileCount    int    `json:"file_count"`
	BracketCount int    `json:"bracket_count"`
}

// CLIDepthCount is one histogram bucket.
type CLIDepthCount struct {
	Kind  string `json:"kind"`
	Depth int    `json:"depth"`
	Count int    `json:"count"`
}

// CLISummary is a JSON-friendly index summary.
type CLISummary struct {
	FileCount    int                `json:"file_count"`
	BracketCount int                `json:"bracket_count"`
	BlockCount   int                `json:"block_count"`
	MaxDepth     int                `json:"max_depth"`
	Languages    []CLILanguageStats `json:"languages"`
	Depths       []CLIDepthCount    `json:"depths"`
}
