package store

import "time"

// File is one indexed source file.
type File struct {
	ID           int64
	Path         string
	Language     string
	Hash         string
	LineCount    int
	BracketCount int
	LastIndexed  time.Time
}

// Bracket is one classified delimiter token. Line and Col are 0-based and
// Col counts bytes.
type Bracket struct {
	ID        int64
	FileID    int64
	Kind      string
	Text      string
	Opening   bool
	Depth     int
	Color     string
	StartByte int
	EndByte   int
	Line      int
	Col       int
}

// Block is one curly block with its guide color. EndLine/EndCol locate the
// closing brace.
type Block struct {
	ID        int64
	FileID    int64
	Depth     int
	Color     string
	StartByte int
	EndByte   int
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// DepthCount is one row of a per-kind, per-depth histogram.
type DepthCount struct {
	Kind  string
	Depth int
	Count int
}
