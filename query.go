package rainbow

import (
	"fmt"

	"github.com/jward/rainbow/internal/store"
)

// QueryBuilder provides read access to stored classifications. Positions
// are 0-based; columns count bytes.
type QueryBuilder struct {
	store *store.Store
}

// Files returns every indexed file ordered by path.
func (q *QueryBuilder) Files() ([]*File, error) {
	files, err := q.store.Files()
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	return files, nil
}

// FilesByLanguage returns the indexed files of one language ordered by path.
func (q *QueryBuilder) FilesByLanguage(language string) ([]*File, error) {
	files, err := q.store.FilesByLanguage(language)
	if err != nil {
		return nil, fmt.Errorf("files by language: %w", err)
	}
	return files, nil
}

// file looks up a file record; nil when the path was never indexed.
func (q *QueryBuilder) file(path string) (*File, error) {
	f, err := q.store.FileByPath(path)
	if err != nil {
		return nil, fmt.Errorf("lookup file: %w", err)
	}
	return f, nil
}

// Brackets returns the classified brackets of a file in document order.
func (q *QueryBuilder) Brackets(path string) ([]*Bracket, error) {
	f, err := q.file(path)
	if err != nil || f == nil {
		return nil, err
	}
	out, err := q.store.BracketsByFile(f.ID)
	if err != nil {
		return nil, fmt.Errorf("brackets: %w", err)
	}
	return out, nil
}

// BracketAt returns the bracket starting at (line, col), or nil.
func (q *QueryBuilder) BracketAt(path string, line, col int) (*Bracket, error) {
	f, err := q.file(path)
	if err != nil || f == nil {
		return nil, err
	}
	b, err := q.store.BracketAt(f.ID, line, col)
	if err != nil {
		return nil, fmt.Errorf("bracket at: %w", err)
	}
	return b, nil
}

// Blocks returns the curly blocks of a file in document order.
func (q *QueryBuilder) Blocks(path string) ([]*Block, error) {
	f, err := q.file(path)
	if err != nil || f == nil {
		return nil, err
	}
	out, err := q.store.BlocksByFile(f.ID)
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	return out, nil
}

// BlockAt returns the innermost stored block containing (line, col), or nil.
// Unlike Engine.ScopeAt this includes a block whose own brace is at the
// position.
func (q *QueryBuilder) BlockAt(path string, line, col int) (*Block, error) {
	f, err := q.file(path)
	if err != nil || f == nil {
		return nil, err
	}
	b, err := q.store.InnermostBlock(f.ID, line, col)
	if err != nil {
		return nil, fmt.Errorf("block at: %w", err)
	}
	return b, nil
}

// LanguageStats counts indexed files and brackets for one language.
type LanguageStats struct {
	Language string
	Files    int
	Brackets int
}

// Summary is an overview of the whole index.
type Summary struct {
	Files     int
	Brackets  int
	Blocks    int
	MaxDepth  int
	Languages []LanguageStats
	Depths    []DepthCount
}

// Summary returns per-language totals and the per-kind depth histogram.
func (q *QueryBuilder) Summary() (*Summary, error) {
	rows, err := q.store.DB().Query(
		`SELECT language, COUNT(*), COALESCE(SUM(bracket_count), 0)
		 FROM files GROUP BY language ORDER BY language`,
	)
	if err != nil {
		return nil, fmt.Errorf("summary: languages: %w", err)
	}
	defer rows.Close()

	s := &Summary{}
	for rows.Next() {
		var ls LanguageStats
		if err := rows.Scan(&ls.Language, &ls.Files, &ls.Brackets); err != nil {
			return nil, fmt.Errorf("summary: scan language: %w", err)
		}
		s.Files += ls.Files
		s.Brackets += ls.Brackets
		s.Languages = append(s.Languages, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary: rows: %w", err)
	}

	if s.Blocks, err = q.store.BlockCount(); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if s.Depths, err = q.store.DepthHistogram(); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	for _, d := range s.Depths {
		s.MaxDepth = max(s.MaxDepth, d.Depth)
	}
	return s, nil
}
