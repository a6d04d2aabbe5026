package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

const fileColumns = "id, path, language, hash, line_count, bracket_count, last_indexed"

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, line_count, bracket_count, last_indexed) VALUES (?, ?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LineCount, f.BracketCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

func scanFile(scanner rowScanner) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var indexed sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.Language, &hash, &f.LineCount, &f.BracketCount, &indexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.LastIndexed = indexed.Time
	return f, nil
}

// FileByPath returns the file record for path, or nil if it was never indexed.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileColumns+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) queryFiles(query string, args ...any) ([]*File, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Files returns every indexed file ordered by path.
func (s *Store) Files() ([]*File, error) {
	files, err := s.queryFiles("SELECT " + fileColumns + " FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	return files, nil
}

// FilesByLanguage returns the indexed files of one language ordered by path.
func (s *Store) FilesByLanguage(language string) ([]*File, error) {
	files, err := s.queryFiles("SELECT "+fileColumns+" FROM files WHERE language = ? ORDER BY path", language)
	if err != nil {
		return nil, fmt.Errorf("files by language: %w", err)
	}
	return files, nil
}

// MarkIndexed records a finished classification of a file: its bracket
// count and the hash of the content that was classified. Until then the
// file row carries no hash, so an interrupted run is redone next time.
func (s *Store) MarkIndexed(fileID int64, bracketCount int, hash string) error {
	if _, err := s.db.Exec("UPDATE files SET bracket_count = ?, hash = ? WHERE id = ?", bracketCount, hash, fileID); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

// --- Bracket operations ---

const bracketColumns = "id, file_id, kind, text, opening, depth, color, start_byte, end_byte, line, col"

func (s *Store) InsertBracket(b *Bracket) (int64, error) {
	id, err := insertBracket(s.db, b)
	if err != nil {
		return 0, fmt.Errorf("insert bracket: %w", err)
	}
	b.ID = id
	return id, nil
}

func scanBracket(scanner rowScanner) (*Bracket, error) {
	b := &Bracket{}
	err := scanner.Scan(&b.ID, &b.FileID, &b.Kind, &b.Text, &b.Opening, &b.Depth, &b.Color,
		&b.StartByte, &b.EndByte, &b.Line, &b.Col)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) queryBrackets(query string, args ...any) ([]*Bracket, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Bracket
	for rows.Next() {
		b, err := scanBracket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bracket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BracketsByFile returns a file's brackets in document order.
func (s *Store) BracketsByFile(fileID int64) ([]*Bracket, error) {
	out, err := s.queryBrackets("SELECT "+bracketColumns+" FROM brackets WHERE file_id = ? ORDER BY start_byte", fileID)
	if err != nil {
		return nil, fmt.Errorf("brackets by file: %w", err)
	}
	return out, nil
}

// BracketAt returns the bracket starting at (line, col), or nil.
func (s *Store) BracketAt(fileID int64, line, col int) (*Bracket, error) {
	b, err := scanBracket(s.db.QueryRow(
		"SELECT "+bracketColumns+" FROM brackets WHERE file_id = ? AND line = ? AND col = ?",
		fileID, line, col,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bracket at: %w", err)
	}
	return b, nil
}

// DepthHistogram counts brackets per (kind, depth) across all files.
func (s *Store) DepthHistogram() ([]DepthCount, error) {
	rows, err := s.db.Query(
		"SELECT kind, depth, COUNT(*) FROM brackets GROUP BY kind, depth ORDER BY kind, depth",
	)
	if err != nil {
		return nil, fmt.Errorf("depth histogram: %w", err)
	}
	defer rows.Close()
	var out []DepthCount
	for rows.Next() {
		var dc DepthCount
		if err := rows.Scan(&dc.Kind, &dc.Depth, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan depth count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// --- Block operations ---

const blockColumns = "id, file_id, depth, color, start_byte, end_byte, start_line, start_col, end_line, end_col"

func (s *Store) InsertBlock(b *Block) (int64, error) {
	id, err := insertBlock(s.db, b)
	if err != nil {
		return 0, fmt.Errorf("insert block: %w", err)
	}
	b.ID = id
	return id, nil
}

func scanBlock(scanner rowScanner) (*Block, error) {
	b := &Block{}
	err := scanner.Scan(&b.ID, &b.FileID, &b.Depth, &b.Color, &b.StartByte, &b.EndByte,
		&b.StartLine, &b.StartCol, &b.EndLine, &b.EndCol)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) queryBlocks(query string, args ...any) ([]*Block, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BlocksByFile returns a file's blocks in document order.
func (s *Store) BlocksByFile(fileID int64) ([]*Block, error) {
	out, err := s.queryBlocks("SELECT "+blockColumns+" FROM blocks WHERE file_id = ? ORDER BY start_byte", fileID)
	if err != nil {
		return nil, fmt.Errorf("blocks by file: %w", err)
	}
	return out, nil
}

// InnermostBlock returns the smallest block containing the 0-based position
// (line, col), or nil. A block contains its own braces.
func (s *Store) InnermostBlock(fileID int64, line, col int) (*Block, error) {
	b, err := scanBlock(s.db.QueryRow(
		"SELECT "+blockColumns+` FROM blocks
		 WHERE file_id = ?
		   AND (start_line < ? OR (start_line = ? AND start_col <= ?))
		   AND (end_line > ? OR (end_line = ? AND end_col >= ?))
		 ORDER BY end_byte - start_byte LIMIT 1`,
		fileID,
		line, line, col,
		line, line, col,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("innermost block: %w", err)
	}
	return b, nil
}

// BlockCount returns the number of stored blocks across all files.
func (s *Store) BlockCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM blocks").Scan(&n); err != nil {
		return 0, fmt.Errorf("block count: %w", err)
	}
	return n, nil
}

// --- Insert helpers shared by Store and CommitBatch ---

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertBracket(ex execer, b *Bracket) (int64, error) {
	res, err := ex.Exec(
		`INSERT INTO brackets (file_id, kind, text, opening, depth, color, start_byte, end_byte, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.FileID, b.Kind, b.Text, b.Opening, b.Depth, b.Color, b.StartByte, b.EndByte, b.Line, b.Col,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertBlock(ex execer, b *Block) (int64, error) {
	res, err := ex.Exec(
		`INSERT INTO blocks (file_id, depth, color, start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.FileID, b.Depth, b.Color, b.StartByte, b.EndByte, b.StartLine, b.StartCol, b.EndLine, b.EndCol,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
