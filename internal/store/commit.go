package store

import "fmt"

// CommitBatch inserts all buffered rows from a BatchedStore into SQLite
// within a single transaction, replacing whatever the file had before, and
// records the file's bracket count and content hash. Rows are written with the batch's file
// ID; their fake IDs are discarded.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM brackets WHERE file_id = ?",
		"DELETE FROM blocks WHERE file_id = ?",
	} {
		if _, err := tx.Exec(q, batch.FileID); err != nil {
			return fmt.Errorf("commit batch: clear file %d: %w", batch.FileID, err)
		}
	}

	for _, br := range batch.Brackets {
		br.FileID = batch.FileID
		if _, err := insertBracket(tx, &br); err != nil {
			return fmt.Errorf("commit batch: bracket %q at %d:%d: %w", br.Text, br.Line, br.Col, err)
		}
	}

	for _, bl := range batch.Blocks {
		bl.FileID = batch.FileID
		if _, err := insertBlock(tx, &bl); err != nil {
			return fmt.Errorf("commit batch: block at %d:%d: %w", bl.StartLine, bl.StartCol, err)
		}
	}

	if _, err := tx.Exec("UPDATE files SET bracket_count = ?, hash = ? WHERE id = ?", len(batch.Brackets), batch.Hash, batch.FileID); err != nil {
		return fmt.Errorf("commit batch: mark indexed: %w", err)
	}

	return tx.Commit()
}
