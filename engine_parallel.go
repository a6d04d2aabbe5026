package rainbow

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/jward/rainbow/internal/store"
	"github.com/jward/rainbow/internal/syntax"
)

// workItem holds everything a parallel classification worker needs.
type workItem struct {
	path    string
	lang    string
	content []byte
	hash    string
	fileID  int64
	batch   *store.BatchedStore
}

// IndexFilesParallel indexes files using a three-phase parallel pipeline:
//
//	Phase A (serial):  Hash check, delete old data, prepare file records.
//	Phase B (parallel): Parse and classify via worker pool.
//	Phase C (serial):  Commit batches to SQLite.
func (e *Engine) IndexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: Serial file preparation ----
	var items []workItem
	for _, path := range paths {
		item, skip, err := e.prepareFile(ctx, path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if skip {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil
	}

	// ---- Phase B: Parallel classification ----
	numWorkers := max(min(runtime.NumCPU(), len(items)), 1)

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item workItem
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each item gets its own parser and classifier; the BatchedStore
			// per item handles write isolation.
			for item := range workCh {
				err := e.classifyFile(ctx, item)
				resultCh <- result{item: item, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("classify %s: %w", res.item.path, res.err))
			continue
		}
		if err := e.store.CommitBatch(res.item.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
			continue
		}
		e.logger.Debug("indexed file", "path", res.item.path, "language", res.item.lang,
			"brackets", len(res.item.batch.Brackets))
	}

	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// prepareFile does Phase A work for a single file: hash check, cleanup, file record.
// Returns (item, skip, error). skip=true means the file is unchanged or unsupported.
func (e *Engine) prepareFile(_ context.Context, path string) (workItem, bool, error) {
	lang, ok := syntax.LanguageForFile(path)
	if !ok {
		return workItem{}, true, nil
	}
	if e.languages != nil && !e.languages[lang] {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	rec := fileRecord(path, lang, content)

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == rec.Hash {
		return workItem{}, true, nil // unchanged
	}

	if existing != nil {
		if err := e.store.DeleteFileData(existing.ID); err != nil {
			return workItem{}, false, fmt.Errorf("delete old data: %w", err)
		}
	}

	// The hash is recorded only once classification is stored.
	hash := rec.Hash
	rec.Hash = ""
	fileID, err := e.store.InsertFile(rec)
	if err != nil {
		return workItem{}, false, fmt.Errorf("insert file: %w", err)
	}

	batch := store.NewBatchedStore(fileID)
	batch.Hash = hash
	return workItem{
		path:    path,
		lang:    lang,
		content: content,
		hash:    hash,
		fileID:  fileID,
		batch:   batch,
	}, false, nil
}

// classifyFile parses one file and buffers its rows in the item's batch.
func (e *Engine) classifyFile(ctx context.Context, item workItem) error {
	doc, err := syntax.Parse(ctx, item.content, item.lang)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer doc.Close()

	if _, err := e.classifyDocument(doc, item.fileID, item.batch); err != nil {
		return err
	}
	return nil
}
