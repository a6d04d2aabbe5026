package store

import "sync"

// BatchedStore buffers bracket and block inserts in memory using fake
// (negative) IDs. It implements DataStore so the classification walk can
// write to it without knowing whether it's hitting SQLite or a buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type BatchedStore struct {
	mu sync.Mutex

	FileID   int64
	Brackets []Bracket
	Blocks   []Block

	// Hash is written to the file row by CommitBatch.
	Hash string

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore whose rows belong to fileID.
func NewBatchedStore(fileID int64) *BatchedStore {
	return &BatchedStore{
		FileID:     fileID,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertBracket(br *Bracket) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	br.ID = fakeID
	b.Brackets = append(b.Brackets, *br)
	return fakeID, nil
}

func (b *BatchedStore) InsertBlock(bl *Block) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	bl.ID = fakeID
	b.Blocks = append(b.Blocks, *bl)
	return fakeID, nil
}

// Len returns the number of buffered rows.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Brackets) + len(b.Blocks)
}
