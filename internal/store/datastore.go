package store

// DataStore is the write interface used while classifying a file. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for parallel
// indexing) implement it.
type DataStore interface {
	InsertBracket(b *Bracket) (int64, error)
	InsertBlock(b *Block) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
