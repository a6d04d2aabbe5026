package store

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// HashContent returns the hex blake2b-256 digest of a file's bytes. Files
// whose stored hash matches are skipped on reindex.
func HashContent(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashSettings digests named settings (palette colors, scan limits) so that
// a change to any of them invalidates every stored classification. Keys are
// sorted; the result does not depend on map order.
func HashSettings(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, _ := blake2b.New256(nil)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(settings[k]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
