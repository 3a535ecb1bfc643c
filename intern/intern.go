// Package intern implements spec §4.1's string interner: every NeTEx id
// string is collapsed to a stable 64-bit handle via a fast non-cryptographic
// hash, so downstream stages never hold the original id strings alive.
package intern

import "github.com/cespare/xxhash/v2"

// Handle returns the 64-bit handle for a NeTEx id string. Identical input
// strings always produce the same handle, across documents and runs; no
// reverse mapping is kept.
func Handle(s string) uint64 {
	return xxhash.Sum64String(s)
}
