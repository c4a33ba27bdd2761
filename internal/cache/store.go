// Package cache persists per-file scan results keyed by path and
// content signature. Caching is an optimization only: every failure
// path degrades to a miss, never to stale records or a failed run.
package cache

import (
	"os"

	"github.com/pathway/fastdeps/internal/pyscan"
)

// Signature captures the file state a cached scan result is valid
// for. Any change to size or mtime invalidates the entry.
type Signature struct {
	Size    int64 `json:"size"`
	MtimeNS int64 `json:"mtimeNs"`
}

// StatSignature derives a Signature from the file at path.
func StatSignature(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Size:    info.Size(),
		MtimeNS: info.ModTime().UnixNano(),
	}, nil
}

// Store maps (path, signature) to a previously computed import-record
// list. Implementations must be safe for concurrent use by scan
// workers. At most one authoritative entry exists per path: storing a
// new signature supersedes the old entry.
type Store interface {
	// Lookup returns the cached records for path if the signature
	// matches the stored entry. A mismatch, a missing entry, or a
	// corrupted entry all report a miss.
	Lookup(path string, sig Signature) ([]pyscan.ImportRecord, bool)

	// Store writes the records for path at the given signature,
	// superseding any prior entry for that path.
	Store(path string, sig Signature, records []pyscan.ImportRecord) error

	// Close releases any underlying resources.
	Close() error
}

// NopStore is an always-miss Store. Disabling caching is exactly
// equivalent to scanning against a NopStore.
type NopStore struct{}

// Lookup always misses.
func (NopStore) Lookup(string, Signature) ([]pyscan.ImportRecord, bool) { return nil, false }

// Store discards the records.
func (NopStore) Store(string, Signature, []pyscan.ImportRecord) error { return nil }

// Close is a no-op.
func (NopStore) Close() error { return nil }
