package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pathway/fastdeps/internal/pyscan"
)

type memoryEntry struct {
	sig     Signature
	records []pyscan.ImportRecord
}

// MemoryFront layers a bounded in-memory LRU over another Store so
// repeated lookups within one run skip the persisted store entirely.
// The LRU is safe for concurrent use by scan workers.
type MemoryFront struct {
	inner Store
	lru   *lru.Cache[string, memoryEntry]
}

// NewMemoryFront wraps inner with an LRU of at most size entries.
func NewMemoryFront(inner Store, size int) (*MemoryFront, error) {
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryFront{inner: inner, lru: c}, nil
}

// Lookup checks the LRU first, then falls through to the inner store,
// promoting inner hits into the LRU.
func (m *MemoryFront) Lookup(path string, sig Signature) ([]pyscan.ImportRecord, bool) {
	if entry, ok := m.lru.Get(path); ok && entry.sig == sig {
		return entry.records, true
	}
	records, ok := m.inner.Lookup(path, sig)
	if ok {
		m.lru.Add(path, memoryEntry{sig: sig, records: records})
	}
	return records, ok
}

// Store writes through to both layers.
func (m *MemoryFront) Store(path string, sig Signature, records []pyscan.ImportRecord) error {
	m.lru.Add(path, memoryEntry{sig: sig, records: records})
	return m.inner.Store(path, sig, records)
}

// Close closes the inner store.
func (m *MemoryFront) Close() error {
	m.lru.Purge()
	return m.inner.Close()
}
