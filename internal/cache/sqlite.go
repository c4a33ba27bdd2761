package cache

import (
	"encoding/json"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pathway/fastdeps/internal/logging"
	"github.com/pathway/fastdeps/internal/pyscan"
	"github.com/pathway/fastdeps/internal/storage"
)

// SQLiteStore persists scan results in the storage layer's SQLite
// database. Record lists are JSON encoded and zstd compressed.
type SQLiteStore struct {
	db     *storage.DB
	logger *logging.Logger
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// OpenSQLite opens (or creates) the persisted scan cache at dbPath.
func OpenSQLite(dbPath string, logger *logging.Logger) (*SQLiteStore, error) {
	db, err := storage.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
		enc:    enc,
		dec:    dec,
	}, nil
}

// Lookup returns the cached records for path when the stored
// signature matches. Unreadable or undecodable rows are treated as
// misses and evicted.
func (s *SQLiteStore) Lookup(path string, sig Signature) ([]pyscan.ImportRecord, bool) {
	var (
		size    int64
		mtimeNS int64
		blob    []byte
	)
	err := s.db.QueryRow(
		"SELECT size, mtime_ns, records FROM scan_cache WHERE path = ?", path,
	).Scan(&size, &mtimeNS, &blob)
	if err != nil {
		return nil, false
	}

	if size != sig.Size || mtimeNS != sig.MtimeNS {
		return nil, false
	}

	records, err := s.decode(blob)
	if err != nil {
		s.logger.Warn("Corrupted cache entry, treating as miss", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		_, _ = s.db.Exec("DELETE FROM scan_cache WHERE path = ?", path)
		return nil, false
	}

	return records, true
}

// Store writes the records for path, superseding any prior entry.
func (s *SQLiteStore) Store(path string, sig Signature, records []pyscan.ImportRecord) error {
	blob, err := s.encode(records)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO scan_cache (path, size, mtime_ns, records, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, path, sig.Size, sig.MtimeNS, blob, time.Now().Unix())
	return err
}

// Prune drops entries for paths outside the given live set. Absent
// entries only ever cost a recompute, so pruning is best effort.
func (s *SQLiteStore) Prune(live map[string]bool) error {
	rows, err := s.db.Query("SELECT path FROM scan_cache")
	if err != nil {
		return err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		if !live[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, path := range stale {
		if _, err := s.db.Exec("DELETE FROM scan_cache WHERE path = ?", path); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the codec and database handles.
func (s *SQLiteStore) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func (s *SQLiteStore) encode(records []pyscan.ImportRecord) ([]byte, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return s.enc.EncodeAll(data, nil), nil
}

func (s *SQLiteStore) decode(blob []byte) ([]pyscan.ImportRecord, error) {
	data, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, err
	}
	var records []pyscan.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
