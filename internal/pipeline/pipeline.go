// Package pipeline fans file scanning across a fixed pool of workers.
// Each worker owns a contiguous chunk of the file list, so no two
// workers ever touch the same path and the merged result is a pure
// function of the input set and cache state, independent of
// scheduling.
package pipeline

import (
	"context"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pathway/fastdeps/internal/cache"
	"github.com/pathway/fastdeps/internal/logging"
	"github.com/pathway/fastdeps/internal/pyscan"
)

// OutcomeKind tags the per-file scan result variant.
type OutcomeKind int

const (
	// OutcomeOK means the file scanned (or was served from cache).
	OutcomeOK OutcomeKind = iota
	// OutcomeSyntaxError means the file was not lexically scannable.
	OutcomeSyntaxError
	// OutcomeWorkerFault means the file's chunk worker failed.
	OutcomeWorkerFault
	// OutcomeTimeout means the file's chunk ran out of budget.
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeSyntaxError:
		return "syntax-error"
	case OutcomeWorkerFault:
		return "worker-fault"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the tagged per-file result. Downstream stages switch on
// Kind instead of relying on error control flow across the worker
// boundary.
type Outcome struct {
	Kind      OutcomeKind
	Records   []pyscan.ImportRecord
	Err       error
	FromCache bool
}

// Result maps every processed path to its Outcome. Partial is set
// when cancellation stopped chunks from being dispatched; their files
// are absent from Files.
type Result struct {
	Files   map[string]Outcome
	Partial bool
}

// Config controls the scan fan-out.
type Config struct {
	// Workers is the pool size. Zero means GOMAXPROCS.
	Workers int
	// ChunkTimeout bounds one chunk's total scan time. Zero disables
	// the budget. Files left unfinished when the budget runs out are
	// reported as OutcomeTimeout.
	ChunkTimeout time.Duration
	// PrefixBytes is the bounded-prefix fast path size passed to the
	// scanner. Zero means pyscan.DefaultPrefixBytes.
	PrefixBytes int
}

// ScanAll scans every file, consulting store per file and writing
// back on miss. A panicking chunk fails only its own remaining files.
func ScanAll(ctx context.Context, files []string, store cache.Store, cfg Config, logger *logging.Logger) *Result {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	prefixBytes := cfg.PrefixBytes
	if prefixBytes <= 0 {
		prefixBytes = pyscan.DefaultPrefixBytes
	}

	// Contiguous chunks, a small multiple per worker to absorb uneven
	// per-file cost.
	chunkSize := len(files) / (workers * 4)
	if chunkSize < 1 {
		chunkSize = 1
	}

	outcomes := make([]Outcome, len(files))
	done := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(workers)

	partial := false
	for start := 0; start < len(files); start += chunkSize {
		if ctx.Err() != nil {
			// Stop dispatching; already-running chunks finish.
			partial = true
			break
		}
		start := start
		end := start + chunkSize
		if end > len(files) {
			end = len(files)
		}
		g.Go(func() error {
			scanChunk(ctx, files, outcomes, done, start, end, store, prefixBytes, cfg.ChunkTimeout, logger)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		partial = true
	}

	result := &Result{
		Files:   make(map[string]Outcome, len(files)),
		Partial: partial,
	}
	for i, path := range files {
		if done[i] {
			result.Files[path] = outcomes[i]
		} else if !partial {
			// A slot can only stay unset here if a chunk died before
			// its recovery handler ran, which should not happen.
			result.Files[path] = Outcome{Kind: OutcomeWorkerFault}
		}
	}
	return result
}

// scanChunk processes files[start:end] sequentially. The deferred
// recover converts a panic into WorkerFault outcomes for every file
// the chunk had not finished, leaving sibling chunks untouched.
func scanChunk(ctx context.Context, files []string, outcomes []Outcome, done []bool, start, end int, store cache.Store, prefixBytes int, budget time.Duration, logger *logging.Logger) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Scan worker panicked", map[string]interface{}{
				"chunk_start": start,
				"chunk_end":   end,
				"panic":       p,
			})
			for i := start; i < end; i++ {
				if !done[i] {
					outcomes[i] = Outcome{Kind: OutcomeWorkerFault}
					done[i] = true
				}
			}
		}
	}()

	deadline := time.Time{}
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	for i := start; i < end; i++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			for ; i < end; i++ {
				outcomes[i] = Outcome{Kind: OutcomeTimeout}
				done[i] = true
			}
			return
		}
		if ctx.Err() != nil {
			// Cancelled between files. The unfinished slots stay
			// unset and the pipeline reports a partial run.
			return
		}
		outcomes[i] = scanOne(files[i], store, prefixBytes)
		done[i] = true
	}
}

func scanOne(path string, store cache.Store, prefixBytes int) Outcome {
	sig, err := cache.StatSignature(path)
	if err != nil {
		return Outcome{Kind: OutcomeWorkerFault, Err: err}
	}

	if records, ok := store.Lookup(path, sig); ok {
		return Outcome{Kind: OutcomeOK, Records: records, FromCache: true}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return Outcome{Kind: OutcomeWorkerFault, Err: err}
	}

	records, err := pyscan.ScanWithPrefix(src, prefixBytes)
	if err != nil {
		// Not cached: the file stays visible as unscannable on every
		// run until it is fixed.
		return Outcome{Kind: OutcomeSyntaxError, Err: err}
	}

	_ = store.Store(path, sig, records)
	return Outcome{Kind: OutcomeOK, Records: records}
}
