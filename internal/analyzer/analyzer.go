// Package analyzer orchestrates one dependency-analysis run:
// discovery, parallel scanning, module indexing, resolution, and
// graph construction. The Result it returns is an immutable snapshot
// owning everything the query surface serves.
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pathway/fastdeps/internal/cache"
	"github.com/pathway/fastdeps/internal/depgraph"
	"github.com/pathway/fastdeps/internal/errors"
	"github.com/pathway/fastdeps/internal/logging"
	"github.com/pathway/fastdeps/internal/modules"
	"github.com/pathway/fastdeps/internal/pipeline"
	"github.com/pathway/fastdeps/internal/resolver"
)

// Options configures one analysis run.
type Options struct {
	// Target is the file or directory whose dependencies are
	// analyzed. Discovery never walks beyond the target's subtree;
	// files elsewhere under Root join only through the target's
	// import closure.
	Target string
	// Root is the analysis root module names are derived from.
	// Empty means the target directory (or the file's directory).
	Root string
	// Workers overrides the scan pool size. Zero means GOMAXPROCS.
	Workers int
	// ChunkTimeout bounds one scan chunk. Zero disables it.
	ChunkTimeout time.Duration
	// PrefixBytes tunes the scanner's bounded-prefix fast path.
	PrefixBytes int
	// InternalOnly suppresses the external-dependency set.
	InternalOnly bool
	// Store is the scan cache. Nil disables caching, which behaves
	// exactly like an always-miss store.
	Store cache.Store
	// Declarations are optional project module declarations.
	Declarations *resolver.Declarations
}

// ScanFailure describes why one file produced no import records.
type ScanFailure struct {
	Kind pipeline.OutcomeKind `json:"kind"`
	Err  error                `json:"-"`
}

// Result is the immutable outcome of one run.
type Result struct {
	RunID    string
	Root     string
	Duration time.Duration
	// Partial is set when cancellation stopped the run early.
	Partial bool

	graph      *depgraph.Graph
	cycles     []depgraph.CycleReport
	externals  []string
	failures   map[string]ScanFailure
	resolveErr []error
	cacheHits  int
	scanned    int
}

// Nodes returns every file in the graph with its module name.
func (r *Result) Nodes() []depgraph.NodeInfo { return r.graph.Nodes() }

// Edges returns every internal import edge with originating lines.
func (r *Result) Edges() []depgraph.Edge { return r.graph.Edges() }

// Cycles returns the cycle reports computed for this run.
func (r *Result) Cycles() []depgraph.CycleReport { return r.cycles }

// ExternalDependencies returns the distinct unresolved root names.
func (r *Result) ExternalDependencies() []string {
	return append([]string(nil), r.externals...)
}

// ScanFailures maps failed paths to their failure kind.
func (r *Result) ScanFailures() map[string]ScanFailure {
	out := make(map[string]ScanFailure, len(r.failures))
	for k, v := range r.failures {
		out[k] = v
	}
	return out
}

// ResolutionErrors returns the non-fatal resolution errors.
func (r *Result) ResolutionErrors() []error {
	return append([]error(nil), r.resolveErr...)
}

// Graph exposes the underlying dependency graph for rendering.
func (r *Result) Graph() *depgraph.Graph { return r.graph }

// CacheHits reports how many files were served from the cache.
func (r *Result) CacheHits() int { return r.cacheHits }

// FilesScanned reports how many files were processed.
func (r *Result) FilesScanned() int { return r.scanned }

// Analyze runs the full pipeline for the target. The only fatal
// conditions are a missing target and an empty discovery; every
// per-file, per-chunk, and per-record failure is carried in the
// Result instead.
func Analyze(ctx context.Context, opts Options, logger *logging.Logger) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	target, err := filepath.Abs(opts.Target)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, "invalid target path", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, "target not found: "+opts.Target, err)
	}

	root := opts.Root
	if root == "" {
		if info.IsDir() {
			root = target
		} else {
			root = filepath.Dir(target)
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, "invalid root path", err)
	}

	files, err := modules.Discover(target)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, "discovery failed", err)
	}
	if len(files) == 0 {
		return nil, errors.Newf(errors.NoFiles, "no Python files found under %s", opts.Target)
	}

	logger.Info("Analysis started", map[string]interface{}{
		"run_id": runID,
		"target": target,
		"root":   root,
		"files":  len(files),
	})

	store := opts.Store
	if store == nil {
		store = cache.NopStore{}
	}
	pcfg := pipeline.Config{
		Workers:      opts.Workers,
		ChunkTimeout: opts.ChunkTimeout,
		PrefixBytes:  opts.PrefixBytes,
	}

	// The index touches only paths, not scan output, so its build
	// overlaps the first scan wave.
	var ix *modules.Index
	ixDone := make(chan struct{})
	go func() {
		ix = modules.BuildIndex(root, files)
		close(ixDone)
	}()

	res := &Result{
		RunID:    runID,
		Root:     root,
		graph:    depgraph.New(),
		failures: make(map[string]ScanFailure),
	}
	externals := make(map[string]bool)

	var resv *resolver.Resolver
	queued := make(map[string]bool, len(files))
	for _, f := range files {
		queued[f] = true
	}

	// Waves: scan, resolve, then scan whatever new internal files the
	// imports pulled in, until the closure is exhausted.
	pending := files
	for len(pending) > 0 {
		scan := pipeline.ScanAll(ctx, pending, store, pcfg, logger)
		if scan.Partial {
			res.Partial = true
		}

		if resv == nil {
			<-ixDone
			resv = resolver.New(ix, opts.Declarations)
		}

		paths := make([]string, 0, len(scan.Files))
		for p := range scan.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		var next []string
		for _, path := range paths {
			out := scan.Files[path]
			res.scanned++
			if out.FromCache {
				res.cacheHits++
			}
			res.graph.AddNode(path, ix.ModuleName(path))

			if out.Kind != pipeline.OutcomeOK {
				res.failures[path] = ScanFailure{Kind: out.Kind, Err: out.Err}
				res.graph.MarkScanFailed(path)
				continue
			}

			for _, rec := range out.Records {
				for _, rr := range resv.Resolve(rec, path) {
					switch rr.Kind {
					case resolver.KindInternal:
						res.graph.AddEdge(path, rr.Path, rec.Line)
						if !queued[rr.Path] {
							queued[rr.Path] = true
							next = append(next, rr.Path)
						}
					case resolver.KindExternal:
						if !opts.InternalOnly {
							externals[rr.Name] = true
						}
					case resolver.KindStdlib:
						// standard library, neither internal nor external
					case resolver.KindDynamic:
						// computed target, excluded from graph and externals
					case resolver.KindError:
						res.resolveErr = append(res.resolveErr, rr.Err)
					}
				}
			}
		}

		if ctx.Err() != nil {
			res.Partial = true
			break
		}
		sort.Strings(next)
		pending = next
	}

	for name := range externals {
		res.externals = append(res.externals, name)
	}
	sort.Strings(res.externals)

	res.cycles = res.graph.Cycles()
	res.Duration = time.Since(start)

	logger.Info("Analysis complete", map[string]interface{}{
		"run_id":     runID,
		"files":      res.scanned,
		"edges":      len(res.Edges()),
		"externals":  len(res.externals),
		"cycles":     len(res.cycles),
		"failures":   len(res.failures),
		"cache_hits": res.cacheHits,
		"elapsed":    res.Duration.String(),
	})

	return res, nil
}
