package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/export"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/patch"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// Runner executes pipeline stages with caching. It holds no per-run state
// and may be shared between goroutines.
//
// Cache errors never fail a stage: a failed read is a miss and a failed
// write is logged at debug level.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute loads a named upload, extracts its graph and lays it out.
func (r *Runner) Execute(ctx context.Context, name string, data []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := xmldoc.Load(name, data, opts.LoadOptions())
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, doc, opts)
}

// ExecuteFile is Execute for a document on disk.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := xmldoc.ReadFile(path, opts.LoadOptions())
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, doc, opts)
}

func (r *Runner) execute(ctx context.Context, doc *xmldoc.Document, opts Options) (*Result, error) {
	logger := opts.logger(r.Logger)
	res := &Result{Document: doc}

	start := time.Now()
	g, hit, err := r.LoadWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	res.Graph = g
	res.GraphHash = TopologyHash(g)
	res.CacheInfo.GraphHit = hit
	res.Stats.Records = len(g.Records)
	res.Stats.Edges = len(g.Edges)
	res.Stats.ExtractTime = time.Since(start)

	logger.Info("extracted records",
		"type", g.Type,
		"records", res.Stats.Records,
		"edges", res.Stats.Edges,
		"duration", res.Stats.ExtractTime)
	if len(g.Duplicates) > 0 {
		logger.Warn("duplicate record keys, last occurrence wins", "keys", g.Duplicates)
	}

	start = time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.CacheInfo.LayoutHit = hit
	res.Stats.Crossings = l.Layout.Crossings
	res.Stats.LayoutTime = time.Since(start)

	logger.Info("computed layout",
		"direction", l.Layout.Direction,
		"ranks", l.Layout.Ranks,
		"crossings", l.Layout.Crossings,
		"duration", res.Stats.LayoutTime)

	return res, nil
}

// LoadWithCacheInfo extracts the graph of doc, keyed by the hash of its
// source bytes, and reports whether it came from the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, doc *xmldoc.Document, opts Options) (*graph.Graph, bool, error) {
	if doc == nil {
		return nil, false, errors.New(errors.ErrCodeInput, "no document")
	}
	logger := opts.logger(r.Logger)
	key := r.Keyer.GraphKey(cache.Hash(doc.Raw()), opts.GraphKeyOpts(doc))

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, logger, "graph", key); ok {
			if g, err := graph.UnmarshalGraph(data); err == nil {
				g.Name = doc.Name
				return g, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, doc.Name)
	start := time.Now()
	g, err := ExtractGraph(doc)
	if err != nil {
		hooks.OnExtractComplete(ctx, doc.Name, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnExtractComplete(ctx, doc.Name, len(g.Records), len(g.Edges), time.Since(start), nil)

	if data, err := graph.MarshalGraph(g); err == nil {
		r.store(ctx, logger, "graph", key, data, cache.TTLGraph)
	}
	return g, false, nil
}

// Load is LoadWithCacheInfo without the cache flag.
func (r *Runner) Load(ctx context.Context, doc *xmldoc.Document, opts Options) (*graph.Graph, error) {
	g, _, err := r.LoadWithCacheInfo(ctx, doc, opts)
	return g, err
}

// LayoutWithCacheInfo lays out g, keyed by its topology and the layout
// options, and reports whether the layout came from the cache. A custom
// orderer bypasses the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (graph.Layout, bool, error) {
	if err := opts.Layout.Validate(); err != nil {
		return graph.Layout{}, false, err
	}
	logger := opts.logger(r.Logger)
	cacheable := opts.Layout.Orderer == nil
	key := r.Keyer.LayoutKey(TopologyHash(g), opts.LayoutKeyOpts())

	if cacheable && !opts.Refresh {
		if data, ok := r.lookup(ctx, logger, "layout", key); ok {
			var res layout.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return graph.NewLayout(g, res), true, nil
			}
		}
	}

	dir := opts.Layout.WithDefaults().Direction.String()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, dir, len(g.Records))
	start := time.Now()
	res := layout.Compute(g.NodeIDs(), g.LayoutEdges(), opts.Layout)
	hooks.OnLayoutComplete(ctx, dir, res.Crossings, time.Since(start), nil)

	if cacheable {
		if data, err := json.Marshal(res); err == nil {
			r.store(ctx, logger, "layout", key, data, cache.TTLLayout)
		}
	}
	return graph.NewLayout(g, res), false, nil
}

// Layout is LayoutWithCacheInfo without the cache flag.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// ExportWithCacheInfo renders g as DOT or SVG and reports whether the bytes
// came from the cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *graph.Graph, format string, eopts export.Options, opts Options) ([]byte, bool, error) {
	if err := export.ValidateFormat(format); err != nil {
		return nil, false, err
	}
	logger := opts.logger(r.Logger)
	key := r.Keyer.ExportKey(GraphHash(g), cache.ExportKeyOpts{
		Format:    format,
		Direction: eopts.Direction.String(),
		Detailed:  eopts.Detailed,
	})

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, logger, "export", key); ok {
			return data, true, nil
		}
	}

	data, err := export.Render(ctx, g, format, eopts)
	if err != nil {
		return nil, false, fmt.Errorf("export %s: %w", format, err)
	}
	r.store(ctx, logger, "export", key, data, cache.TTLExport)
	return data, false, nil
}

// Patch writes records back into a copy of doc and returns the document
// encoded in its source charset together with the patch report.
func (r *Runner) Patch(ctx context.Context, doc *xmldoc.Document, records []record.Record, opts Options) ([]byte, patch.Report, error) {
	logger := opts.logger(r.Logger)
	name := ""
	if doc != nil {
		name = doc.Name
	}

	hooks := observability.Pipeline()
	hooks.OnPatchStart(ctx, name, len(records))
	start := time.Now()
	out, rep, err := patch.Encode(doc, records)
	hooks.OnPatchComplete(ctx, name, len(rep.Patched), len(rep.Skipped), time.Since(start), err)
	if err != nil {
		return nil, rep, err
	}

	logger.Info("patched document",
		"patched", len(rep.Patched),
		"attributes", rep.AttributesChanged,
		"children", rep.ChildrenWritten,
		"bytes", len(out),
		"duration", time.Since(start))
	if len(rep.Skipped) > 0 {
		logger.Warn("records without a matching element were skipped", "ids", rep.Skipped)
	}
	return out, rep, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, logger *log.Logger, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, logger *log.Logger, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
