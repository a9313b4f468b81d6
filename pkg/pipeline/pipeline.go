// Package pipeline runs the load, extract, layout and patch stages of relgraph.
//
// The package-level functions are the plain entry points:
//
//	g, err := pipeline.ExtractGraph(doc)                          // records, edges, type
//	res := pipeline.Layout(g.NodeIDs(), g.LayoutEdges(), layout.TopToBottom)
//	xml, err := pipeline.PatchAndSerialize(doc, edited)
//
// [Runner] wraps the same stages with caching, logging and observability
// hooks. The CLI and the HTTP server both go through a Runner, so a document
// loaded by either behaves the same way:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, "report.xml", data, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Input options
	MaxSize  int64  `json:"max_size,omitempty"`
	Encoding string `json:"encoding,omitempty"`

	// Layout options
	Layout layout.Options `json:"layout"`

	// Refresh bypasses cached graphs and layouts (results are still stored).
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Validate checks the charset name and layout options.
func (o *Options) Validate() error {
	if o.Encoding != "" {
		if err := xmldoc.ValidateEncoding(o.Encoding); err != nil {
			return err
		}
	}
	if o.MaxSize < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max size must not be negative")
	}
	return o.Layout.Validate()
}

// LoadOptions returns the document loading options.
func (o *Options) LoadOptions() xmldoc.Options {
	return xmldoc.Options{MaxSize: o.MaxSize, Encoding: o.Encoding}
}

// GraphKeyOpts returns cache key options for an extracted graph.
func (o *Options) GraphKeyOpts(doc *xmldoc.Document) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Encoding: doc.Encoding}
}

// LayoutKeyOpts returns cache key options for a layout. Defaults are applied
// first so that zero and explicit default values share a key.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	l := o.Layout.WithDefaults()
	return cache.LayoutKeyOpts{
		Direction:  l.Direction.String(),
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
		RankGap:    l.RankGap,
		NodeGap:    l.NodeGap,
		Passes:     l.Passes,
	}
}

func (o *Options) logger(fallback *log.Logger) *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if fallback != nil {
		return fallback
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// =============================================================================
// Result
// =============================================================================

// Result holds the outputs of [Runner.Execute].
type Result struct {
	// Document is the pristine parsed source.
	Document *xmldoc.Document

	// Graph is the extracted record graph.
	Graph *graph.Graph

	// GraphHash is the content hash of Graph's nodes and edges.
	GraphHash string

	// Layout is the positioned graph.
	Layout graph.Layout

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds sizes and timings of a run.
type Stats struct {
	Records     int
	Edges       int
	Crossings   int
	ExtractTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	GraphHit  bool
	LayoutHit bool
}
