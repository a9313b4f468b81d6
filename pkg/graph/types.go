package graph

import (
	"slices"

	"github.com/matzehuels/relgraph/pkg/doctype"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/resolve"
)

// =============================================================================
// Graph - Record Graph Serialization
// =============================================================================

// Graph is the extracted form of one document: its type, the records in
// document order and the edges between them. It is the canonical format for
// JSON files, API responses and the cache.
type Graph struct {
	Name    string          `json:"name,omitempty"`
	Type    doctype.Type    `json:"type"`
	Title   string          `json:"title,omitempty"`
	Records []record.Record `json:"records"`
	Edges   []resolve.Edge  `json:"edges"`
	// Duplicates lists key values shared by several records.
	Duplicates []string `json:"duplicates,omitempty"`
}

// Record returns the record with the given id.
func (g *Graph) Record(id string) (*record.Record, bool) {
	for i := range g.Records {
		if g.Records[i].ID == id {
			return &g.Records[i], true
		}
	}
	return nil, false
}

// NodeIDs returns the record ids in document order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Records))
	for i, r := range g.Records {
		ids[i] = r.ID
	}
	return ids
}

// LayoutEdges converts the edges to layout input.
func (g *Graph) LayoutEdges() []layout.Edge {
	out := make([]layout.Edge, len(g.Edges))
	for i, e := range g.Edges {
		out[i] = layout.Edge{Source: e.Source, Target: e.Target}
	}
	return out
}

// Index rebuilds the key index of the records.
func (g *Graph) Index() record.Index { return record.BuildIndex(g.Records) }

// Neighbors returns the parents and children of one record.
func (g *Graph) Neighbors(id string) resolve.Connections {
	return resolve.Neighbors(g.Edges, id)
}

// Summary returns the type's summary field of a record, or "".
func (g *Graph) Summary(r *record.Record) string {
	return r.Field(g.Type.SummaryField())
}

// Clone returns a deep copy of g, so that edits on the copy never reach g.
func (g *Graph) Clone() *Graph {
	cp := *g
	cp.Records = make([]record.Record, len(g.Records))
	for i, r := range g.Records {
		cp.Records[i] = r.Clone()
	}
	cp.Edges = slices.Clone(g.Edges)
	cp.Duplicates = slices.Clone(g.Duplicates)
	return &cp
}

// Validate checks that record ids are well formed and unique and that every
// edge joins two known records.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Records))
	for _, r := range g.Records {
		if err := errors.ValidateRecordID(r.ID); err != nil {
			return errors.Wrap(errors.ErrCodeValidation, err, "invalid graph")
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeValidation, "duplicate record id %q", r.ID)
		}
		seen[r.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			return errors.New(errors.ErrCodeValidation, "edge %s references an unknown record", e.ID)
		}
	}
	return nil
}

// =============================================================================
// Layout - Positioned Graph Serialization
// =============================================================================

// Layout is a computed layout together with what a renderer needs to label
// the boxes.
type Layout struct {
	Name   string            `json:"name,omitempty"`
	Type   doctype.Type      `json:"type"`
	Title  string            `json:"title,omitempty"`
	Labels map[string]string `json:"labels"`
	Layout layout.Result     `json:"layout"`
}

// NewLayout pairs a layout result with the labels of g's records.
func NewLayout(g *Graph, res layout.Result) Layout {
	labels := make(map[string]string, len(g.Records))
	for _, r := range g.Records {
		labels[r.ID] = r.Label
	}
	return Layout{
		Name:   g.Name,
		Type:   g.Type,
		Title:  g.Title,
		Labels: labels,
		Layout: res,
	}
}
