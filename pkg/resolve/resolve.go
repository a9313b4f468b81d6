// Package resolve derives directed edges between extracted records.
//
// Each record may reference at most one parent through a foreign-key
// attribute. The candidate attributes come from the document type and are
// tried in priority order; the first one that is present and whose value is a
// known key produces the record's single inbound edge.
package resolve

import (
	"github.com/matzehuels/relgraph/pkg/doctype"
	"github.com/matzehuels/relgraph/pkg/record"
)

// Edge points from the referenced (parent) record to the referencing (child)
// record.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	// Attr is the foreign-key attribute that produced the edge.
	Attr string `json:"attr"`
}

// EdgeID derives the edge id from its endpoints.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// Resolve returns the edges of records in record order.
//
// For every record the type's foreign-key attributes are checked in priority
// order. The first attribute that exists on the record and whose value is in
// index yields one edge; remaining candidates are ignored. Records that
// resolve nothing have no inbound edge.
func Resolve(records []record.Record, index record.Index, typ doctype.Type) []Edge {
	keys := typ.ForeignKeys()
	if len(keys) == 0 {
		return nil
	}

	var edges []Edge
	for i := range records {
		rec := &records[i]
		for _, attr := range keys {
			value, ok := rec.Attributes.Get(attr)
			if !ok {
				continue
			}
			source, ok := index.Lookup(value)
			if !ok {
				continue
			}
			edges = append(edges, Edge{
				ID:     EdgeID(source, rec.ID),
				Source: source,
				Target: rec.ID,
				Attr:   attr,
			})
			break
		}
	}
	return edges
}

// Connections lists the records adjacent to one record.
type Connections struct {
	Parents  []string `json:"parents"`  // sources of inbound edges
	Children []string `json:"children"` // targets of outbound edges
}

// Neighbors returns the parents and children of id in edge order.
func Neighbors(edges []Edge, id string) Connections {
	var c Connections
	for _, e := range edges {
		if e.Target == id {
			c.Parents = append(c.Parents, e.Source)
		}
		if e.Source == id {
			c.Children = append(c.Children, e.Target)
		}
	}
	return c
}

// Roots returns the ids of records without an inbound edge, in record order.
func Roots(records []record.Record, edges []Edge) []string {
	hasParent := make(map[string]bool, len(edges))
	for _, e := range edges {
		hasParent[e.Target] = true
	}
	var roots []string
	for _, r := range records {
		if !hasParent[r.ID] {
			roots = append(roots, r.ID)
		}
	}
	return roots
}
