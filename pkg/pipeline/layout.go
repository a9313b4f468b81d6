package pipeline

import (
	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
)

// Layout computes a layout of nodes and edges in the given direction with
// the default geometry.
func Layout(nodes []string, edges []layout.Edge, direction layout.Direction) layout.Result {
	return layout.Compute(nodes, edges, layout.Options{Direction: direction})
}

// GenerateLayout lays out g with opts and attaches the record labels.
func GenerateLayout(g *graph.Graph, opts layout.Options) (graph.Layout, error) {
	if err := opts.Validate(); err != nil {
		return graph.Layout{}, err
	}
	return graph.NewLayout(g, layout.Compute(g.NodeIDs(), g.LayoutEdges(), opts)), nil
}

// topology is the part of a graph a layout depends on.
type topology struct {
	Nodes []string      `json:"nodes"`
	Edges []layout.Edge `json:"edges"`
}

// TopologyHash hashes g's node ids and edges. Graphs that differ only in
// record data share a hash and therefore a cached layout.
func TopologyHash(g *graph.Graph) string {
	h, _ := cache.HashJSON(topology{Nodes: g.NodeIDs(), Edges: g.LayoutEdges()})
	return h
}

// GraphHash hashes the whole content of g except its file name.
func GraphHash(g *graph.Graph) string {
	cp := *g
	cp.Name = ""
	data, _ := graph.MarshalGraph(&cp)
	return cache.Hash(data)
}
