// Package dag provides the ranked directed graph the layout engine works on.
//
// # Overview
//
// A [Graph] holds nodes grouped into ranks (layers) and directed edges
// between them. Unlike a textbook DAG it tolerates cycles: record documents
// can reference each other circularly, and the layout must still produce a
// result. Rank-local queries such as [Graph.ChildrenInRank] only see edges
// that point into the requested rank, so backward edges drop out of the
// crossing computations naturally.
//
// All multi-node queries return nodes in insertion order. Layout output is
// compared byte for byte across runs, so nothing in this package iterates a
// map to produce an ordering.
//
// # Basic Usage
//
//	g := dag.New()
//	_ = g.AddNode(dag.Node{ID: "0:0", Rank: 0})
//	_ = g.AddNode(dag.Node{ID: "0:1", Rank: 1})
//	_ = g.AddEdge(dag.Edge{From: "0:0", To: "0:1"})
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// adjacent ranks with a Fenwick tree in O(E log V). [CountPairCrossings]
// evaluates a single adjacent swap and drives the transpose refinement in
// the ordering package.
//
// # Related Packages
//
// The [transform] subpackage assigns ranks and subdivides long edges.
//
// [transform]: github.com/matzehuels/relgraph/pkg/dag/transform
package dag
