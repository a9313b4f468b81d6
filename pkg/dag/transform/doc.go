// Package transform prepares a [dag.Graph] for layered drawing.
//
// The layout engine runs two transformations in order:
//
//	transform.AssignRanks(g) // longest-path ranks, cycle tolerant
//	transform.Subdivide(g)   // virtual nodes on edges spanning several ranks
//
// After both, every forward edge joins adjacent ranks and [dag.Graph.Validate]
// succeeds. Edges that point backwards, which only occur on cyclic input, are
// kept but do not take part in crossing reduction.
//
// [dag.Graph]: github.com/matzehuels/relgraph/pkg/dag
// [dag.Graph.Validate]: github.com/matzehuels/relgraph/pkg/dag
package transform
