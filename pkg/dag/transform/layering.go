package transform

import (
	"slices"

	"github.com/matzehuels/relgraph/pkg/dag"
)

const unranked = -1

// AssignRanks places every node at its longest-path distance from a root,
// where a root is a node without incoming edges.
//
// Ranks are found by bounded relaxation: roots start at 0, then the edges are
// swept in insertion order, raising rank(to) to rank(from)+1, until a sweep
// changes nothing or NodeCount sweeps have run. On a cyclic graph the bound
// stops the otherwise endless growth. Nodes that no root reaches (for example
// a cycle with no way in) are placed at the highest rank seen, or 0.
//
// Finally the occupied ranks are compacted to 0..k so that cycles do not leave
// empty layers behind. For acyclic input the ranks are already contiguous and
// compaction changes nothing.
//
// It returns the number of sweeps performed.
func AssignRanks(g *dag.Graph) int {
	nodes := g.Nodes()
	edges := g.Edges()
	rank := make(map[string]int, len(nodes))
	for _, n := range nodes {
		rank[n.ID] = unranked
		if g.InDegree(n.ID) == 0 {
			rank[n.ID] = 0
		}
	}

	sweeps := 0
	for sweeps < len(nodes) {
		sweeps++
		changed := false
		for _, e := range edges {
			from := rank[e.From]
			if from == unranked {
				continue
			}
			if from+1 > rank[e.To] {
				rank[e.To] = from + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	highest := 0
	for _, n := range nodes {
		highest = max(highest, rank[n.ID])
	}
	for _, n := range nodes {
		if rank[n.ID] == unranked {
			rank[n.ID] = highest
		}
	}

	g.SetRanks(compact(rank))
	return sweeps
}

func compact(rank map[string]int) map[string]int {
	var levels []int
	for _, r := range rank {
		levels = append(levels, r)
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	dense := make(map[int]int, len(levels))
	for i, r := range levels {
		dense[r] = i
	}
	out := make(map[string]int, len(rank))
	for id, r := range rank {
		out[id] = dense[r]
	}
	return out
}
