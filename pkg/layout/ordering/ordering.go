// Package ordering decides the left-to-right sequence of nodes within each
// rank of a layered graph so that few edges cross.
//
// [Barycentric] is the classic Sugiyama heuristic: each node moves towards
// the mean position of its neighbours in the adjacent rank, sweeping down
// and up alternately, with an adjacent-swap (transpose) refinement after
// every sweep. The best ordering seen across all passes is returned.
//
// Orderers must be deterministic. Ties keep the current relative order, and
// the starting order of each rank is the graph's insertion order.
package ordering

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/relgraph/pkg/dag"
)

// DefaultPasses is the number of sweeps [Barycentric] runs when Passes is 0.
const DefaultPasses = 8

// Orderer computes an ordering for every rank of g.
type Orderer interface {
	OrderRanks(g *dag.Graph) map[int][]string
}

// Barycentric orders ranks with the barycenter heuristic.
type Barycentric struct {
	// Passes bounds the number of sweeps; even passes sweep top-down by
	// parents, odd passes bottom-up by children. Zero means DefaultPasses.
	Passes int
}

// OrderRanks implements [Orderer]. It stops early when an ordering without
// crossings is found or when a downward and an upward sweep in a row leave
// every rank unchanged.
func (b Barycentric) OrderRanks(g *dag.Graph) map[int][]string {
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	ranks := g.RankIDs()
	orders := make(map[int][]string, len(ranks))
	for _, r := range ranks {
		orders[r] = dag.NodeIDs(g.NodesInRank(r))
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	unchanged := 0
	for pass := 0; pass < passes && bestCrossings > 0 && unchanged < 2; pass++ {
		prev := cloneOrders(orders)
		if pass%2 == 0 {
			for i := 1; i < len(ranks); i++ {
				orders[ranks[i]] = sortByBarycenter(orders[ranks[i]], orders[ranks[i]-1], g.Parents)
			}
		} else {
			for i := len(ranks) - 2; i >= 0; i-- {
				orders[ranks[i]] = sortByBarycenter(orders[ranks[i]], orders[ranks[i]+1], g.Children)
			}
		}
		transpose(g, ranks, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
		if sameOrders(prev, orders) {
			unchanged++
		} else {
			unchanged = 0
		}
	}
	return best
}

// sortByBarycenter reorders rank by the mean position of each node's
// neighbours in adj. A node with no neighbour there keeps its own index as
// its weight, so it holds its place relative to the others.
func sortByBarycenter(rank, adj []string, neighbors func(string) []string) []string {
	pos := dag.PosMap(adj)
	weight := make(map[string]float64, len(rank))
	for i, id := range rank {
		sum, n := 0, 0
		for _, nb := range neighbors(id) {
			if p, ok := pos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			weight[id] = float64(i)
			continue
		}
		weight[id] = float64(sum) / float64(n)
	}

	out := slices.Clone(rank)
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(weight[a], weight[b])
	})
	return out
}

// transpose swaps adjacent nodes while doing so strictly reduces the
// crossings against both neighbouring ranks. Every swap lowers the total, so
// the loop terminates.
func transpose(g *dag.Graph, ranks []int, orders map[int][]string) {
	for improved := true; improved; {
		improved = false
		for _, r := range ranks {
			row := orders[r]
			above := dag.PosMap(orders[r-1])
			below := dag.PosMap(orders[r+1])
			for i := 0; i+1 < len(row); i++ {
				u, v := row[i], row[i+1]
				keep := dag.CountPairCrossings(g, u, v, above, true) + dag.CountPairCrossings(g, u, v, below, false)
				swap := dag.CountPairCrossings(g, v, u, above, true) + dag.CountPairCrossings(g, v, u, below, false)
				if swap < keep {
					row[i], row[i+1] = v, u
					improved = true
				}
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}

func sameOrders(a, b map[int][]string) bool {
	return maps.EqualFunc(a, b, slices.Equal[[]string])
}
