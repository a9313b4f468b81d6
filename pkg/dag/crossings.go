package dag

import "slices"

// CountCrossings sums the crossings between every pair of adjacent ranks for
// the given per-rank orderings. Ranks missing from orders count as empty.
func CountCrossings(g *Graph, orders map[int][]string) int {
	total := 0
	for _, r := range g.RankIDs() {
		total += CountLayerCrossings(g, orders[r], orders[r+1])
	}
	return total
}

// CountLayerCrossings counts crossings among the edges running from upper to
// lower. Edges (u1,v1) and (u2,v2) cross when u1 is left of u2 and v1 is
// right of v2, so the count is the number of inversions in the target
// positions once the edges are sorted by source position. A Fenwick tree
// keeps this at O(E log V).
func CountLayerCrossings(g *Graph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := PosMap(lower)

	type span struct{ from, to int }
	var spans []span
	for i, id := range upper {
		for _, c := range g.Children(id) {
			if p, ok := lowerPos[c]; ok {
				spans = append(spans, span{i, p})
			}
		}
	}
	if len(spans) < 2 {
		return 0
	}
	slices.SortFunc(spans, func(a, b span) int {
		if a.from != b.from {
			return a.from - b.from
		}
		return a.to - b.to
	})

	tree := make(fenwick, len(lower)+1)
	crossings := 0
	for seen, s := range spans {
		crossings += seen - tree.prefix(s.to)
		tree.add(s.to)
	}
	return crossings
}

// fenwick is a binary indexed tree over zero-based positions.
type fenwick []int

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}

// prefix returns how many positions <= pos have been added.
func (f fenwick) prefix(pos int) int {
	n := 0
	for i := pos + 1; i > 0; i -= i & -i {
		n += f[i]
	}
	return n
}

// CountPairCrossings returns the crossings between the edges of left and the
// edges of right towards an adjacent rank, with left placed before right.
// adjPos holds the positions of that rank; useParents selects the rank above.
func CountPairCrossings(g *Graph, left, right string, adjPos map[string]int, useParents bool) int {
	neighbors := g.Children
	if useParents {
		neighbors = g.Parents
	}
	crossings := 0
	for _, ln := range neighbors(left) {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range neighbors(right) {
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}
