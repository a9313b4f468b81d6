package transform

import (
	"fmt"

	"github.com/matzehuels/relgraph/pkg/dag"
)

// Subdivide replaces every forward edge that spans more than one rank with a
// chain of virtual nodes, one per intermediate rank:
//
//	Before: a (rank 0) → d (rank 3)
//	After:  a → a->d#1 → a->d#2 → d
//
// Virtual nodes carry the "<from>-><to>" pair in Origin so callers can route
// the original edge through them. Backward and same-rank edges are left alone.
// Edges are processed in insertion order, so the generated ids and their
// order within each rank are deterministic.
func Subdivide(g *dag.Graph) {
	gen := newIDGen(g.Nodes())
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Rank <= src.Rank+1 {
			continue
		}

		origin := e.From + "->" + e.To
		g.RemoveEdge(e.From, e.To)
		prev := src.ID
		for r := src.Rank + 1; r < dst.Rank; r++ {
			id := gen.next(origin, r-src.Rank)
			mustAdd(g.AddNode(dag.Node{ID: id, Rank: r, Kind: dag.NodeKindVirtual, Origin: origin}))
			mustAdd(g.AddEdge(dag.Edge{From: prev, To: id}))
			prev = id
		}
		mustAdd(g.AddEdge(dag.Edge{From: prev, To: dst.ID}))
	}
}

// mustAdd panics on errors that fresh ids and existing endpoints rule out.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(origin string, step int) string {
	base := fmt.Sprintf("%s#%d", origin, step)
	id := base
	for i := 1; ; i++ {
		if _, taken := gen.used[id]; !taken {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}
