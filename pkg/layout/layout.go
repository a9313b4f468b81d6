// Package layout assigns 2-D coordinates to a directed graph using a layered
// (Sugiyama-style) algorithm.
//
// [Compute] runs four stages over a [dag.Graph] built in input order:
//
//  1. Ranks: longest path from a root, by bounded relaxation so that cycles
//     terminate (see transform.AssignRanks).
//  2. Virtual nodes: edges spanning several ranks are subdivided so that
//     crossing reduction can see them.
//  3. Ordering: barycenter sweeps with transpose refinement.
//  4. Coordinates: ranks are spaced by box size plus RankGap, nodes within a
//     rank by box size plus NodeGap, and each rank is centred on the widest.
//
// Reported positions are the top-left corner of each box. For
// [LeftToRight] the two axes are swapped.
//
// The result depends only on the input sequence and options: no stage
// iterates a map to decide an order, so equal inputs give equal output.
// Degenerate input (no nodes, cycles, self loops, edges to unknown ids) never
// fails; the offending edges are ignored and every node still gets a box.
package layout

import (
	"github.com/matzehuels/relgraph/pkg/dag"
	"github.com/matzehuels/relgraph/pkg/dag/transform"
)

// Edge is a directed connection between two node ids.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Side names one side of a node box.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// NodePosition is the placed box of one node.
type NodePosition struct {
	ID string `json:"id"`
	// X and Y are the top-left corner.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rank   int     `json:"rank"`
	Order  int     `json:"order"` // index within the rank, virtual nodes included
	// Inbound is the side incoming edges attach to; Outbound the side
	// outgoing edges leave from.
	Inbound  Side `json:"inbound"`
	Outbound Side `json:"outbound"`
}

// Point is a location in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgePath is the polyline of one laid-out edge: the source box centre, the
// centre of every virtual node the edge was routed through, and the target
// box centre.
type EdgePath struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Points []Point `json:"points"`
}

// Result is the output of [Compute]. It is derived fresh on every call.
type Result struct {
	Direction Direction      `json:"direction"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Ranks     int            `json:"ranks"`
	Crossings int            `json:"crossings"`
	Nodes     []NodePosition `json:"nodes"`
	Edges     []EdgePath     `json:"edges"`
}

// Position returns the placement of id.
func (r *Result) Position(id string) (NodePosition, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodePosition{}, false
}

// Compute lays out nodes and edges.
//
// Nodes keep the order of the input; repeated or empty ids are dropped.
// Edges that are self loops, repeat an earlier edge, or mention an id not in
// nodes are ignored. Zero-valued options take their defaults.
func Compute(nodes []string, edges []Edge, opts Options) Result {
	opts = opts.WithDefaults()

	g := dag.New()
	for _, id := range nodes {
		_ = g.AddNode(dag.Node{ID: id}) // rejects empty and repeated ids
	}
	var kept []Edge
	for _, e := range edges {
		if g.AddEdge(dag.Edge{From: e.Source, To: e.Target}) == nil {
			kept = append(kept, e)
		}
	}

	transform.AssignRanks(g)
	transform.Subdivide(g)
	orders := opts.orderer().OrderRanks(g)

	geo := newGeometry(opts)
	centers, width, height := geo.place(g, orders)

	res := Result{
		Direction: opts.Direction,
		Width:     width,
		Height:    height,
		Ranks:     len(g.RankIDs()),
		Crossings: dag.CountCrossings(g, orders),
		Nodes:     make([]NodePosition, 0, g.NodeCount()),
	}
	order := make(map[string]int, g.NodeCount())
	for _, ids := range orders {
		for i, id := range ids {
			order[id] = i
		}
	}
	chains := make(map[string][]string)
	for _, n := range g.Nodes() {
		if n.IsVirtual() {
			chains[n.Origin] = append(chains[n.Origin], n.ID)
			continue
		}
		c := centers[n.ID]
		res.Nodes = append(res.Nodes, NodePosition{
			ID:       n.ID,
			X:        c.X - opts.NodeWidth/2,
			Y:        c.Y - opts.NodeHeight/2,
			Width:    opts.NodeWidth,
			Height:   opts.NodeHeight,
			Rank:     n.Rank,
			Order:    order[n.ID],
			Inbound:  geo.inbound,
			Outbound: geo.outbound,
		})
	}
	for _, e := range kept {
		path := EdgePath{Source: e.Source, Target: e.Target}
		path.Points = append(path.Points, centers[e.Source])
		for _, v := range chains[e.Source+"->"+e.Target] {
			path.Points = append(path.Points, centers[v])
		}
		path.Points = append(path.Points, centers[e.Target])
		res.Edges = append(res.Edges, path)
	}
	return res
}

// geometry maps (rank, slot) to layout space for one direction.
type geometry struct {
	lr                bool
	rankBox, crossBox float64
	rankGap, nodeGap  float64
	inbound, outbound Side
}

func newGeometry(o Options) geometry {
	if o.Direction == LeftToRight {
		return geometry{
			lr:      true,
			rankBox: o.NodeWidth, crossBox: o.NodeHeight,
			rankGap: o.RankGap, nodeGap: o.NodeGap,
			inbound: SideLeft, outbound: SideRight,
		}
	}
	return geometry{
		rankBox: o.NodeHeight, crossBox: o.NodeWidth,
		rankGap: o.RankGap, nodeGap: o.NodeGap,
		inbound: SideTop, outbound: SideBottom,
	}
}

// span is the extent of n boxes laid side by side along the cross axis.
func (geo geometry) span(n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*geo.crossBox + float64(n-1)*geo.nodeGap
}

// place returns the centre of every node plus the overall width and height.
func (geo geometry) place(g *dag.Graph, orders map[int][]string) (map[string]Point, float64, float64) {
	ranks := g.RankIDs()
	widest := 0
	for _, r := range ranks {
		widest = max(widest, len(orders[r]))
	}
	crossExtent := geo.span(widest)

	centers := make(map[string]Point, g.NodeCount())
	for i, r := range ranks {
		ids := orders[r]
		offset := (crossExtent - geo.span(len(ids))) / 2
		along := float64(i)*(geo.rankBox+geo.rankGap) + geo.rankBox/2
		for slot, id := range ids {
			across := offset + float64(slot)*(geo.crossBox+geo.nodeGap) + geo.crossBox/2
			if geo.lr {
				centers[id] = Point{X: along, Y: across}
			} else {
				centers[id] = Point{X: across, Y: along}
			}
		}
	}

	rankExtent := 0.0
	if n := len(ranks); n > 0 {
		rankExtent = float64(n)*geo.rankBox + float64(n-1)*geo.rankGap
	}
	if geo.lr {
		return centers, rankExtent, crossExtent
	}
	return centers, crossExtent, rankExtent
}
