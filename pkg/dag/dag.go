package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] for an empty id.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the id is taken.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when From is not a node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when To is not a node.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Graph.AddEdge] for an edge from a node to itself.
	ErrSelfLoop = errors.New("self loop")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the same From/To
	// pair was already added.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that no longer exists.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrNonConsecutiveRanks is returned by [Graph.Validate] when a forward
	// edge skips a rank.
	ErrNonConsecutiveRanks = errors.New("forward edges must connect consecutive ranks")
)

// NodeKind separates input nodes from nodes the layout inserts.
type NodeKind int

const (
	// NodeKindRegular is a node from the input graph.
	NodeKindRegular NodeKind = iota
	// NodeKindVirtual is a bend point inserted on an edge that spans more
	// than one rank.
	NodeKindVirtual
)

// Node is a vertex with an assigned rank.
type Node struct {
	ID   string
	Rank int
	Kind NodeKind
	// Origin is the "<from>-><to>" pair of the edge a virtual node belongs to.
	Origin string
}

// IsVirtual reports whether the node was inserted by edge subdivision.
func (n Node) IsVirtual() bool { return n.Kind == NodeKindVirtual }

// Edge is a directed connection between two nodes.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph whose nodes are grouped into ranks.
//
// Every query that returns several nodes returns them in insertion order, so
// that algorithms built on top of it are deterministic. Cycles are allowed;
// edges whose target rank is not below the source rank are simply ignored by
// the rank-local queries.
//
// Graph is not safe for concurrent use.
type Graph struct {
	order    []*Node
	nodes    map[string]*Node
	edges    []Edge
	seen     map[Edge]struct{}
	outgoing map[string][]string
	incoming map[string][]string
	ranks    map[int][]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		seen:     make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		ranks:    make(map[int][]*Node),
	}
}

// AddNode appends a node and indexes it under its rank.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.order = append(g.order, node)
	g.nodes[node.ID] = node
	g.ranks[node.Rank] = append(g.ranks[node.Rank], node)
	return nil
}

// AddEdge appends a directed edge between two existing nodes. Self loops and
// repeated pairs are rejected.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if _, dup := g.seen[e]; dup {
		return ErrDuplicateEdge
	}
	g.seen[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if present.
func (g *Graph) RemoveEdge(from, to string) {
	e := Edge{From: from, To: to}
	if _, ok := g.seen[e]; !ok {
		return
	}
	delete(g.seen, e)
	g.edges = slices.DeleteFunc(g.edges, func(x Edge) bool { return x == e })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.seen[Edge{From: from, To: to}]
	return ok
}

// SetRanks assigns new ranks and rebuilds the rank index. Nodes missing from
// ranks keep their current rank. Within a rank, nodes stay in insertion order.
func (g *Graph) SetRanks(ranks map[string]int) {
	g.ranks = make(map[int][]*Node)
	for _, n := range g.order {
		if r, ok := ranks[n.ID]; ok {
			n.Rank = r
		}
		g.ranks[n.Rank] = append(g.ranks[n.Rank], n)
	}
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.order) }

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the targets of the node's outgoing edges. The slice must
// not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of the node's incoming edges. The slice must
// not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// ChildrenInRank returns the children of id that sit in rank.
func (g *Graph) ChildrenInRank(id string, rank int) []string {
	return g.filterRank(g.outgoing[id], rank)
}

// ParentsInRank returns the parents of id that sit in rank.
func (g *Graph) ParentsInRank(id string, rank int) []string {
	return g.filterRank(g.incoming[id], rank)
}

func (g *Graph) filterRank(ids []string, rank int) []string {
	var out []string
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok && n.Rank == rank {
			out = append(out, id)
		}
	}
	return out
}

// NodesInRank returns the nodes of one rank in insertion order. The slice
// must not be modified.
func (g *Graph) NodesInRank(rank int) []*Node { return g.ranks[rank] }

// RankIDs returns the occupied ranks in ascending order.
func (g *Graph) RankIDs() []int {
	return slices.Sorted(maps.Keys(g.ranks))
}

// MaxRank returns the highest occupied rank, or 0 for an empty graph.
func (g *Graph) MaxRank() int {
	ids := g.RankIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Sources returns the nodes without incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var out []*Node
	for _, n := range g.order {
		if len(g.incoming[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks that every edge joins existing nodes and that every
// forward edge (target rank above source rank) spans exactly one rank.
// Backward and same-rank edges are permitted.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		src, okS := g.nodes[e.From]
		dst, okD := g.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Rank > src.Rank+1 {
			return ErrNonConsecutiveRanks
		}
	}
	return nil
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.order))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, c := range g.outgoing[id] {
			switch color[c] {
			case gray:
				return true
			case white:
				if visit(c) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, n := range g.order {
		if color[n.ID] == white && visit(n.ID) {
			return true
		}
	}
	return false
}

// PosMap maps each id to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ids of nodes, keeping their order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
