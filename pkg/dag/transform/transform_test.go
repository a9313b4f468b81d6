package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/relgraph/pkg/dag"
)

func graphOf(t *testing.T, nodes []string, edges [][2]string) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, id := range nodes {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func ranksOf(g *dag.Graph) map[string]int {
	out := make(map[string]int)
	for _, n := range g.Nodes() {
		out[n.ID] = n.Rank
	}
	return out
}

func TestAssignRanks(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name:  "chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "longest path wins",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"c", "d"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2, "d": 3},
		},
		{
			name:  "edges listed child first",
			nodes: []string{"c", "b", "a"},
			edges: [][2]string{{"b", "c"}, {"a", "b"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "isolated nodes",
			nodes: []string{"x", "y"},
			want:  map[string]int{"x": 0, "y": 0},
		},
		{
			name:  "unreachable cycle takes highest rank",
			nodes: []string{"r", "s", "p", "q"},
			edges: [][2]string{{"r", "s"}, {"p", "q"}, {"q", "p"}},
			want:  map[string]int{"r": 0, "s": 1, "p": 1, "q": 1},
		},
		{
			name:  "pure cycle",
			nodes: []string{"p", "q", "r"},
			edges: [][2]string{{"p", "q"}, {"q", "r"}, {"r", "p"}},
			want:  map[string]int{"p": 0, "q": 0, "r": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphOf(t, tt.nodes, tt.edges)
			AssignRanks(g)
			got := ranksOf(g)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("rank(%s) = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestAssignRanksCycleIsBounded(t *testing.T) {
	g := graphOf(t, []string{"root", "a", "b", "c"},
		[][2]string{{"root", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}})

	if sweeps := AssignRanks(g); sweeps > g.NodeCount() {
		t.Errorf("sweeps = %d, want at most %d", sweeps, g.NodeCount())
	}
	ranks := ranksOf(g)
	if ranks["root"] != 0 {
		t.Errorf("root rank = %d", ranks["root"])
	}
	if ranks["a"] <= ranks["root"] {
		t.Errorf("rank(a)=%d should exceed rank(root)=%d", ranks["a"], ranks["root"])
	}
	for _, r := range g.RankIDs() {
		if len(g.NodesInRank(r)) == 0 {
			t.Errorf("rank %d is empty", r)
		}
	}
	if want := g.RankIDs(); want[len(want)-1] != len(want)-1 {
		t.Errorf("ranks not compact: %v", want)
	}
}

func TestAssignRanksForwardEdgesIncrease(t *testing.T) {
	g := graphOf(t, []string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "c"}, {"b", "c"}, {"c", "e"}, {"a", "d"}, {"d", "e"}, {"b", "e"}})
	AssignRanks(g)
	ranks := ranksOf(g)
	for _, e := range g.Edges() {
		if ranks[e.To] <= ranks[e.From] {
			t.Errorf("edge %s->%s: rank %d -> %d", e.From, e.To, ranks[e.From], ranks[e.To])
		}
	}
}

func TestSubdivide(t *testing.T) {
	g := graphOf(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}})
	AssignRanks(g)
	Subdivide(g)

	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() after Subdivide: %v", err)
	}
	if g.HasEdge("a", "d") {
		t.Error("long edge a->d should be replaced")
	}

	var virtual []string
	for _, n := range g.Nodes() {
		if n.IsVirtual() {
			virtual = append(virtual, n.ID)
			if n.Origin != "a->d" {
				t.Errorf("%s origin = %q", n.ID, n.Origin)
			}
		}
	}
	if !slices.Equal(virtual, []string{"a->d#1", "a->d#2"}) {
		t.Errorf("virtual nodes = %v", virtual)
	}
	if !slices.Equal(g.Children("a->d#2"), []string{"d"}) {
		t.Errorf("chain does not end at d: %v", g.Children("a->d#2"))
	}
}

func TestSubdivideLeavesBackEdges(t *testing.T) {
	g := graphOf(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	AssignRanks(g)
	before := g.NodeCount()
	Subdivide(g)
	if g.NodeCount() != before {
		t.Errorf("back edge was subdivided: %d nodes, want %d", g.NodeCount(), before)
	}
}

func TestSubdivideIDCollision(t *testing.T) {
	g := graphOf(t, []string{"a", "b", "c", "a->c#1"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	AssignRanks(g)
	Subdivide(g)
	if _, ok := g.Node("a->c#1_1"); !ok {
		t.Error("expected suffixed virtual id on collision")
	}
}
