package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/relgraph/pkg/errors"
)

func chainEdges(pairs ...string) []Edge {
	var out []Edge
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Edge{Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func mustPos(t *testing.T, r Result, id string) NodePosition {
	t.Helper()
	p, ok := r.Position(id)
	if !ok {
		t.Fatalf("no position for %s", id)
	}
	return p
}

func TestComputeTwoRecords(t *testing.T) {
	r := Compute([]string{"0:0", "0:1"}, chainEdges("0:0", "0:1"), Options{})

	one, two := mustPos(t, r, "0:0"), mustPos(t, r, "0:1")
	if one.Rank != 0 || two.Rank != 1 {
		t.Errorf("ranks = %d, %d; want 0, 1", one.Rank, two.Rank)
	}
	if two.Y <= one.Y {
		t.Errorf("y(0:1)=%v should exceed y(0:0)=%v", two.Y, one.Y)
	}
	if one.Y != 0 || two.Y != DefaultNodeHeight+DefaultRankGap {
		t.Errorf("y = %v, %v; want 0, %v", one.Y, two.Y, DefaultNodeHeight+DefaultRankGap)
	}
	if one.X != 0 || two.X != 0 {
		t.Errorf("x = %v, %v; want 0, 0", one.X, two.X)
	}
	if r.Width != DefaultNodeWidth || r.Height != 2*DefaultNodeHeight+DefaultRankGap {
		t.Errorf("size = %vx%v", r.Width, r.Height)
	}
	if one.Inbound != SideTop || one.Outbound != SideBottom {
		t.Errorf("sides = %s/%s", one.Inbound, one.Outbound)
	}
}

func TestComputeLeftToRight(t *testing.T) {
	r := Compute([]string{"a", "b"}, chainEdges("a", "b"), Options{Direction: LeftToRight})

	a, b := mustPos(t, r, "a"), mustPos(t, r, "b")
	if b.X != DefaultNodeWidth+DefaultRankGap || b.Y != 0 || a.X != 0 {
		t.Errorf("positions a=(%v,%v) b=(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
	if a.Inbound != SideLeft || a.Outbound != SideRight {
		t.Errorf("sides = %s/%s", a.Inbound, a.Outbound)
	}
	if r.Width != 2*DefaultNodeWidth+DefaultRankGap || r.Height != DefaultNodeHeight {
		t.Errorf("size = %vx%v", r.Width, r.Height)
	}
	if r.Direction != LeftToRight {
		t.Errorf("Direction = %s", r.Direction)
	}
}

func TestComputeDeterministic(t *testing.T) {
	nodes := []string{"0:0", "0:1", "0:2", "1:0", "1:1", "1:2", "2:0", "2:1"}
	edges := chainEdges(
		"0:0", "1:2", "0:1", "1:0", "0:2", "1:1", "0:0", "1:0",
		"1:0", "2:1", "1:1", "2:0", "1:2", "2:0", "0:1", "2:1",
	)
	for _, dir := range []Direction{TopToBottom, LeftToRight} {
		first, _ := json.Marshal(Compute(nodes, edges, Options{Direction: dir}))
		for i := 0; i < 25; i++ {
			got, _ := json.Marshal(Compute(nodes, edges, Options{Direction: dir}))
			if !bytes.Equal(first, got) {
				t.Fatalf("%s run %d differs:\n%s\n%s", dir, i, first, got)
			}
		}
	}
}

func TestComputeRankIncreasesAlongEdges(t *testing.T) {
	nodes := []string{"a", "b", "c", "d", "e", "f"}
	edges := chainEdges("a", "b", "b", "c", "a", "c", "d", "e", "c", "f", "e", "f")
	r := Compute(nodes, edges, Options{})
	for _, e := range edges {
		src, dst := mustPos(t, r, e.Source), mustPos(t, r, e.Target)
		if dst.Rank <= src.Rank || dst.Y <= src.Y {
			t.Errorf("%s->%s: rank %d->%d, y %v->%v", e.Source, e.Target, src.Rank, dst.Rank, src.Y, dst.Y)
		}
	}
}

func TestComputeNoOverlap(t *testing.T) {
	nodes := []string{"r", "a", "b", "c", "d"}
	edges := chainEdges("r", "a", "r", "b", "r", "c", "r", "d")
	for _, dir := range []Direction{TopToBottom, LeftToRight} {
		opts := Options{Direction: dir}.WithDefaults()
		r := Compute(nodes, edges, opts)
		for i, p := range r.Nodes {
			for _, q := range r.Nodes[i+1:] {
				if p.Rank != q.Rank {
					continue
				}
				var gap, need float64
				if dir == TopToBottom {
					gap, need = math.Abs(p.X-q.X), opts.NodeWidth+opts.NodeGap
				} else {
					gap, need = math.Abs(p.Y-q.Y), opts.NodeHeight+opts.NodeGap
				}
				if gap < need {
					t.Errorf("%s: %s and %s are %v apart, need %v", dir, p.ID, q.ID, gap, need)
				}
			}
		}
	}
}

func TestComputeCentersRanks(t *testing.T) {
	r := Compute([]string{"root", "a", "b"}, chainEdges("root", "a", "root", "b"), Options{})
	root := mustPos(t, r, "root")
	want := (2*DefaultNodeWidth + DefaultNodeGap - DefaultNodeWidth) / 2.0
	if root.X != want {
		t.Errorf("root x = %v, want %v", root.X, want)
	}
	if r.Width != 2*DefaultNodeWidth+DefaultNodeGap {
		t.Errorf("Width = %v", r.Width)
	}
}

func TestComputeDegenerate(t *testing.T) {
	t.Run("no nodes", func(t *testing.T) {
		r := Compute(nil, nil, Options{})
		if len(r.Nodes) != 0 || r.Width != 0 || r.Height != 0 || r.Ranks != 0 {
			t.Errorf("Compute(nil) = %+v", r)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		nodes := []string{"root", "a", "b", "c"}
		r := Compute(nodes, chainEdges("root", "a", "a", "b", "b", "c", "c", "a"), Options{})
		if len(r.Nodes) != len(nodes) {
			t.Fatalf("got %d positions, want %d", len(r.Nodes), len(nodes))
		}
		if root := mustPos(t, r, "root"); root.Rank != 0 {
			t.Errorf("root rank = %d", root.Rank)
		}
	})

	t.Run("pure cycle", func(t *testing.T) {
		r := Compute([]string{"a", "b"}, chainEdges("a", "b", "b", "a"), Options{})
		if len(r.Nodes) != 2 {
			t.Fatalf("got %d positions", len(r.Nodes))
		}
	})

	t.Run("ignored edges", func(t *testing.T) {
		r := Compute([]string{"a", "b", "a", ""}, chainEdges("a", "a", "a", "x", "a", "b", "a", "b"), Options{})
		if len(r.Nodes) != 2 {
			t.Errorf("nodes = %+v", r.Nodes)
		}
		if len(r.Edges) != 1 {
			t.Errorf("edges = %+v", r.Edges)
		}
	})

	t.Run("disconnected", func(t *testing.T) {
		r := Compute([]string{"a", "b", "c"}, nil, Options{})
		for _, p := range r.Nodes {
			if p.Rank != 0 {
				t.Errorf("%s rank = %d", p.ID, p.Rank)
			}
		}
		if a, c := mustPos(t, r, "a"), mustPos(t, r, "c"); a.X >= c.X {
			t.Errorf("input order not kept: a.x=%v c.x=%v", a.X, c.X)
		}
	})
}

func TestComputeRoutesLongEdges(t *testing.T) {
	r := Compute([]string{"a", "b", "c"}, chainEdges("a", "b", "b", "c", "a", "c"), Options{})
	for _, e := range r.Edges {
		want := 2
		if e.Source == "a" && e.Target == "c" {
			want = 3
		}
		if len(e.Points) != want {
			t.Errorf("%s->%s has %d points, want %d", e.Source, e.Target, len(e.Points), want)
		}
	}
	for _, n := range r.Nodes {
		if n.ID != "a" && n.ID != "b" && n.ID != "c" {
			t.Errorf("virtual node %s leaked into result", n.ID)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", TopToBottom, false},
		{"TB", TopToBottom, false},
		{"tb", TopToBottom, false},
		{"top-to-bottom", TopToBottom, false},
		{"LR", LeftToRight, false},
		{"Left-To-Right", LeftToRight, false},
		{"RL", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.wantErr && errors.GetCode(err) != errors.ErrCodeInvalidOption {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"defaults", DefaultOptions(), false},
		{"bad direction", Options{Direction: "BT"}, true},
		{"negative width", Options{NodeWidth: -1}, true},
		{"negative gap", Options{RankGap: -5}, true},
		{"negative passes", Options{Passes: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectionText(t *testing.T) {
	var d Direction
	if err := json.Unmarshal([]byte(`"lr"`), &d); err != nil || d != LeftToRight {
		t.Errorf("unmarshal = %q, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`"up"`), &d); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func ExampleCompute() {
	r := Compute(
		[]string{"0:0", "0:1"},
		[]Edge{{Source: "0:0", Target: "0:1"}},
		Options{Direction: TopToBottom},
	)
	for _, n := range r.Nodes {
		fmt.Printf("%s rank=%d x=%v y=%v\n", n.ID, n.Rank, n.X, n.Y)
	}
	fmt.Println("size:", r.Width, r.Height)
	// Output:
	// 0:0 rank=0 x=0 y=0
	// 0:1 rank=1 x=0 y=100
	// size: 600 150
}
