package graph

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/relgraph/pkg/doctype"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/resolve"
)

func sample() *Graph {
	recs := []record.Record{
		{
			ID: "0:0", Table: "RELATORIO", Key: "1", Label: record.Label("RELATORIO", "1"),
			Attributes: record.NewAttributes(
				record.Attr{Name: "NR_SEQUENCIA", Value: "1"},
				record.Attr{Name: "DS_TITULO", Value: "Vendas"},
			),
			Children: []record.Child{{Name: "DS_SQL", Content: "select 1", CDATA: true}},
		},
		{
			ID: "1:0", Table: "BANDA", Key: "2", Label: record.Label("BANDA", "2"),
			Attributes: record.NewAttributes(
				record.Attr{Name: "NR_SEQUENCIA", Value: "2"},
				record.Attr{Name: "NR_SEQ_RELATORIO", Value: "1"},
				record.Attr{Name: "DS_BANDA", Value: "Header"},
			),
		},
	}
	return &Graph{
		Name:    "report.xml",
		Type:    doctype.Report,
		Title:   "Vendas",
		Records: recs,
		Edges:   resolve.Resolve(recs, record.BuildIndex(recs), doctype.Report),
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := sample()
	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"type": "report"`)) {
		t.Errorf("type not serialized as text:\n%s", data)
	}
	if i, j := bytes.Index(data, []byte("NR_SEQ_RELATORIO")), bytes.Index(data, []byte("DS_BANDA")); i > j {
		t.Error("attribute order lost in JSON")
	}

	got, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != doctype.Report || got.Title != "Vendas" || got.Name != "report.xml" {
		t.Errorf("header = %+v", got)
	}
	for i := range g.Records {
		if !got.Records[i].Equal(&g.Records[i]) {
			t.Errorf("record %d differs: %+v", i, got.Records[i])
		}
	}
	if !slices.Equal(got.Edges, g.Edges) {
		t.Errorf("edges = %+v", got.Edges)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.graph.json")
	if err := WriteGraphFile(sample(), path); err != nil {
		t.Fatal(err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Records) != 2 || len(g.Edges) != 1 {
		t.Errorf("got %d records, %d edges", len(g.Records), len(g.Edges))
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadGraphValidates(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad id", `{"type":"report","records":[{"id":"x"}],"edges":[]}`},
		{"duplicate id", `{"type":"report","records":[{"id":"0:0"},{"id":"0:0"}],"edges":[]}`},
		{"dangling edge", `{"type":"report","records":[{"id":"0:0"}],"edges":[{"id":"0:0->0:1","source":"0:0","target":"0:1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.json))
			if !errors.IsValidation(err) {
				t.Errorf("ReadGraph() = %v, want validation error", err)
			}
		})
	}
	if _, err := ReadGraph(strings.NewReader(`{`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestGraphAccessors(t *testing.T) {
	g := sample()

	if ids := g.NodeIDs(); !slices.Equal(ids, []string{"0:0", "1:0"}) {
		t.Errorf("NodeIDs() = %v", ids)
	}
	if e := g.LayoutEdges(); len(e) != 1 || e[0] != (layout.Edge{Source: "0:0", Target: "1:0"}) {
		t.Errorf("LayoutEdges() = %v", e)
	}
	if r, ok := g.Record("1:0"); !ok || g.Summary(r) != "Header" {
		t.Errorf("Summary = %q", g.Summary(r))
	}
	if _, ok := g.Record("9:9"); ok {
		t.Error("unknown record found")
	}
	if c := g.Neighbors("0:0"); !slices.Equal(c.Children, []string{"1:0"}) {
		t.Errorf("Neighbors = %+v", c)
	}
	if ix := g.Index(); ix["2"] != "1:0" {
		t.Errorf("Index = %v", ix)
	}
}

func TestClone(t *testing.T) {
	g := sample()
	cp := g.Clone()
	cp.Records[0].Attributes.Set("DS_TITULO", "changed")
	cp.Records[0].Children[0].Content = "changed"
	cp.Edges[0].Attr = "changed"

	if g.Records[0].Attributes.Value("DS_TITULO") != "Vendas" ||
		g.Records[0].Children[0].Content != "select 1" ||
		g.Edges[0].Attr != "NR_SEQ_RELATORIO" {
		t.Error("Clone shares state with the original")
	}
}

func TestApplyEdits(t *testing.T) {
	g := sample()
	edits, err := ReadEdits(strings.NewReader(`[
		{"id": "0:0", "attributes": {"NR_SEQUENCIA": "1", "DS_TITULO": "Compras"}},
		{"id": "1:0", "children": [{"name": "DS_COR", "content": "azul", "cdata": false}]}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.ApplyEdits(edits); err != nil {
		t.Fatal(err)
	}

	r0, _ := g.Record("0:0")
	if r0.Attributes.Value("DS_TITULO") != "Compras" || len(r0.Children) != 1 {
		t.Errorf("record 0:0 = %+v", r0)
	}
	r1, _ := g.Record("1:0")
	if r1.Attributes.Value("DS_BANDA") != "Header" {
		t.Error("attributes should be kept when the edit omits them")
	}
	if len(r1.Children) != 1 || r1.Children[0].Name != "DS_COR" {
		t.Errorf("children = %+v", r1.Children)
	}
	if len(g.Edges) != 1 {
		t.Error("edits must not recompute edges")
	}
}

func TestApplyEditsRelabels(t *testing.T) {
	tests := []struct {
		name      string
		attrs     []record.Attr
		wantKey   string
		wantLabel string
	}{
		{"new key", []record.Attr{{Name: "NR_SEQUENCIA", Value: "7"}}, "7", "Tabela: BANDA, NR_SEQUENCIA: 7"},
		{"key removed", []record.Attr{{Name: "DS_BANDA", Value: "Header"}}, "Record 1", "Tabela: BANDA, NR_SEQUENCIA: Record 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sample()
			attrs := record.NewAttributes(tt.attrs...)
			if err := g.ApplyEdits([]Edit{{ID: "1:0", Attributes: &attrs}}); err != nil {
				t.Fatal(err)
			}
			r, _ := g.Record("1:0")
			if r.Key != tt.wantKey || r.Label != tt.wantLabel {
				t.Errorf("key, label = %q, %q, want %q, %q", r.Key, r.Label, tt.wantKey, tt.wantLabel)
			}
			if l := NewLayout(g, layout.Result{}); l.Labels["1:0"] != tt.wantLabel {
				t.Errorf("layout label = %q", l.Labels["1:0"])
			}
		})
	}
}

func TestApplyEditsAtomic(t *testing.T) {
	g := sample()
	attrs := record.NewAttributes(record.Attr{Name: "NR_SEQUENCIA", Value: "9"})
	err := g.ApplyEdits([]Edit{{ID: "0:0", Attributes: &attrs}, {ID: "5:5"}})
	if !errors.Is(err, errors.ErrCodeRecordNotFound) {
		t.Fatalf("err = %v", err)
	}
	if r, _ := g.Record("0:0"); r.Attributes.Value("NR_SEQUENCIA") != "1" {
		t.Error("failed ApplyEdits modified the graph")
	}

	if err := g.ApplyEdits([]Edit{{ID: "bad"}}); !errors.Is(err, errors.ErrCodeInvalidEdit) {
		t.Errorf("bad id: %v", err)
	}
	if _, err := ReadEdits(strings.NewReader(`{"id":"0:0"}`)); !errors.Is(err, errors.ErrCodeInvalidEdit) {
		t.Errorf("non-list edits: %v", err)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	g := sample()
	res := layout.Compute(g.NodeIDs(), g.LayoutEdges(), layout.Options{})
	l := NewLayout(g, res)
	if l.Labels["1:0"] != "Tabela: BANDA, NR_SEQUENCIA: 2" {
		t.Errorf("labels = %v", l.Labels)
	}

	path := filepath.Join(t.TempDir(), "g.layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := MarshalLayout(l)
	have, _ := MarshalLayout(got)
	if !bytes.Equal(want, have) {
		t.Errorf("layout changed on round trip:\n%s\n%s", want, have)
	}
	if _, err := UnmarshalLayout([]byte("nope")); err == nil {
		t.Error("expected error")
	}
}
