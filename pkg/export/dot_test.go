package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/relgraph/pkg/doctype"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/resolve"
)

func templateGraph() *graph.Graph {
	recs := []record.Record{
		{
			ID: "0:0", Table: "TEMPLATE", Key: "10", Label: record.Label("TEMPLATE", "10"),
			Attributes: record.NewAttributes(
				record.Attr{Name: "NR_SEQUENCIA", Value: "10"},
				record.Attr{Name: "DS_TEMPLATE", Value: "Evolução"},
			),
		},
		{
			ID: "1:0", Table: "TEMPLATE_ITEM", Key: "11", Label: record.Label("TEMPLATE_ITEM", "11"),
			Attributes: record.NewAttributes(
				record.Attr{Name: "NR_SEQUENCIA", Value: "11"},
				record.Attr{Name: "NR_SEQ_TEMPLATE", Value: "10"},
				record.Attr{Name: "DS_LABEL", Value: "Queixa"},
			),
		},
		{
			ID: "1:1", Table: "TEMPLATE_ITEM", Key: "Record 2", Label: record.Label("TEMPLATE_ITEM", "Record 2"),
		},
	}
	return &graph.Graph{
		Type:    doctype.Template,
		Title:   "Evolução",
		Records: recs,
		Edges:   resolve.Resolve(recs, record.BuildIndex(recs), doctype.Template),
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(templateGraph(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`label="Evolução";`,
		`"0:0" [label="Tabela: TEMPLATE, NR_SEQUENCIA: 10"];`,
		`"0:0" -> "1:0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if !strings.Contains(dot, `"1:1" [label="Tabela: TEMPLATE_ITEM, NR_SEQUENCIA: Record 2", style="rounded,filled,dashed"`) {
		t.Errorf("keyless record not marked:\n%s", dot)
	}
	if strings.Contains(dot, "Queixa") {
		t.Error("summary shown without Detailed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(templateGraph(), Options{Direction: layout.LeftToRight, Detailed: true})
	for _, want := range []string{
		"rankdir=LR;",
		`label="Tabela: TEMPLATE_ITEM, NR_SEQUENCIA: 11\nQueixa"`,
		`"0:0" -> "1:0" [label="NR_SEQ_TEMPLATE"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Evolução", `"Evolução"`},
		{`a "b" c`, `"a \"b\" c"`},
		{`C:\dir`, `"C:\\dir"`},
		{"one\ntwo", `"one\ntwo"`},
		{"tab\there", "\"tab\there\""},
		{"bell\x07", "\"bell\x07\""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := quote(tt.in); got != tt.want {
				t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestToDOTKeepsRawRunes(t *testing.T) {
	g := templateGraph()
	g.Title = "Evolução\u200b médica"
	dot := ToDOT(g, Options{})
	if strings.Contains(dot, `\u`) {
		t.Errorf("DOT contains a Go unicode escape:\n%s", dot)
	}
	if !strings.Contains(dot, "label=\"Evolução\u200b médica\";") {
		t.Errorf("title not written as is:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := templateGraph()
	first := ToDOT(g, Options{Detailed: true})
	for range 5 {
		if ToDOT(g, Options{Detailed: true}) != first {
			t.Fatal("ToDOT output changed between calls")
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{FormatDOT, false},
		{FormatSVG, false},
		{"png", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) = %v", tt.format, err)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidOption) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := Render(context.Background(), templateGraph(), FormatSVG, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("unexpected SVG header:\n%.300s", svg)
	}
	if !bytes.Contains(svg, []byte("NR_SEQUENCIA: 10")) {
		t.Error("SVG is missing node labels")
	}
}

func TestRenderDOT(t *testing.T) {
	g := templateGraph()
	data, err := Render(context.Background(), g, FormatDOT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ToDOT(g, Options{}) {
		t.Error("Render(dot) differs from ToDOT")
	}
	if _, err := Render(context.Background(), g, "pdf", Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg>")); string(out) != "<svg>" {
		t.Errorf("svg without viewBox changed: %s", out)
	}
}

func ExampleToDOT() {
	g := templateGraph()
	g.Records = g.Records[:2]
	g.Title = ""
	fmt.Print(ToDOT(g, Options{}))
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "0:0" [label="Tabela: TEMPLATE, NR_SEQUENCIA: 10"];
	//   "1:0" [label="Tabela: TEMPLATE_ITEM, NR_SEQUENCIA: 11"];
	//
	//   "0:0" -> "1:0";
	// }
}
