package pipeline

import (
	"github.com/matzehuels/relgraph/pkg/doctype"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/resolve"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// ExtractGraph classifies doc, extracts its records and resolves the edges
// between them. A document whose root is neither TEMPLATE nor RELATORIOS
// fails with a VALIDATION_ERROR.
//
// The title is the type's title field on the first record (child element
// content, else attribute), or "".
func ExtractGraph(doc *xmldoc.Document) (*graph.Graph, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInput, "no document")
	}
	typ, err := doctype.Classify(doc.Tree())
	if err != nil {
		return nil, err
	}

	res := record.Extract(doc.Tree())
	g := &graph.Graph{
		Name:       doc.Name,
		Type:       typ,
		Records:    res.Records,
		Edges:      resolve.Resolve(res.Records, res.Index, typ),
		Duplicates: res.Duplicates,
	}
	if g.Records == nil {
		g.Records = []record.Record{}
	}
	if g.Edges == nil {
		g.Edges = []resolve.Edge{}
	}
	if len(g.Records) > 0 {
		g.Title = g.Records[0].Field(typ.TitleField())
	}
	return g, nil
}

// LoadGraph loads a named upload and extracts its graph.
func LoadGraph(name string, data []byte, opts xmldoc.Options) (*xmldoc.Document, *graph.Graph, error) {
	doc, err := xmldoc.Load(name, data, opts)
	if err != nil {
		return nil, nil, err
	}
	g, err := ExtractGraph(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, g, nil
}
