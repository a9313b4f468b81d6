// Package pkg holds the relgraph libraries.
//
// # Overview
//
// relgraph reads XML exports of report and EHR template definitions. Each
// export is a set of <Tabela> elements whose <registro> children are table
// rows; foreign-key attributes such as NR_SEQ_RELATORIO point at the
// NR_SEQUENCIA of another row. The libraries turn such a document into a
// graph, lay the graph out in ranks and write edited rows back:
//
//	XML bytes (ISO-8859-1)
//	      ↓
//	 [xmldoc]    decode and parse, keeping CDATA sections
//	      ↓
//	 [doctype]   classify by root element
//	      ↓
//	 [record]    one record per <registro>, in document order
//	      ↓
//	 [resolve]   foreign-key edges between records
//	      ↓
//	 [layout]    ranks, crossing reduction, coordinates (TB or LR)
//	      ↓
//	 [patch]     write records back into a copy of the source
//
// [pipeline] runs these steps with caching ([cache]) and observability
// hooks ([observability]). [graph] is the JSON form of an extracted graph
// and its layout, [export] renders graphs as DOT or SVG, and [session]
// keeps uploaded documents for the HTTP server.
//
// # Quick Start
//
//	doc, _ := xmldoc.ReadFile("report.xml", xmldoc.Options{})
//	g, _ := pipeline.ExtractGraph(doc)
//	res := pipeline.Layout(g.NodeIDs(), g.LayoutEdges(), layout.LeftToRight)
//	out, _ := pipeline.PatchAndSerialize(doc, g.Records)
//
// [xmldoc]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/xmldoc
// [doctype]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/doctype
// [record]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/record
// [resolve]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/resolve
// [layout]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/layout
// [patch]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/patch
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/observability
// [graph]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/graph
// [export]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/export
// [session]: https://pkg.go.dev/github.com/matzehuels/relgraph/pkg/session
package pkg
