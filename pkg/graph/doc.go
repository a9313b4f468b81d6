// Package graph provides the serialization types for extracted record graphs
// and their layouts.
//
// # Core Types
//
//   - [Graph]: document type, title, records and edges of one load
//   - [Layout]: a layout result plus the record labels a renderer needs
//   - [Edit]: a replacement of one record's attributes and/or children
//
// # Graph Serialization
//
// Graphs are written as indented JSON. Record attributes keep their source
// order in the JSON object:
//
//	{
//	  "type": "report",
//	  "records": [{"id": "0:0", "attributes": {"NR_SEQUENCIA": "1"}, ...}],
//	  "edges": [{"id": "0:0->0:1", "source": "0:0", "target": "0:1", "attr": "NR_SEQ_RELATORIO"}]
//	}
//
// [ReadGraph] validates what it decodes: record ids must be unique and every
// edge must join two known records.
//
// # Edits
//
// An edits file is a JSON list of [Edit] values. [Graph.ApplyEdits] replaces
// the data of the named records; the edges stay as they were extracted.
package graph
