// Package export writes record graphs in Graphviz formats.
//
// [ToDOT] produces a DOT digraph with one box per record, labelled
// "Tabela: <table>, NR_SEQUENCIA: <key>", and one arrow per resolved foreign
// key. With [Options.Detailed] the box also shows the record's summary
// attribute (DS_LABEL or DS_BANDA) and the arrows name the attribute that
// produced them.
//
// [RenderSVG] lays the DOT out in process with [github.com/goccy/go-graphviz]
// (a WebAssembly build of Graphviz), so no dot binary needs to be installed.
package export
