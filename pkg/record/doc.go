// Package record extracts typed records from relational XML documents.
//
// A source document groups rows into Tabela elements, each holding registro
// elements. Every registro becomes a [Record]: its attributes are kept in
// source order in an [Attributes] map, and each child element is captured as a
// [Child] with its text content and a flag telling whether the content was a
// CDATA block.
//
// # Identity
//
// Record ids have the form "<table-index>:<record-index>" and are stable for a
// given document. The NR_SEQUENCIA attribute is the key that foreign-key
// attributes of other records refer to. [Extract] returns an [Index] from key
// value to record id; when two records share a key the later one wins. Records
// without a key get the synthetic key "Record <n>" and never enter the index,
// so nothing can link to them and they cannot be patched back.
package record
