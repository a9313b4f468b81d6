package record

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// Result is the output of Extract.
type Result struct {
	Records []Record
	Index   Index
	// Duplicates lists key values seen on more than one record, in the order
	// the repeat was found. The index keeps the last occurrence of each.
	Duplicates []string
}

// Extract walks every Tabela element of tree in document order and every
// registro element inside it, producing one Record per registro.
//
// Record ids are "<table-index>:<record-index>". Attributes keep their source
// order. Each child element contributes a [Child] whose content is its text
// content and whose CDATA flag reflects its first token. Records without a
// NR_SEQUENCIA attribute get the synthetic key "Record <n>" and are left out
// of the index.
func Extract(tree *etree.Document) Result {
	res := Result{Index: make(Index)}
	if tree == nil || tree.Root() == nil {
		return res
	}

	for t, table := range tree.FindElements("//" + TableTag) {
		tableName := table.SelectAttrValue(TableNameAttr, "")
		if tableName == "" {
			tableName = fmt.Sprintf(syntheticTable, t+1)
		}
		for r, el := range table.FindElements(".//" + RecordTag) {
			rec := extractRecord(el, t, r, tableName)
			if key, ok := rec.Attributes.Get(KeyAttr); ok {
				if _, seen := res.Index[key]; seen {
					res.Duplicates = append(res.Duplicates, key)
				}
				res.Index[key] = rec.ID
			}
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

func extractRecord(el *etree.Element, t, r int, tableName string) Record {
	rec := Record{
		ID:    ID(t, r),
		Table: tableName,
	}
	for _, a := range el.Attr {
		rec.Attributes.Set(a.FullKey(), a.Value)
	}

	rec.Relabel()

	for _, child := range el.ChildElements() {
		rec.Children = append(rec.Children, Child{
			Name:    child.FullTag(),
			Content: xmldoc.TextContent(child),
			CDATA:   xmldoc.IsCData(child),
		})
	}
	return rec
}
