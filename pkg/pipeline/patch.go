package pipeline

import (
	"github.com/matzehuels/relgraph/pkg/patch"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// PatchAndSerialize writes records back into a copy of src and returns the
// whole document as text. Records that match no element are skipped.
func PatchAndSerialize(src *xmldoc.Document, records []record.Record) (string, error) {
	text, _, err := patch.Serialize(src, records)
	return text, err
}
