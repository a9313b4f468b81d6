package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/record"
)

// Edit replaces the data of one record. A nil Attributes or Children leaves
// that part of the record as it is; an empty one clears it.
type Edit struct {
	ID         string             `json:"id"`
	Attributes *record.Attributes `json:"attributes,omitempty"`
	Children   []record.Child     `json:"children,omitempty"`
}

// ApplyEdits applies edits to g's records in order. Key and label follow the
// edited attributes; edges are not recomputed, they belong to the load that
// produced g. All ids are checked
// before anything changes, so a failed call leaves g untouched.
func (g *Graph) ApplyEdits(edits []Edit) error {
	for _, e := range edits {
		if err := errors.ValidateRecordID(e.ID); err != nil {
			return err
		}
		if _, ok := g.Record(e.ID); !ok {
			return errors.New(errors.ErrCodeRecordNotFound, "record %s not found", e.ID)
		}
	}
	for _, e := range edits {
		r, _ := g.Record(e.ID)
		if e.Attributes != nil {
			r.Attributes = e.Attributes.Clone()
			r.Relabel()
		}
		if e.Children != nil {
			r.Children = slices.Clone(e.Children)
		}
	}
	return nil
}

// ReadEdits decodes a JSON list of edits.
func ReadEdits(r io.Reader) ([]Edit, error) {
	var edits []Edit
	if err := json.NewDecoder(r).Decode(&edits); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidEdit, err, "decode edits")
	}
	return edits, nil
}

// ReadEditsFile reads a JSON edits file.
func ReadEditsFile(path string) ([]Edit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEdits(f)
}
