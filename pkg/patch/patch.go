// Package patch writes edited records back into a copy of their source
// document.
//
// The pristine [xmldoc.Document] is never touched: [Serialize] clones its
// tree, [Apply] patches the clone, and the whole clone is serialized. Output
// is always a complete document, however few records changed.
//
// A record is matched to the first registro element whose NR_SEQUENCIA
// equals the record's key. Records without a key, or whose key matches no
// element, are skipped and listed in [Report.Skipped]; a skip never fails
// the serialization.
package patch

import (
	"github.com/beevik/etree"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/record"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// Download contract of a serialized document.
const (
	OutputFilename = "updated.xml"
	ContentType    = "application/xml"
)

// Report describes what [Apply] did.
type Report struct {
	Patched           []string `json:"patched"` // record ids written back
	Skipped           []string `json:"skipped"` // record ids with no matching element
	AttributesChanged int      `json:"attributes_changed"`
	ChildrenWritten   int      `json:"children_written"`
	ChildrenCreated   int      `json:"children_created"`
}

// Apply patches tree in place with the data of records.
//
// For each located element, attributes are set only when their value differs
// from the element's current one; attributes absent from the record are left
// alone. Every child entry replaces the content of the first descendant with
// that tag, appending a new child element when there is none. The content is
// written as a CDATA section or as escaped text according to the entry's
// flag.
func Apply(tree *etree.Document, records []record.Record) Report {
	var rep Report
	elements := firstByKey(tree)

	for i := range records {
		rec := &records[i]
		key := rec.Attributes.Value(record.KeyAttr)
		el, ok := elements[key]
		if key == "" || !ok {
			rep.Skipped = append(rep.Skipped, rec.ID)
			continue
		}

		for name, value := range rec.Attributes.All() {
			if cur := el.SelectAttr(name); cur == nil || cur.Value != value {
				el.CreateAttr(name, value)
				rep.AttributesChanged++
			}
		}

		for _, c := range rec.Children {
			child := findDescendant(el, c.Name)
			if child == nil {
				child = el.CreateElement(c.Name)
				rep.ChildrenCreated++
			}
			xmldoc.SetContent(child, c.Content, c.CDATA)
			rep.ChildrenWritten++
		}
		rep.Patched = append(rep.Patched, rec.ID)
	}
	return rep
}

// Serialize clones src, applies records and returns the serialized text.
// The text keeps the source's XML declaration; use [Encode] for bytes in the
// document's own charset.
func Serialize(src *xmldoc.Document, records []record.Record) (string, Report, error) {
	return render(src, records, "UTF-8")
}

// Encode is [Serialize] followed by conversion to the source charset, ready
// to be offered as OutputFilename. CDATA content the charset cannot hold is
// split out of its section and written as character references.
func Encode(src *xmldoc.Document, records []record.Record) ([]byte, Report, error) {
	if src == nil {
		return nil, Report{}, errors.New(errors.ErrCodeInput, "no source document")
	}
	text, rep, err := render(src, records, src.Encoding)
	if err != nil {
		return nil, rep, err
	}
	out, err := src.Encode(text)
	if err != nil {
		return nil, rep, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return out, rep, nil
}

func render(src *xmldoc.Document, records []record.Record, charset string) (string, Report, error) {
	if src == nil {
		return "", Report{}, errors.New(errors.ErrCodeInput, "no source document")
	}
	clone := src.Clone()
	rep := Apply(clone, records)
	if err := xmldoc.SplitCData(clone.Root(), charset); err != nil {
		return "", rep, errors.Wrap(errors.ErrCodeInternal, err, "prepare document")
	}
	text, err := clone.WriteToString()
	if err != nil {
		return "", rep, errors.Wrap(errors.ErrCodeInternal, err, "serialize document")
	}
	return text, rep, nil
}

// firstByKey indexes registro elements by key value, keeping the first
// element for each value.
func firstByKey(tree *etree.Document) map[string]*etree.Element {
	m := make(map[string]*etree.Element)
	if tree == nil || tree.Root() == nil {
		return m
	}
	for _, el := range tree.FindElements("//" + record.RecordTag) {
		attr := el.SelectAttr(record.KeyAttr)
		if attr == nil {
			continue
		}
		if _, seen := m[attr.Value]; !seen {
			m[attr.Value] = el
		}
	}
	return m
}

// findDescendant returns the first element below e, in document order, whose
// tag is name.
func findDescendant(e *etree.Element, name string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.FullTag() == name {
			return c
		}
		if d := findDescendant(c, name); d != nil {
			return d
		}
	}
	return nil
}
