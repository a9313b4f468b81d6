// Package doctype classifies relational XML documents.
//
// A document is either a [Template] or a [Report], decided once from its root
// element. The type selects the foreign-key attributes the edge resolver
// consults and the fields the rest of the system reads as a record's title and
// summary.
package doctype

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// Type is the document variant.
type Type int

const (
	// Unknown is the zero value; it is never returned by Classify without an error.
	Unknown Type = iota
	// Template documents have a TEMPLATE root element.
	Template
	// Report documents have a RELATORIOS root element.
	Report
)

// Root element names, compared case-insensitively.
const (
	TemplateRoot = "TEMPLATE"
	ReportRoot   = "RELATORIOS"
)

// rule holds the per-type attribute names.
type rule struct {
	name        string
	foreignKeys [2]string // priority order
	title       string
	summary     string
}

var rules = map[Type]rule{
	Template: {
		name:        "template",
		foreignKeys: [2]string{"NR_SEQ_TEMPLATE", "NR_SEQ_ITEM"},
		title:       "DS_TEMPLATE",
		summary:     "DS_LABEL",
	},
	Report: {
		name:        "report",
		foreignKeys: [2]string{"NR_SEQ_RELATORIO", "NR_SEQ_BANDA"},
		title:       "DS_TITULO",
		summary:     "DS_BANDA",
	},
}

// Classify inspects the root element of tree and returns its document type.
// A missing or unrecognized root is a VALIDATION_ERROR.
func Classify(tree *etree.Document) (Type, error) {
	if tree == nil || tree.Root() == nil {
		return Unknown, errors.New(errors.ErrCodeValidation, "unrecognized root element")
	}
	return ClassifyRoot(tree.Root().FullTag())
}

// ClassifyRoot maps a root element tag name to a document type.
func ClassifyRoot(tag string) (Type, error) {
	switch strings.ToUpper(tag) {
	case ReportRoot:
		return Report, nil
	case TemplateRoot:
		return Template, nil
	}
	return Unknown, errors.New(errors.ErrCodeValidation, "unrecognized root element %q", tag)
}

// ForeignKeys returns the candidate foreign-key attribute names in priority order.
// Unknown returns nil.
func (t Type) ForeignKeys() []string {
	r, ok := rules[t]
	if !ok {
		return nil
	}
	return r.foreignKeys[:]
}

// TitleField names the child element holding the document title on the
// first record.
func (t Type) TitleField() string { return rules[t].title }

// SummaryField names the child element used as a record's short description.
func (t Type) SummaryField() string { return rules[t].summary }

// String returns "template", "report" or "unknown".
func (t Type) String() string {
	if r, ok := rules[t]; ok {
		return r.name
	}
	return "unknown"
}

// Parse converts a name produced by String back into a Type.
func Parse(s string) (Type, error) {
	for t, r := range rules {
		if strings.EqualFold(s, r.name) {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown document type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
