package record

import (
	"fmt"
	"slices"
)

// Source schema names.
const (
	TableTag       = "Tabela"
	RecordTag      = "registro"
	TableNameAttr  = "nm_tabela"
	KeyAttr        = "NR_SEQUENCIA"
	syntheticKey   = "Record %d"
	syntheticTable = "Tabela %d"
)

// Child is one child element of a record element.
type Child struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	// CDATA marks content that is written back as a character-data block
	// instead of escaped text.
	CDATA bool `json:"cdata"`
}

// IsRawText reports whether the content is ordinary text (not CDATA).
func (c Child) IsRawText() bool { return !c.CDATA }

// Record is one extracted registro element.
type Record struct {
	ID         string     `json:"id"`    // "<table>:<record>", zero based
	Table      string     `json:"table"` // nm_tabela or "Tabela <n>"
	Label      string     `json:"label"` // "Tabela: <table>, NR_SEQUENCIA: <key>"
	Key        string     `json:"key"`   // NR_SEQUENCIA or "Record <n>"
	Attributes Attributes `json:"attributes"`
	Children   []Child    `json:"children"`
}

// HasKey reports whether the record carries a real key attribute and can
// therefore be indexed and patched back.
func (r *Record) HasKey() bool { return r.Attributes.Has(KeyAttr) }

// Child returns the first child with the given tag name.
func (r *Record) Child(name string) (Child, bool) {
	for _, c := range r.Children {
		if c.Name == name {
			return c, true
		}
	}
	return Child{}, false
}

// Relabel derives Key and Label from the current attributes, so that they
// follow an edited NR_SEQUENCIA. A record without the attribute gets the
// synthetic key of its position.
func (r *Record) Relabel() {
	if key, ok := r.Attributes.Get(KeyAttr); ok {
		r.Key = key
	} else {
		var t, n int
		if _, err := fmt.Sscanf(r.ID, "%d:%d", &t, &n); err == nil {
			r.Key = fmt.Sprintf(syntheticKey, n+1)
		}
	}
	r.Label = Label(r.Table, r.Key)
}

// Field returns the content of the named child element, falling back to the
// attribute of the same name. Exports carry descriptive fields such as
// DS_TITULO as child elements; older files put them on the registro.
func (r *Record) Field(name string) string {
	if name == "" {
		return ""
	}
	if c, ok := r.Child(name); ok {
		return c.Content
	}
	return r.Attributes.Value(name)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Attributes = r.Attributes.Clone()
	r.Children = slices.Clone(r.Children)
	return r
}

// Equal reports whether two records carry the same identity and data.
func (r *Record) Equal(o *Record) bool {
	return r.ID == o.ID &&
		r.Table == o.Table &&
		r.Key == o.Key &&
		r.Label == o.Label &&
		r.Attributes.Equal(&o.Attributes) &&
		slices.Equal(r.Children, o.Children)
}

// ID formats a record id from zero-based table and record positions.
func ID(table, rec int) string {
	return fmt.Sprintf("%d:%d", table, rec)
}

// Label formats the display label of a record.
func Label(table, key string) string {
	return fmt.Sprintf("Tabela: %s, NR_SEQUENCIA: %s", table, key)
}

// Index maps key attribute values to record ids.
type Index map[string]string

// Lookup returns the id registered for key.
func (ix Index) Lookup(key string) (string, bool) {
	id, ok := ix[key]
	return id, ok
}

// BuildIndex indexes every keyed record; a repeated key keeps the later record.
func BuildIndex(records []Record) Index {
	ix := make(Index, len(records))
	for i := range records {
		if key, ok := records[i].Attributes.Get(KeyAttr); ok {
			ix[key] = records[i].ID
		}
	}
	return ix
}

// ByID returns a lookup map from record id to position in records.
func ByID(records []Record) map[string]int {
	m := make(map[string]int, len(records))
	for i, r := range records {
		m[r.ID] = i
	}
	return m
}
