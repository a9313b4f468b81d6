package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Attr is one name/value pair.
type Attr struct {
	Name  string
	Value string
}

// Attributes is an insertion-ordered string map with unique keys.
// The zero value is an empty, ready-to-use map.
//
// Attributes marshals to a JSON object whose keys appear in insertion order
// and unmarshals preserving the order of the incoming object.
type Attributes struct {
	list  []Attr
	index map[string]int
}

// NewAttributes builds an Attributes from pairs. Later duplicates overwrite
// earlier values but keep the first position.
func NewAttributes(pairs ...Attr) Attributes {
	var a Attributes
	for _, p := range pairs {
		a.Set(p.Name, p.Value)
	}
	return a
}

// Get returns the value for name and whether it is present.
func (a *Attributes) Get(name string) (string, bool) {
	if i, ok := a.index[name]; ok {
		return a.list[i].Value, true
	}
	return "", false
}

// Value returns the value for name or "" when absent.
func (a *Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Has reports whether name is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Set stores value under name. New names are appended; existing names keep
// their position.
func (a *Attributes) Set(name, value string) {
	if i, ok := a.index[name]; ok {
		a.list[i].Value = value
		return
	}
	if a.index == nil {
		a.index = make(map[string]int)
	}
	a.index[name] = len(a.list)
	a.list = append(a.list, Attr{Name: name, Value: value})
}

// Delete removes name if present.
func (a *Attributes) Delete(name string) {
	i, ok := a.index[name]
	if !ok {
		return
	}
	a.list = slices.Delete(a.list, i, i+1)
	delete(a.index, name)
	for j := i; j < len(a.list); j++ {
		a.index[a.list[j].Name] = j
	}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.list) }

// All iterates name/value pairs in order.
func (a *Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, p := range a.list {
			if !yield(p.Name, p.Value) {
				return
			}
		}
	}
}

// Pairs returns a copy of the ordered pairs.
func (a *Attributes) Pairs() []Attr { return slices.Clone(a.list) }

// Names returns the attribute names in order.
func (a *Attributes) Names() []string {
	names := make([]string, len(a.list))
	for i, p := range a.list {
		names[i] = p.Name
	}
	return names
}

// Clone returns an independent copy.
func (a *Attributes) Clone() Attributes {
	return NewAttributes(a.list...)
}

// Equal reports whether both maps hold the same pairs in the same order.
func (a *Attributes) Equal(b *Attributes) bool {
	return slices.Equal(a.list, b.list)
}

// MarshalJSON writes an object with keys in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range a.list {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string values, keeping key order.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = Attributes{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}

	var out Attributes
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attributes: value of %q: %w", name, err)
		}
		out.Set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
