package record

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestAttributesOrder(t *testing.T) {
	var a Attributes
	a.Set("NR_SEQUENCIA", "1")
	a.Set("DS_TITULO", "Sales")
	a.Set("IE_TIPO", "A")
	a.Set("DS_TITULO", "Revenue")

	if got := a.Names(); !slices.Equal(got, []string{"NR_SEQUENCIA", "DS_TITULO", "IE_TIPO"}) {
		t.Errorf("Names() = %v", got)
	}
	if v, ok := a.Get("DS_TITULO"); !ok || v != "Revenue" {
		t.Errorf("Get(DS_TITULO) = %q, %v", v, ok)
	}
	if _, ok := a.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestAttributesEmptyValueIsPresent(t *testing.T) {
	a := NewAttributes(Attr{"NR_SEQ_BANDA", ""})
	if !a.Has("NR_SEQ_BANDA") {
		t.Error("empty value should still be present")
	}
	if a.Value("other") != "" {
		t.Error("Value of a missing key should be empty")
	}
}

func TestAttributesDelete(t *testing.T) {
	a := NewAttributes(Attr{"a", "1"}, Attr{"b", "2"}, Attr{"c", "3"})
	a.Delete("a")
	a.Delete("zzz")

	if got := a.Names(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Names() = %v", got)
	}
	a.Set("c", "33")
	if a.Value("c") != "33" || a.Len() != 2 {
		t.Errorf("index not rebuilt after delete: %v", a.Pairs())
	}
}

func TestAttributesAll(t *testing.T) {
	a := NewAttributes(Attr{"x", "1"}, Attr{"y", "2"})
	var got []string
	for k, v := range a.All() {
		got = append(got, k+"="+v)
	}
	if !slices.Equal(got, []string{"x=1", "y=2"}) {
		t.Errorf("All() = %v", got)
	}
}

func TestAttributesClone(t *testing.T) {
	a := NewAttributes(Attr{"x", "1"})
	b := a.Clone()
	b.Set("x", "2")
	if a.Value("x") != "1" {
		t.Error("Clone should not share storage")
	}
	if a.Equal(&b) {
		t.Error("Equal should detect changed values")
	}
}

func TestAttributesJSONKeepsOrder(t *testing.T) {
	a := NewAttributes(Attr{"z", "1"}, Attr{"a", "<2>"}, Attr{"m", "3"})
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":"1","a":"<2>","m":"3"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Attributes
	if err := json.Unmarshal([]byte(`{"z":"1","a":"<2>","m":"3"}`), &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(&a) {
		t.Errorf("Unmarshal = %v, want %v", back.Pairs(), a.Pairs())
	}
}

func TestAttributesJSONErrors(t *testing.T) {
	var a Attributes
	for _, in := range []string{`[]`, `{"a":1}`, `{"a":`} {
		if err := json.Unmarshal([]byte(in), &a); err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
		}
	}
	if err := json.Unmarshal([]byte(`null`), &a); err != nil || a.Len() != 0 {
		t.Errorf("Unmarshal(null) = %v, len %d", err, a.Len())
	}
}
