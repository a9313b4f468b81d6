package doctype

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/beevik/etree"

	"github.com/matzehuels/relgraph/pkg/errors"
)

func TestClassifyRoot(t *testing.T) {
	tests := []struct {
		tag     string
		want    Type
		wantErr bool
	}{
		{"Relatorios", Report, false},
		{"RELATORIOS", Report, false},
		{"relatorios", Report, false},
		{"Template", Template, false},
		{"TEMPLATE", Template, false},
		{"Relatorio", Unknown, true},
		{"Templates", Unknown, true},
		{"root", Unknown, true},
		{"", Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ClassifyRoot(tt.tag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ClassifyRoot(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			}
			if err != nil && !errors.IsValidation(err) {
				t.Errorf("ClassifyRoot(%q) code = %v, want VALIDATION_ERROR", tt.tag, errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ClassifyRoot(%q) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<Relatorios><Tabela/></Relatorios>`); err != nil {
		t.Fatal(err)
	}
	got, err := Classify(doc)
	if err != nil || got != Report {
		t.Errorf("Classify() = %v, %v; want report", got, err)
	}

	if _, err := Classify(etree.NewDocument()); !errors.IsValidation(err) {
		t.Errorf("empty document error = %v, want validation error", err)
	}
	if _, err := Classify(nil); !errors.IsValidation(err) {
		t.Errorf("nil document error = %v, want validation error", err)
	}
}

func TestForeignKeyPriority(t *testing.T) {
	if got := Report.ForeignKeys(); !slices.Equal(got, []string{"NR_SEQ_RELATORIO", "NR_SEQ_BANDA"}) {
		t.Errorf("Report.ForeignKeys() = %v", got)
	}
	if got := Template.ForeignKeys(); !slices.Equal(got, []string{"NR_SEQ_TEMPLATE", "NR_SEQ_ITEM"}) {
		t.Errorf("Template.ForeignKeys() = %v", got)
	}
	if got := Unknown.ForeignKeys(); got != nil {
		t.Errorf("Unknown.ForeignKeys() = %v, want nil", got)
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		typ     Type
		title   string
		summary string
	}{
		{Template, "DS_TEMPLATE", "DS_LABEL"},
		{Report, "DS_TITULO", "DS_BANDA"},
		{Unknown, "", ""},
	}
	for _, tt := range tests {
		if got := tt.typ.TitleField(); got != tt.title {
			t.Errorf("%v.TitleField() = %q, want %q", tt.typ, got, tt.title)
		}
		if got := tt.typ.SummaryField(); got != tt.summary {
			t.Errorf("%v.SummaryField() = %q, want %q", tt.typ, got, tt.summary)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Type{"type": Template})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"template"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out map[string]Type
	if err := json.Unmarshal([]byte(`{"type":"REPORT"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out["type"] != Report {
		t.Errorf("Unmarshal = %v, want report", out["type"])
	}

	if err := json.Unmarshal([]byte(`{"type":"memo"}`), &out); err == nil {
		t.Error("Unmarshal should reject unknown names")
	}
}
