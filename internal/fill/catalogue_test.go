package fill

import (
	"reflect"
	"testing"
	"time"

	"github.com/jackzampolin/docsmith/internal/testutil"
)

func TestCatalogue_Resolve(t *testing.T) {
	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	records := Records{
		"client":  {"company_name": " ACME Pte Ltd ", "uen": "201912345A"},
		"contact": {"name": "Jane Tan"},
		"company": {"name": "Docsmith"},
	}

	values := DefaultCatalogue().Resolve(records, now, "")

	tests := map[string]string{
		"client_company_name": "ACME Pte Ltd",
		"client_uen":          "201912345A",
		"client_industry":     "",
		"contact_name":        "Jane Tan",
		"client_name":         "Jane Tan",
		"my_company_name":     "Docsmith",
		"current_date":        "04/03/2025",
		"quotation_date":      "04/03/2025",
		"date":                "04/03/2025",
		"invoice_date":        "",
	}
	for name, want := range tests {
		got, ok := values[name]
		if !ok {
			t.Errorf("%s missing from resolved values", name)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	t.Run("custom layout", func(t *testing.T) {
		values := DefaultCatalogue().Resolve(nil, now, "2006-01-02")
		if values["current_date"] != "2025-03-04" {
			t.Errorf("current_date = %q", values["current_date"])
		}
	})

	t.Run("sourceless entries are skipped", func(t *testing.T) {
		c := Catalogue{{Name: "project_name", Group: "Custom"}}
		if values := c.Resolve(records, now, ""); len(values) != 0 {
			t.Errorf("values = %v, want empty", values)
		}
	})
}

func TestCatalogue_ResolveThenFill(t *testing.T) {
	blob := testutil.NewDocx().
		Para("{{client_company_name}} / {{client_industry}} / {{quotation_date}}").
		Build(t)
	now := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	values := DefaultCatalogue().Resolve(Records{"client": {"company_name": "ACME"}}, now, "")

	res, err := Fill(blob, values)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if got := bodyText(t, res.Blob)[0]; got != "ACME / {{client_industry}} / 02/01/2025" {
		t.Errorf("text = %q", got)
	}
	if !reflect.DeepEqual(res.Unfilled, []string{"client_industry"}) {
		t.Errorf("Unfilled = %q", res.Unfilled)
	}
}

func TestCatalogue_Unknown(t *testing.T) {
	got := DefaultCatalogue().Unknown([]string{"client_uen", "project_name", "zeta", "project_name"})
	if want := []string{"project_name", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Unknown() = %q, want %q", got, want)
	}
}

func TestCatalogue_Groups(t *testing.T) {
	groups := DefaultCatalogue().Groups()
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	want := []string{"Client Information", "Client Contact Person", "My Company Information", "Document Information", "Dates"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("groups = %q, want %q", names, want)
	}
	if len(groups[0].Entries) != 5 || groups[0].Entries[0].Name != "client_company_name" {
		t.Errorf("first group = %+v", groups[0])
	}

	if _, ok := DefaultCatalogue().Lookup("due_date"); !ok {
		t.Error("Lookup(due_date) not found")
	}
}
