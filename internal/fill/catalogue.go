package fill

import (
	"sort"
	"strings"
	"time"
)

// DefaultDateLayout renders dates as DD/MM/YYYY.
const DefaultDateLayout = "02/01/2006"

// SourceToday resolves to the current date.
const SourceToday = "date.today"

// Entry describes one recognised placeholder. Source names where its value
// comes from: "record.field" looks up a field of a record, SourceToday is
// the current date and an empty source is only ever filled explicitly.
type Entry struct {
	Name        string `mapstructure:"name" yaml:"name" json:"name"`
	Group       string `mapstructure:"group" yaml:"group" json:"group"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
	Source      string `mapstructure:"source" yaml:"source,omitempty" json:"source,omitempty"`
}

// Catalogue is the ordered set of recognised placeholders.
type Catalogue []Entry

// Records holds the business records values are drawn from, keyed by record
// then field, e.g. records["client"]["company_name"].
type Records map[string]map[string]string

// Group is a named run of catalogue entries, in catalogue order.
type Group struct {
	Name    string
	Entries []Entry
}

// Lookup finds the entry for name.
func (c Catalogue) Lookup(name string) (Entry, bool) {
	for _, e := range c {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns every entry name in catalogue order.
func (c Catalogue) Names() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Name
	}
	return out
}

// Groups splits the catalogue by group, keeping first-seen group order.
func (c Catalogue) Groups() []Group {
	var out []Group
	idx := make(map[string]int)
	for _, e := range c {
		i, ok := idx[e.Group]
		if !ok {
			i = len(out)
			idx[e.Group] = i
			out = append(out, Group{Name: e.Group})
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	return out
}

// Resolve builds a value map with one key per entry that has a source.
// Missing records or fields resolve to "", which Fill reports as unfilled.
func (c Catalogue) Resolve(records Records, now time.Time, dateLayout string) map[string]string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	today := now.Format(dateLayout)

	out := make(map[string]string, len(c))
	for _, e := range c {
		switch {
		case e.Source == "":
			continue
		case e.Source == SourceToday:
			out[e.Name] = today
		default:
			rec, field, ok := strings.Cut(e.Source, ".")
			if !ok {
				out[e.Name] = ""
				continue
			}
			out[e.Name] = strings.TrimSpace(records[rec][field])
		}
	}
	return out
}

// Unknown returns the sorted, unique names that are not in the catalogue.
func (c Catalogue) Unknown(names []string) []string {
	known := make(map[string]struct{}, len(c))
	for _, e := range c {
		known[e.Name] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, n := range names {
		if _, ok := known[n]; !ok {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalogue returns the stock placeholder set used for quotations
// and invoices.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		{"client_company_name", "Client Information", "Client company name", "client.company_name"},
		{"client_uen", "Client Information", "Client UEN/registration number", "client.uen"},
		{"client_industry", "Client Information", "Client industry", "client.industry"},
		{"client_address", "Client Information", "Client address", "client.address"},
		{"client_postal_code", "Client Information", "Client postal code", "client.postal_code"},

		{"client_name", "Client Contact Person", "Contact person's name", "contact.name"},
		{"client_phone", "Client Contact Person", "Contact person's phone", "contact.phone"},
		{"client_email", "Client Contact Person", "Contact person's email", "contact.email"},
		{"contact_name", "Client Contact Person", "Contact person's name", "contact.name"},
		{"contact_phone", "Client Contact Person", "Contact person's phone", "contact.phone"},
		{"contact_email", "Client Contact Person", "Contact person's email", "contact.email"},

		{"my_company_name", "My Company Information", "Your company name", "company.name"},
		{"my_company_email", "My Company Information", "Your company email", "company.email"},
		{"my_company_phone", "My Company Information", "Your company phone", "company.phone"},
		{"my_company_address", "My Company Information", "Your company address", "company.address"},
		{"my_company_website", "My Company Information", "Your company website", "company.website"},

		{"quotation_number", "Document Information", "Quotation reference number", "document.quotation_number"},
		{"quotation_status", "Document Information", "Quotation status", "document.quotation_status"},
		{"invoice_number", "Document Information", "Invoice reference number", "document.invoice_number"},
		{"invoice_status", "Document Information", "Invoice status", "document.invoice_status"},
		{"due_date", "Document Information", "Payment due date", "document.due_date"},

		{"current_date", "Dates", "Current date (DD/MM/YYYY)", SourceToday},
		{"quotation_date", "Dates", "Quotation date", SourceToday},
		{"invoice_date", "Dates", "Invoice date", "document.invoice_date"},
		{"date", "Dates", "Generic date field", SourceToday},
	}
}
