package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable_Render(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		tbl := &Table{Header: []string{"Name", "Value"}}
		tbl.AddRow("client_name", "Jane")
		tbl.AddRow("date", "01/02/2024")

		want := "" +
			"+-------------+------------+\n" +
			"| Name        | Value      |\n" +
			"+-------------+------------+\n" +
			"| client_name | Jane       |\n" +
			"| date        | 01/02/2024 |\n" +
			"+-------------+------------+\n"
		if got := tbl.Render(); got != want {
			t.Errorf("Render() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("wide runes and multiline cells", func(t *testing.T) {
		tbl := &Table{}
		tbl.AddRow("見積書", "a\nbb")

		want := "" +
			"+--------+----+\n" +
			"| 見積書 | a  |\n" +
			"|        | bb |\n" +
			"+--------+----+\n"
		if got := tbl.Render(); got != want {
			t.Errorf("Render() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("truncation", func(t *testing.T) {
		tbl := &Table{MaxWidth: 5}
		tbl.AddRow("abcdefgh")
		if got := tbl.Render(); !strings.Contains(got, "| abcd… |") {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := (&Table{}).Render(); got != "" {
			t.Errorf("Render() = %q", got)
		}
	})
}

func TestPrinter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Warn("%d unknown placeholders", 2)
	p.Diff("Paragraph 1", "teh", "the")

	want := "warning: 2 unknown placeholders\nParagraph 1\n- teh\n+ the\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
