package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docsmith/internal/extract"
	"github.com/jackzampolin/docsmith/internal/fill"
	"github.com/jackzampolin/docsmith/internal/home"
	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

var (
	extractText bool
	scanLimit   int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.docx>",
	Short: "Extract the content tree of a document",
	Long: `Extract paragraphs, headings, tables, headers, footers and metadata.

Examples:
  docsmith extract quote.docx             # content tree as YAML
  docsmith extract quote.docx --text      # the clean text sent for analysis`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := extractFile(args[0])
		if err != nil {
			return err
		}
		if extractText {
			_, err := fmt.Fprint(cmd.OutOrStdout(), extract.CleanText(tree))
			return err
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(tree)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <file.docx>",
	Short: "List spans that look like variable content",
	Long: `Run the advisory pattern scan (dates, amounts, emails, phones, company
names, existing placeholders) over the document's clean text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := extractFile(args[0])
		if err != nil {
			return err
		}
		found := extract.Scan(extract.CleanText(tree))
		if scanLimit > 0 && len(found) > scanLimit {
			found = found[:scanLimit]
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(found)
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments <file.docx>",
	Short: "List the text segments that can be improved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		segs, err := extract.Segments(blob)
		if err != nil {
			return err
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(segs)
	},
}

var placeholdersCatalogue bool

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders [file.docx]",
	Short: "List placeholder names in a document, or the configured catalogue",
	Long: `With a document, list the {{ name }} placeholders it contains and warn
about names missing from the catalogue. Without one (or with --catalogue),
print the configured catalogue as a table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := svcctx.ConfigFrom(cmd.Context()).Get().Catalogue()
		if len(args) == 0 || placeholdersCatalogue {
			tbl := &render.Table{Header: []string{"Group", "Name", "Description", "Source"}, MaxWidth: 48}
			for _, e := range cat {
				tbl.AddRow(e.Group, "{{"+e.Name+"}}", e.Description, e.Source)
			}
			_, err := tbl.WriteTo(cmd.OutOrStdout())
			return err
		}

		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		names, err := fill.Names(blob)
		if err != nil {
			return err
		}
		if unknown := cat.Unknown(names); len(unknown) > 0 {
			printer(cmd).Warn("not in catalogue: %s", strings.Join(unknown, ", "))
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(names)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractText, "text", false, "print the clean text instead of the content tree")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "maximum candidates to print (0 for all)")
	placeholdersCmd.Flags().BoolVar(&placeholdersCatalogue, "catalogue", false, "print the catalogue even when a document is given")
}

func extractFile(path string) (*extract.ContentTree, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := extract.Extract(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// outputPath returns explicit when set, otherwise in's name with suffix
// next to in.
func outputPath(in, explicit, suffix string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(filepath.Dir(in), home.SuffixedName(in, suffix))
}

func writeDocument(path string, blob []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, blob, 0o644)
}
