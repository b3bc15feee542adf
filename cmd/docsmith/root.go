package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docsmith/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Turn business documents into reusable templates",
	Long: `Docsmith turns static business documents (quotations, invoices) into
reusable DOCX templates and fills them back in.

The toolkit includes:
  - Content extraction: paragraphs, headings, tables, headers and footers
  - Placeholder filling: {{ name }} tokens replaced from a values file or records
  - AI analysis: variable and text-improvement suggestions from an LLM
  - Replacement: accepted suggestions written back with formatting intact`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docsmith/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docsmith home directory (default: ~/.docsmith)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging",
	)

	// Build services before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setupServices(cmd)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return closeServices()
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(placeholdersCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(batchFillCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(callsCmd)
}
