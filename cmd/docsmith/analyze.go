package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/docsmith/internal/analysis"
	"github.com/jackzampolin/docsmith/internal/extract"
	"github.com/jackzampolin/docsmith/internal/prompts/improve"
	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/replace"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

var (
	aiProvider string
	aiRetries  int

	analyzeName          string
	analyzeType          string
	analyzeMinConfidence float64
	analyzeTemplate      bool
	analyzeValidate      bool
	analyzeOut           string

	applyAnalysisFile  string
	applyOnly          []string
	applyNoImprovement bool
	applyMapFile       string
	applyOut           string

	improveMode  string
	improveApply bool
	improveOut   string

	validateAnalysisFile string
)

// AnalyzeReport is the analyze command's output. apply accepts it back.
type AnalyzeReport struct {
	File        string                        `json:"file" yaml:"file"`
	Analysis    *analysis.Result              `json:"analysis" yaml:"analysis"`
	Definitions []analysis.VariableDefinition `json:"definitions" yaml:"definitions"`
	Template    string                        `json:"template,omitempty" yaml:"template,omitempty"`
	Report      *replace.Report               `json:"report,omitempty" yaml:"report,omitempty"`
	Validation  *analysis.Verdict             `json:"validation,omitempty" yaml:"validation,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.docx>",
	Short: "Ask the AI service for variable and improvement suggestions",
	Long: `Extract the document's clean text and send it for analysis. The result
lists variable suggestions (with character offsets into the clean text),
text improvements and general suggestions.

Examples:
  docsmith analyze quote.docx > quote.analysis.yaml
  docsmith analyze quote.docx --template --validate
  docsmith analyze quote.docx --provider openrouter --retries 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		blob, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree, err := extract.Extract(blob)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		client, err := analysisClient(ctx, aiProvider)
		if err != nil {
			return err
		}

		text := extract.CleanText(tree)
		meta := analysis.MetadataFor(tree, filepath.Base(path), analyzeName, analyzeType)
		var res *analysis.Result
		err = withRetries(ctx, aiRetries, func() error {
			var err error
			res, err = client.Analyze(ctx, text, meta)
			return err
		})
		if err != nil {
			return describeServiceError(err)
		}
		if res.Repaired {
			printer(cmd).Warn("response was truncated; %d variables recovered", len(res.Variables))
		}
		res.Variables = filterConfidence(res.Variables, analyzeMinConfidence)

		report := &AnalyzeReport{
			File:        path,
			Analysis:    res,
			Definitions: analysis.VariableDefinitions(res.Variables),
		}
		if analyzeTemplate {
			applied, err := replace.Apply(blob, analysis.Replacements(res.Variables, res.TextImprovements))
			if err != nil {
				return err
			}
			report.Template = outputPath(path, analyzeOut, "template")
			report.Report = &applied.Report
			if err := writeDocument(report.Template, applied.Blob); err != nil {
				return err
			}
		}
		if analyzeValidate {
			converted := analysis.ApplyToText(text, res.Variables)
			err := withRetries(ctx, aiRetries, func() error {
				var err error
				report.Validation, err = client.ValidateConversion(ctx, text, converted, res.Variables)
				return err
			})
			if err != nil {
				printer(cmd).Warn("validation failed: %v", describeServiceError(err))
			}
		}

		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(report)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <file.docx>",
	Short: "Write accepted suggestions into a document",
	Long: `Replace every occurrence of each accepted suggestion's original text
with its placeholder (variables) or improved text (improvements).

Suggestions come from a saved analyze result; --only keeps the named
variables. A replacement map file (original: replacement) may be given
instead of or in addition to the analysis.

Examples:
  docsmith apply quote.docx --analysis quote.analysis.yaml
  docsmith apply quote.docx --analysis a.yaml --only client_name,quotation_date --no-improvements
  docsmith apply quote.docx --map replacements.yaml --out quote_template.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyAnalysisFile == "" && applyMapFile == "" {
			return fmt.Errorf("one of --analysis or --map is required")
		}
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		replacements := map[string]string{}
		if applyAnalysisFile != "" {
			res, err := readAnalysis(applyAnalysisFile)
			if err != nil {
				return err
			}
			vars := selectVariables(res.Variables, applyOnly)
			var imps []analysis.TextImprovement
			if !applyNoImprovement {
				imps = res.TextImprovements
			}
			replacements = analysis.Replacements(vars, imps)
		}
		if applyMapFile != "" {
			extra, err := readMap(applyMapFile)
			if err != nil {
				return err
			}
			replacements = replace.Merge(replacements, extra)
		}

		applier := &replace.Applier{Logger: svcctx.LoggerFrom(cmd.Context())}
		res, err := applier.Apply(blob, replacements)
		if err != nil {
			return err
		}
		dst := outputPath(args[0], applyOut, "template")
		if err := writeDocument(dst, res.Blob); err != nil {
			return err
		}
		if !res.Report.Changed() {
			printer(cmd).Warn("no suggestion matched the document text")
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(map[string]any{
			"output":       dst,
			"replacements": len(replacements),
			"report":       res.Report,
		})
	},
}

var improveCmd = &cobra.Command{
	Use:   "improve <file.docx>",
	Short: "Suggest rewrites for every text segment",
	Long: `Send each paragraph and table cell for rewriting in the chosen mode and
show the changes. With --apply the improved text is written to
<name>_improved.docx.

Modes: grammar_clarity (default), professional_tone, concise, formal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mode, err := improve.ParseMode(improveMode)
		if err != nil {
			return err
		}
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		segs, err := extract.Segments(blob)
		if err != nil {
			return err
		}
		client, err := analysisClient(ctx, aiProvider)
		if err != nil {
			return err
		}

		var res *analysis.ImprovementResult
		err = withRetries(ctx, aiRetries, func() error {
			var err error
			res, err = client.ImproveSegments(ctx, segs, mode)
			return err
		})
		if err != nil {
			return describeServiceError(err)
		}

		var written string
		if improveApply {
			applied, err := replace.ApplySegments(blob, res.Segments)
			if err != nil {
				return err
			}
			written = outputPath(args[0], improveOut, "improved")
			if err := writeDocument(written, applied.Blob); err != nil {
				return err
			}
		}

		preview := analysis.Preview(res.Segments)
		if cmd.Flags().Changed("output") {
			w, err := out(cmd)
			if err != nil {
				return err
			}
			return w.Write(map[string]any{"result": res, "preview": preview, "output": written})
		}

		p := render.NewPrinter(cmd.OutOrStdout())
		for _, c := range preview.Changes {
			p.Diff(c.Location, c.Original, c.Improved)
		}
		p.Println()
		p.Success("%d of %d segments improved, %d unchanged", preview.Stats.ImprovedSegments, preview.Stats.TotalSegments, preview.Stats.UnchangedSegments)
		if len(preview.Placeholders) > 0 {
			p.Println("placeholders:", strings.Join(preview.Placeholders, " "))
		}
		if written != "" {
			p.Success("wrote %s", written)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <original.docx> <converted.docx>",
	Short: "Ask the AI service to review a template conversion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		original, err := extractFile(args[0])
		if err != nil {
			return err
		}
		converted, err := extractFile(args[1])
		if err != nil {
			return err
		}
		var vars []analysis.VariableSuggestion
		if validateAnalysisFile != "" {
			res, err := readAnalysis(validateAnalysisFile)
			if err != nil {
				return err
			}
			vars = res.Variables
		}
		client, err := analysisClient(ctx, aiProvider)
		if err != nil {
			return err
		}

		var verdict *analysis.Verdict
		err = withRetries(ctx, aiRetries, func() error {
			var err error
			verdict, err = client.ValidateConversion(ctx, extract.CleanText(original), extract.CleanText(converted), vars)
			return err
		})
		if err != nil {
			return describeServiceError(err)
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(verdict)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, improveCmd, validateCmd} {
		c.Flags().StringVar(&aiProvider, "provider", "", "LLM provider name (default: defaults.llm_provider)")
		c.Flags().IntVar(&aiRetries, "retries", -1, "retries for transient service errors (default: analysis.retries)")
	}
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "template name sent as metadata")
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "", "template type hint sent as metadata")
	analyzeCmd.Flags().Float64Var(&analyzeMinConfidence, "min-confidence", 0, "drop variables below this confidence")
	analyzeCmd.Flags().BoolVar(&analyzeTemplate, "template", false, "write <name>_template.docx with all suggestions applied")
	analyzeCmd.Flags().BoolVar(&analyzeValidate, "validate", false, "validate the converted text")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "template output path")

	applyCmd.Flags().StringVar(&applyAnalysisFile, "analysis", "", "saved analyze output (YAML or JSON)")
	applyCmd.Flags().StringSliceVar(&applyOnly, "only", nil, "accept only these variable names")
	applyCmd.Flags().BoolVar(&applyNoImprovement, "no-improvements", false, "skip text improvements")
	applyCmd.Flags().StringVar(&applyMapFile, "map", "", "replacement map file (original: replacement)")
	applyCmd.Flags().StringVar(&applyOut, "out", "", "output path (default: <name>_template.docx next to the input)")

	improveCmd.Flags().StringVar(&improveMode, "mode", string(improve.GrammarClarity), "improvement mode")
	improveCmd.Flags().BoolVar(&improveApply, "apply", false, "write the improved document")
	improveCmd.Flags().StringVar(&improveOut, "out", "", "output path (default: <name>_improved.docx next to the input)")

	validateCmd.Flags().StringVar(&validateAnalysisFile, "analysis", "", "saved analyze output listing the applied variables")
}

// readAnalysis loads a saved analyze report or a bare analysis result.
func readAnalysis(path string) (*analysis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report AnalyzeReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if report.Analysis != nil {
		return report.Analysis, nil
	}
	var res analysis.Result
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &res, nil
}

func readMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func selectVariables(vars []analysis.VariableSuggestion, only []string) []analysis.VariableSuggestion {
	if len(only) == 0 {
		return vars
	}
	keep := make(map[string]bool, len(only))
	for _, n := range only {
		keep[strings.TrimSpace(n)] = true
	}
	var out []analysis.VariableSuggestion
	for _, v := range vars {
		if keep[v.Name] {
			out = append(out, v)
		}
	}
	return out
}

func filterConfidence(vars []analysis.VariableSuggestion, threshold float64) []analysis.VariableSuggestion {
	if threshold <= 0 {
		return vars
	}
	out := vars[:0:0]
	for _, v := range vars {
		if v.Confidence >= threshold {
			out = append(out, v)
		}
	}
	return out
}

// describeServiceError adds a hint for failures the user can act on.
func describeServiceError(err error) error {
	var se *analysis.ServiceError
	if errors.As(err, &se) && se.Auth() {
		return fmt.Errorf("%w (check the provider api_key)", err)
	}
	var te *analysis.ResponseTruncatedError
	if errors.As(err, &te) {
		return fmt.Errorf("%w (raise analysis.max_tokens)", err)
	}
	return err
}
