package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/docsmith/internal/config"
	"github.com/jackzampolin/docsmith/internal/output"
	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

var (
	fillValuesFile string
	fillSet        []string
	fillOut        string
	fillSpanRuns   bool
	fillNoRecords  bool

	batchOutDir      string
	batchWorkers     int
	batchWatchConfig bool
)

// FillSummary reports one filled document.
type FillSummary struct {
	Input    string   `json:"input" yaml:"input"`
	Output   string   `json:"output" yaml:"output"`
	Filled   int      `json:"filled" yaml:"filled"`
	Unfilled []string `json:"unfilled" yaml:"unfilled"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

var fillCmd = &cobra.Command{
	Use:   "fill <template.docx>",
	Short: "Replace {{ name }} placeholders with values",
	Long: `Fill a template's placeholders. Values come from the configured records
(resolved through the placeholder catalogue), then a values file, then
--set flags; later sources win.

Examples:
  docsmith fill quote_template.docx --values acme.yaml
  docsmith fill quote_template.docx --set client_name="Jane Doe" --out jane.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := svcctx.ConfigFrom(cmd.Context()).Get()
		values, err := fillValues(cfg, time.Now())
		if err != nil {
			return err
		}
		sum := fillOne(cmd, cfg, args[0], outputPath(args[0], fillOut, "filled"), values)
		if sum.Error != "" {
			return fmt.Errorf("%s", sum.Error)
		}
		if len(sum.Unfilled) > 0 {
			printer(cmd).Warn("no value for: %s", strings.Join(sum.Unfilled, ", "))
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(sum)
	},
}

var batchFillCmd = &cobra.Command{
	Use:   "batch-fill <template.docx>...",
	Short: "Fill many templates concurrently",
	Long: `Fill each template with the same value sources as fill, writing
<name>_filled.docx into --out-dir (default: ~/.docsmith/output).

With --watch-config the config file is watched while the batch runs and
each document picks up the records current when its worker starts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mgr := svcctx.ConfigFrom(ctx)
		h := svcctx.HomeFrom(ctx)
		logger := svcctx.LoggerFrom(ctx)
		if batchWatchConfig {
			mgr.WatchConfig()
		}

		workers := batchWorkers
		if workers <= 0 {
			workers = mgr.Get().Defaults.MaxWorkers
		}

		results := make([]FillSummary, len(args))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(max(workers, 1))
		for i, in := range args {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				cfg := mgr.Get()
				values, err := fillValues(cfg, time.Now())
				if err != nil {
					return err
				}
				dst := h.OutputPath(in, "filled")
				if batchOutDir != "" {
					dst = filepath.Join(batchOutDir, filepath.Base(dst))
				}
				results[i] = fillOne(cmd, cfg, in, dst, values)
				if results[i].Error != "" {
					logger.Warn("fill failed", "input", in, "error", results[i].Error)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			if err := output.New(cmd.OutOrStdout(), format).Write(results); err != nil {
				return err
			}
		} else {
			tbl := &render.Table{Header: []string{"Input", "Output", "Filled", "Unfilled"}, MaxWidth: 40}
			for _, r := range results {
				status := strings.Join(r.Unfilled, ", ")
				if r.Error != "" {
					status = "error: " + r.Error
				}
				tbl.AddRow(r.Input, r.Output, strconv.Itoa(r.Filled), status)
			}
			if _, err := tbl.WriteTo(cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{fillCmd, batchFillCmd} {
		c.Flags().StringVar(&fillValuesFile, "values", "", "YAML or JSON file of name: value pairs")
		c.Flags().StringArrayVar(&fillSet, "set", nil, "name=value (repeatable)")
		c.Flags().BoolVar(&fillSpanRuns, "span-runs", false, "also match placeholders split across formatting runs")
		c.Flags().BoolVar(&fillNoRecords, "no-records", false, "ignore the configured records")
	}
	fillCmd.Flags().StringVar(&fillOut, "out", "", "output path (default: <name>_filled.docx next to the input)")
	batchFillCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "output directory")
	batchFillCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent documents (default: defaults.max_workers)")
	batchFillCmd.Flags().BoolVar(&batchWatchConfig, "watch-config", false, "reload records when the config file changes")
}

// fillValues merges records, the values file and --set flags.
func fillValues(cfg *config.Config, now time.Time) (map[string]string, error) {
	values := make(map[string]string)
	if !fillNoRecords {
		for k, v := range cfg.Values(now) {
			if v != "" {
				values[k] = v
			}
		}
	}
	if fillValuesFile != "" {
		data, err := os.ReadFile(fillValuesFile)
		if err != nil {
			return nil, err
		}
		fromFile, err := output.ReadValues(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fillValuesFile, err)
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}
	for _, kv := range fillSet {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		values[strings.TrimSpace(k)] = v
	}
	return values, nil
}

func fillOne(cmd *cobra.Command, cfg *config.Config, in, dst string, values map[string]string) FillSummary {
	sum := FillSummary{Input: in, Output: dst, Unfilled: []string{}}
	blob, err := os.ReadFile(in)
	if err != nil {
		sum.Error = err.Error()
		return sum
	}
	f := cfg.Filler()
	f.SpanRuns = f.SpanRuns || fillSpanRuns
	f.Logger = svcctx.LoggerFrom(cmd.Context())
	res, err := f.Fill(blob, values)
	if err != nil {
		sum.Error = err.Error()
		return sum
	}
	if err := writeDocument(dst, res.Blob); err != nil {
		sum.Error = err.Error()
		return sum
	}
	sum.Filled = res.Filled
	if res.Unfilled != nil {
		sum.Unfilled = res.Unfilled
	}
	return sum
}
