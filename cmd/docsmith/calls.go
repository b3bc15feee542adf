package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docsmith/internal/llmcall"
	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

var (
	callsOperation string
	callsPromptKey string
	callsProvider  string
	callsModel     string
	callsFailed    bool
	callsLimit     int
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "LLM call history commands",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded service calls, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := svcctx.LLMCallStoreFrom(cmd.Context())
		filter := llmcall.QueryFilter{
			Operation: callsOperation,
			PromptKey: callsPromptKey,
			Provider:  callsProvider,
			Model:     callsModel,
			Limit:     callsLimit,
		}
		if callsFailed {
			failed := false
			filter.Success = &failed
		}
		calls, err := store.List(filter)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			w, err := out(cmd)
			if err != nil {
				return err
			}
			return w.Write(calls)
		}
		tbl := &render.Table{Header: []string{"Time", "Operation", "Model", "Tokens", "Finish", "OK"}}
		for _, c := range calls {
			tbl.AddRow(
				c.Timestamp.Local().Format("2006-01-02 15:04:05"),
				c.Operation,
				c.Model,
				fmt.Sprintf("%d/%d", c.InputTokens, c.OutputTokens),
				c.FinishReason,
				strconv.FormatBool(c.Success),
			)
		}
		_, err = tbl.WriteTo(cmd.OutOrStdout())
		return err
	},
}

var callsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one recorded call including the response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := svcctx.LLMCallStoreFrom(cmd.Context()).Get(args[0])
		if err != nil {
			return err
		}
		if call == nil {
			return fmt.Errorf("call not found: %s", args[0])
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(call)
	},
}

var callsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count recorded calls per prompt key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := svcctx.LLMCallStoreFrom(cmd.Context()).CountByPromptKey()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tbl := &render.Table{Header: []string{"Prompt", "Calls"}}
		for _, k := range keys {
			tbl.AddRow(k, strconv.Itoa(counts[k]))
		}
		_, err = tbl.WriteTo(cmd.OutOrStdout())
		return err
	},
}

func init() {
	callsListCmd.Flags().StringVar(&callsOperation, "operation", "", "filter by operation (analyze, improve, validate)")
	callsListCmd.Flags().StringVar(&callsPromptKey, "prompt-key", "", "filter by prompt key")
	callsListCmd.Flags().StringVar(&callsProvider, "provider", "", "filter by provider")
	callsListCmd.Flags().StringVar(&callsModel, "model", "", "filter by model")
	callsListCmd.Flags().BoolVar(&callsFailed, "failed", false, "only failed calls")
	callsListCmd.Flags().IntVar(&callsLimit, "limit", 20, "maximum calls to list")
	callsCmd.AddCommand(callsListCmd)
	callsCmd.AddCommand(callsGetCmd)
	callsCmd.AddCommand(callsStatsCmd)
}
