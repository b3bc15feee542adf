package main

import (
	"fmt"
	"os"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docsmith/internal/render"
	"github.com/jackzampolin/docsmith/internal/svcctx"
)

var promptShowDefault bool

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and override the service prompts",
	Long: `Prompts are embedded templates keyed like analysis.analyze.system.
An override file in ~/.docsmith/prompts/<key>.tmpl replaces the embedded
text for every later call; reset removes it.`,
}

// PromptView is one prompt as shown by prompts show.
type PromptView struct {
	Key        string   `json:"key" yaml:"key"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Hash       string   `json:"hash" yaml:"hash"`
	Variables  []string `json:"variables" yaml:"variables"`
	Text       string   `json:"text" yaml:"text"`
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt keys and whether they are overridden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := svcctx.PromptsFrom(cmd.Context())
		tbl := &render.Table{Header: []string{"Key", "Source", "Hash", "Description"}, MaxWidth: 60}
		for _, p := range r.AllEmbedded() {
			resolved, err := r.Resolve(p.Key)
			if err != nil {
				return err
			}
			source := "embedded"
			if resolved.IsOverride {
				source = "override"
			}
			tbl.AddRow(p.Key, source, resolved.Hash[:12], p.Description)
		}
		_, err := tbl.WriteTo(cmd.OutOrStdout())
		return err
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the prompt text in effect for key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := svcctx.PromptsFrom(cmd.Context())
		var view PromptView
		if promptShowDefault {
			p, ok := r.GetEmbedded(args[0])
			if !ok {
				return fmt.Errorf("prompt not found: %s", args[0])
			}
			view = PromptView{Key: p.Key, Hash: p.Hash, Variables: p.Variables, Text: p.Text}
		} else {
			p, err := r.Resolve(args[0])
			if err != nil {
				return err
			}
			view = PromptView{Key: p.Key, IsOverride: p.IsOverride, Hash: p.Hash, Variables: p.Variables, Text: p.Text}
		}
		w, err := out(cmd)
		if err != nil {
			return err
		}
		return w.Write(view)
	},
}

var promptsSetCmd = &cobra.Command{
	Use:   "set <key> <file>",
	Short: "Override a prompt with the contents of file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := svcctx.PromptsFrom(cmd.Context())
		key := args[0]
		if _, ok := r.GetEmbedded(key); !ok {
			return fmt.Errorf("prompt not found: %s", key)
		}
		text, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if _, err := template.New(key).Parse(string(text)); err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		if err := r.Store().Set(key, string(text)); err != nil {
			return err
		}
		printer(cmd).Success("override set for %s", key)
		return nil
	},
}

var promptsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Remove a prompt override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := svcctx.PromptsFrom(cmd.Context())
		if err := r.Store().Clear(args[0]); err != nil {
			return err
		}
		printer(cmd).Success("%s reset to embedded default", args[0])
		return nil
	},
}

func init() {
	promptsShowCmd.Flags().BoolVar(&promptShowDefault, "default", false, "show the embedded text even when overridden")
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsSetCmd)
	promptsCmd.AddCommand(promptsResetCmd)
}
