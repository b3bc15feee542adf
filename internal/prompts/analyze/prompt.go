// Package analyze holds the prompts and response schema for template analysis.
package analyze

import (
	_ "embed"
	"text/template"

	"github.com/jackzampolin/docsmith/internal/fill"
	"github.com/jackzampolin/docsmith/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// UserPromptData is the data the user template renders.
type UserPromptData struct {
	DocumentText string
	Groups       []fill.Group
	Metadata     string // indented JSON, omitted when empty
}

// SystemPrompt returns the system prompt for template analysis.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for template analysis.
func UserPrompt(data UserPromptData) (string, error) {
	return UserPromptWithOverride(data, "")
}

// UserPromptWithOverride renders override instead of the embedded template
// when it is non-empty.
func UserPromptWithOverride(data UserPromptData, override string) (string, error) {
	if override != "" {
		return prompts.Render("user", override, data)
	}
	return prompts.Execute(userTemplate, data)
}

// Prompt keys
const (
	SystemPromptKey = "analysis.analyze.system"
	UserPromptKey   = "analysis.analyze.user"
)

// RegisterPrompts registers the analysis prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Template analysis system prompt - response format, variable and improvement types",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Template analysis user prompt template - document text, standard placeholders, metadata",
	})
}
