// Package validate holds the prompts and response schema for reviewing a
// finished template conversion.
package validate

import (
	_ "embed"
	"text/template"

	"github.com/jackzampolin/docsmith/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// MaxExcerpt is the number of characters of each text shown to the model.
const MaxExcerpt = 2000

// UserPromptData is the data the user template renders.
type UserPromptData struct {
	OriginalText  string
	ConvertedText string
	Variables     string // indented JSON list of {name, placeholder, original}
}

// SystemPrompt returns the system prompt for conversion validation.
func SystemPrompt() string {
	return systemPrompt
}

// UserPromptWithOverride renders override instead of the embedded template
// when it is non-empty.
func UserPromptWithOverride(data UserPromptData, override string) (string, error) {
	if override != "" {
		return prompts.Render("user", override, data)
	}
	return prompts.Execute(userTemplate, data)
}

// Excerpt returns the first MaxExcerpt characters of s.
func Excerpt(s string) string {
	r := []rune(s)
	if len(r) <= MaxExcerpt {
		return s
	}
	return string(r[:MaxExcerpt])
}

// Prompt keys
const (
	SystemPromptKey = "analysis.validate.system"
	UserPromptKey   = "analysis.validate.user"
)

// RegisterPrompts registers the validation prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Conversion validation system prompt",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Conversion validation user prompt template - original and converted excerpts, applied variables",
	})
}
