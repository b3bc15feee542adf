// Package prompts provides prompt management with embedded defaults and
// file-based overrides.
//
// Embedded .tmpl files in code are the source of truth for defaults. An
// override directory may hold a <key>.tmpl file per prompt key; when present
// it replaces the embedded text for every call that resolves that key.
//
// Resolution order:
//  1. Override file (if the resolver has a store and the file exists)
//  2. Embedded default (from .tmpl files in code)
package prompts

import "time"

// Override is a prompt text stored in the override directory.
type Override struct {
	Key       string    `json:"key" yaml:"key"`
	Text      string    `json:"text" yaml:"text"`
	Path      string    `json:"path" yaml:"path"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ResolvedPrompt is the result of resolving a prompt key.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Hash       string   `json:"hash" yaml:"hash"` // SHA256 of Text, recorded with each LLM call
}

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: analysis.analyze.system
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}
