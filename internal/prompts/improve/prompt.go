// Package improve holds the prompts and the [SEGMENT_N] line protocol for
// segment-level text improvement.
package improve

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/jackzampolin/docsmith/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Mode selects the improvement instruction.
type Mode string

const (
	GrammarClarity   Mode = "grammar_clarity"
	ProfessionalTone Mode = "professional_tone"
	Concise          Mode = "concise"
	Formal           Mode = "formal"
)

var instructions = map[Mode]string{
	GrammarClarity:   "Focus on fixing grammar errors and improving clarity while maintaining the original meaning",
	ProfessionalTone: "Enhance the text to sound more professional and polished",
	Concise:          "Make the text more concise while retaining all important information",
	Formal:           "Adjust the tone to be more formal and business-appropriate",
}

// Modes returns every supported mode.
func Modes() []Mode {
	return []Mode{GrammarClarity, ProfessionalTone, Concise, Formal}
}

// ParseMode validates a mode name. Empty selects GrammarClarity.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return GrammarClarity, nil
	}
	m := Mode(s)
	if _, ok := instructions[m]; !ok {
		return "", fmt.Errorf("unknown improvement mode %q", s)
	}
	return m, nil
}

// Instruction returns the instruction sentence for mode, falling back to
// GrammarClarity for unknown modes.
func Instruction(mode Mode) string {
	if s, ok := instructions[mode]; ok {
		return s
	}
	return instructions[GrammarClarity]
}

// UserPromptData is the data the user template renders.
type UserPromptData struct {
	Instruction string
	SegmentText string
}

// SystemPrompt returns the system prompt for text improvement.
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

// FormatSegments numbers texts as "[SEGMENT_i] text" blocks separated by blank lines.
func FormatSegments(texts []string) string {
	blocks := make([]string, len(texts))
	for i, t := range texts {
		blocks[i] = fmt.Sprintf("[SEGMENT_%d] %s", i, t)
	}
	return strings.Join(blocks, "\n\n")
}

var segmentMarker = regexp.MustCompile(`^\[SEGMENT_(\d+)\]\s*(.*)`)

// Segment is one improved text parsed from a response.
type Segment struct {
	Index int
	Text  string
}

// ParseSegments reads a [SEGMENT_N] response in response order. Lines
// without a marker continue the current segment and are joined with a
// space. Segments whose text is empty are omitted; a repeated index appears
// once per occurrence.
func ParseSegments(content string) []Segment {
	var out []Segment
	current := -1
	var parts []string

	flush := func() {
		if current < 0 || len(parts) == 0 {
			return
		}
		if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
			out = append(out, Segment{Index: current, Text: text})
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := segmentMarker.FindStringSubmatch(line); m != nil {
			flush()
			n, err := strconv.Atoi(m[1])
			if err != nil {
				n = -1
			}
			current = n
			parts = parts[:0]
			if m[2] != "" {
				parts = append(parts, m[2])
			}
			continue
		}
		if current >= 0 {
			parts = append(parts, line)
		}
	}
	flush()
	return out
}

// Prompt keys
const (
	SystemPromptKey = "analysis.improve.system"
	UserPromptKey   = "analysis.improve.user"
)

// RegisterPrompts registers the improvement prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Text improvement system prompt - placeholder preservation rules and segment format",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Text improvement user prompt template - instruction and numbered segments",
	})
}
