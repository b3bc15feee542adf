package analysis

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/jackzampolin/docsmith/internal/extract"
	"github.com/jackzampolin/docsmith/internal/prompts/improve"
)

// ImprovementResult is the outcome of one segment improvement round.
type ImprovementResult struct {
	Segments              []extract.TextSegment `json:"segments" yaml:"segments"`
	TotalSegments         int                   `json:"total_segments" yaml:"total_segments"`
	ImprovedSegments      int                   `json:"improved_segments" yaml:"improved_segments"`
	PreservedPlaceholders []string              `json:"preserved_placeholders" yaml:"preserved_placeholders"`
	Summary               string                `json:"summary" yaml:"summary"`
}

// ImproveSegments asks the service to rewrite every segment in mode and
// returns copies of segments with ImprovedText set where the service
// answered. The input slice is not modified. Indices the response names
// that are out of range are ignored. When the response was truncated the
// last segment it contains is dropped, since it may be incomplete.
func (c *Client) ImproveSegments(ctx context.Context, segments []extract.TextSegment, mode improve.Mode) (*ImprovementResult, error) {
	out := make([]extract.TextSegment, len(segments))
	copy(out, segments)
	if len(segments) == 0 {
		return newImprovementResult(out), nil
	}

	pair, err := c.resolvePair(improve.SystemPromptKey, improve.UserPromptKey)
	if err != nil {
		return nil, err
	}
	sysOverride, userOverride := pair.overrides()

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.OriginalText
	}
	req, err := improve.CreateRequest(improve.Input{
		Texts:                texts,
		Mode:                 mode,
		SystemPromptOverride: sysOverride,
		UserPromptOverride:   userOverride,
		Temperature:          c.cfg.ImproveTemperature,
		MaxTokens:            c.cfg.ImproveMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	chat, err := c.call(ctx, "improve", pair, req, "")
	if err != nil {
		return nil, err
	}

	parsed := improve.ParseSegments(chat.Content)
	if chat.Truncated() && len(parsed) > 0 {
		c.logger.Warn("improvement response truncated, dropping last segment", "index", parsed[len(parsed)-1].Index)
		parsed = parsed[:len(parsed)-1]
	}
	for _, p := range parsed {
		if p.Index < 0 || p.Index >= len(out) {
			c.logger.Warn("improvement names unknown segment", "index", p.Index, "segments", len(out))
			continue
		}
		out[p.Index].ImprovedText = p.Text
	}

	res := newImprovementResult(out)
	c.logger.Info("segment improvement complete", "mode", mode, "segments", res.TotalSegments, "improved", res.ImprovedSegments)
	return res, nil
}

func newImprovementResult(segments []extract.TextSegment) *ImprovementResult {
	improved := 0
	for _, s := range segments {
		if s.Improved() {
			improved++
		}
	}
	return &ImprovementResult{
		Segments:              segments,
		TotalSegments:         len(segments),
		ImprovedSegments:      improved,
		PreservedPlaceholders: PreservedPlaceholders(segments),
		Summary:               fmt.Sprintf("Improved %d text segments while preserving formatting and placeholders", len(segments)),
	}
}

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{[^}]+\}\}`), // {{variable}}
	regexp.MustCompile(`\[[^\]]+\]`),    // [placeholder]
	regexp.MustCompile(`\$\{[^}]+\}`),   // ${variable}
	regexp.MustCompile(`%[^%]+%`),       // %variable%
}

// PreservedPlaceholders lists the distinct placeholder-like tokens in the
// original and improved text of segments, sorted.
func PreservedPlaceholders(segments []extract.TextSegment) []string {
	seen := make(map[string]struct{})
	for _, s := range segments {
		for _, re := range placeholderPatterns {
			for _, m := range re.FindAllString(s.OriginalText, -1) {
				seen[m] = struct{}{}
			}
			for _, m := range re.FindAllString(s.ImprovedText, -1) {
				seen[m] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Change is one segment whose improved text differs from the original.
type Change struct {
	Location string `json:"location" yaml:"location"`
	Original string `json:"original" yaml:"original"`
	Improved string `json:"improved" yaml:"improved"`
	Type     string `json:"type" yaml:"type"`
}

// PreviewStats counts segments by outcome.
type PreviewStats struct {
	TotalSegments         int `json:"total_segments" yaml:"total_segments"`
	ImprovedSegments      int `json:"improved_segments" yaml:"improved_segments"`
	UnchangedSegments     int `json:"unchanged_segments" yaml:"unchanged_segments"`
	PreservedPlaceholders int `json:"preserved_placeholders" yaml:"preserved_placeholders"`
}

// PreviewReport summarises improved segments for review before applying.
type PreviewReport struct {
	Changes      []Change     `json:"changes" yaml:"changes"`
	Stats        PreviewStats `json:"stats" yaml:"stats"`
	Placeholders []string     `json:"placeholders" yaml:"placeholders"`
}

// Preview lists the segments that would change and counts the rest.
func Preview(segments []extract.TextSegment) *PreviewReport {
	p := &PreviewReport{
		Changes:      []Change{},
		Placeholders: PreservedPlaceholders(segments),
	}
	p.Stats.TotalSegments = len(segments)
	for _, s := range segments {
		if !s.Improved() {
			p.Stats.UnchangedSegments++
			continue
		}
		p.Changes = append(p.Changes, Change{
			Location: s.LocationInfo,
			Original: s.OriginalText,
			Improved: s.ImprovedText,
			Type:     s.LocationType,
		})
		p.Stats.ImprovedSegments++
	}
	p.Stats.PreservedPlaceholders = len(p.Placeholders)
	return p
}
