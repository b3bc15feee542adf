package improve

import (
	"reflect"
	"strings"
	"testing"
)

func TestFormatSegments(t *testing.T) {
	got := FormatSegments([]string{"first one", "second"})
	if got != "[SEGMENT_0] first one\n\n[SEGMENT_1] second" {
		t.Errorf("FormatSegments() = %q", got)
	}
}

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Segment
	}{
		{
			name:    "one per line",
			content: "[SEGMENT_0] Hello there.\n[SEGMENT_1] Goodbye.",
			want:    []Segment{{0, "Hello there."}, {1, "Goodbye."}},
		},
		{
			name:    "continuation lines joined",
			content: "  [SEGMENT_0] Line one\n\n  line two\n[SEGMENT_2]\nonly on next line",
			want:    []Segment{{0, "Line one line two"}, {2, "only on next line"}},
		},
		{
			name:    "preamble ignored",
			content: "Here you go:\n[SEGMENT_0] Fixed.",
			want:    []Segment{{0, "Fixed."}},
		},
		{
			name:    "empty segment omitted",
			content: "[SEGMENT_0]\n[SEGMENT_1] kept",
			want:    []Segment{{1, "kept"}},
		},
		{
			name:    "repeated index",
			content: "[SEGMENT_0] a\n[SEGMENT_0] b",
			want:    []Segment{{0, "a"}, {0, "b"}},
		},
		{
			name:    "marker must start the line",
			content: "[SEGMENT_0] a\nsee [SEGMENT_1] b",
			want:    []Segment{{0, "a see [SEGMENT_1] b"}},
		},
		{
			name:    "no markers",
			content: "nothing useful",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSegments(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSegments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != GrammarClarity {
		t.Errorf("ParseMode(\"\") = %q, %v", m, err)
	}
	for _, m := range Modes() {
		if got, err := ParseMode(string(m)); err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("shouty"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if Instruction("shouty") != Instruction(GrammarClarity) {
		t.Error("unknown mode should fall back to grammar_clarity")
	}
}

func TestCreateRequest(t *testing.T) {
	req, err := CreateRequest(Input{
		Texts:       []string{"We deliver quick.", "Price {{total}}"},
		Mode:        Concise,
		Temperature: 0.3,
		MaxTokens:   4000,
	})
	if err != nil {
		t.Fatal(err)
	}
	user := req.Messages[1].Content
	for _, want := range []string{
		"Please improve the following text segments. Make the text more concise while retaining all important information.",
		"Keep ALL placeholders like {{variable}}, [placeholder], {{client_name}}, {{date}} exactly as they are",
		"TEXT TO IMPROVE:\n[SEGMENT_0] We deliver quick.\n\n[SEGMENT_1] Price {{total}}\n",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	if req.ResponseFormat != nil {
		t.Error("improvement responses are plain text")
	}
	if !strings.Contains(req.Messages[0].Content, "[SEGMENT_0] improved text here") {
		t.Error("system prompt missing segment format")
	}
}
