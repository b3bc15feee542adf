package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-docsmith")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-docsmith" {
			t.Errorf("expected path /tmp/test-docsmith, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-docsmith")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ConfigPath", dir.ConfigPath(), "/tmp/test-docsmith/config.yaml"},
		{"PromptsDir", dir.PromptsDir(), "/tmp/test-docsmith/prompts"},
		{"CallsPath", dir.CallsPath(), "/tmp/test-docsmith/llm_calls.jsonl"},
		{"OutputPath", dir.OutputPath("in/quote.docx", "filled"), "/tmp/test-docsmith/output/quote_filled.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}
}

func TestSuffixedName(t *testing.T) {
	tests := []struct {
		path, suffix, want string
	}{
		{"quote.docx", "template", "quote_template.docx"},
		{"/a/b/quote.v2.docx", "filled", "quote.v2_filled.docx"},
		{"README", "x", "README_x"},
		{"quote.docx", "", "quote.docx"},
	}
	for _, tt := range tests {
		if got := SuffixedName(tt.path, tt.suffix); got != tt.want {
			t.Errorf("SuffixedName(%q, %q) = %q, want %q", tt.path, tt.suffix, got, tt.want)
		}
	}
}

func TestDir_EnsureExists(t *testing.T) {
	dir, _ := New(filepath.Join(t.TempDir(), "docsmith"))

	if dir.Exists() {
		t.Fatal("expected directory to not exist")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	for _, p := range []string{dir.Path(), dir.PromptsDir(), dir.OutputDir()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not created: %v", p, err)
		}
	}
	if dir.ConfigExists() {
		t.Error("config should not exist yet")
	}
}
