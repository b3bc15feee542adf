package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the docsmith home directory.
	DefaultDirName = ".docsmith"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// PromptsDirName holds prompt override files.
	PromptsDirName = "prompts"

	// CallsFileName is the JSONL trace of service calls.
	CallsFileName = "llm_calls.jsonl"

	// OutputDirName is the default destination for generated documents.
	OutputDirName = "output"
)

// Dir represents the docsmith home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.docsmith).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// PromptsDir returns the directory for prompt overrides.
func (d *Dir) PromptsDir() string {
	return filepath.Join(d.path, PromptsDirName)
}

// CallsPath returns the path of the service call trace.
func (d *Dir) CallsPath() string {
	return filepath.Join(d.path, CallsFileName)
}

// OutputDir returns the default directory for generated documents.
func (d *Dir) OutputDir() string {
	return filepath.Join(d.path, OutputDirName)
}

// OutputPath returns where a document named name is written, with suffix
// inserted before the extension: quote.docx, "filled" -> quote_filled.docx.
func (d *Dir) OutputPath(name, suffix string) string {
	return filepath.Join(d.OutputDir(), SuffixedName(name, suffix))
}

// SuffixedName inserts _suffix before the extension of the base name of path.
func SuffixedName(path, suffix string) string {
	base := filepath.Base(path)
	if suffix == "" {
		return base
	}
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)] + "_" + suffix + ext
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.PromptsDir(), d.OutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
