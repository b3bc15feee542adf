// Package output writes command results as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Default is the default output format.
var Default Format = FormatYAML

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	case "":
		return Default, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (want yaml or json)", s)
	}
}

// Writer encodes values to one destination in one format.
type Writer struct {
	w      io.Writer
	format Format
}

// New returns a Writer for w. A nil w writes to stdout.
func New(w io.Writer, format Format) *Writer {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = Default
	}
	return &Writer{w: w, format: format}
}

// Format returns the writer's format.
func (o *Writer) Format() Format {
	return o.format
}

// Write encodes data in the writer's format.
func (o *Writer) Write(data any) error {
	return To(o.w, o.format, data)
}

// To writes data to the given writer in the specified format.
func To(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ReadValues decodes a flat name to value map from YAML or JSON bytes.
// JSON is a subset of YAML, so one decoder serves both. Non-string scalars
// are rendered with fmt.
func ReadValues(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case map[string]any, []any:
			return nil, fmt.Errorf("value for %q must be a scalar", k)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
