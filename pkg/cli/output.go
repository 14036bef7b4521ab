package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatYAML outputs as YAML (default for terminal)
	FormatYAML OutputFormat = "yaml"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatMsgpack outputs msgpack bytes
	FormatMsgpack OutputFormat = "msgpack"
	// FormatTable outputs as formatted table
	FormatTable OutputFormat = "table"
	// FormatRaw outputs raw data
	FormatRaw OutputFormat = "raw"
)

// IsValid reports whether f is a known format
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatMsgpack, FormatTable, FormatRaw:
		return true
	}
	return false
}

// TableRenderer is implemented by results that know how to draw themselves
// for FormatTable.
type TableRenderer interface {
	RenderTable(s Styles) string
}

// OutputOptions configures output behavior
type OutputOptions struct {
	// Format is the output format (yaml, json, msgpack, table, raw)
	Format OutputFormat

	// File is the output file path (empty for stdout)
	File string

	// Writer is an optional custom writer (overrides File)
	Writer io.Writer

	// Styles is used by FormatTable. The zero value renders without color.
	Styles Styles
}

// Output writes the result to the configured destination
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout

	if opts.Writer != nil {
		w = opts.Writer
	} else if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatJSON:
		return outputJSON(w, result)
	case FormatYAML, "":
		return outputYAML(w, result)
	case FormatMsgpack:
		return outputMsgpack(w, result)
	case FormatTable:
		return outputTable(w, result, opts.Styles)
	case FormatRaw:
		return outputRaw(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func outputJSON(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputMsgpack(w io.Writer, result any) error {
	data, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputTable(w io.Writer, result any, s Styles) error {
	tr, ok := result.(TableRenderer)
	if !ok {
		// Anything without a table form falls back to YAML.
		return outputYAML(w, result)
	}
	_, err := io.WriteString(w, tr.RenderTable(s)+"\n")
	return err
}

func outputRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	default:
		return outputYAML(w, result)
	}
}

// Print helpers for terminal output

// PrintSuccess prints a success message with checkmark
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintInfo prints an info message to stderr, keeping stdout for results.
func PrintInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ℹ "+format+"\n", args...)
}

// PrintWarning prints a warning message to stderr, keeping stdout for results.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}
