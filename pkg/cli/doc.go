// Package cli provides common CLI utilities for sringbuf command-line tools.
//
// This package includes:
//   - Configuration management (output format, log level)
//   - Output formatting (YAML, JSON, msgpack, table)
//   - jq filtering of results before output
//   - Strict request file loading (YAML/JSON)
//   - Terminal rendering of ring buffer state
//
// Configuration is stored in ~/.sringbuf/<app>/config.yaml.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("sringbuf")
//
//	cli.Output(report, cli.OutputOptions{
//	    Format: cfg.OutputFormat(),
//	    File:   outputPath,
//	})
package cli
