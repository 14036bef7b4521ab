package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

// ErrEmptyRequest is returned when a request file holds no document.
var ErrEmptyRequest = errors.New("cli: empty request")

// Request files are decoded strictly: a key that does not map to a field of
// the target is an error, so a misspelled "want" fails instead of being
// dropped. JSON with syntax errors (trailing commas, single quotes, missing
// brackets) is repaired and decoded once more.

// LoadRequest loads a request from a YAML or JSON file into v.
func LoadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return ParseRequest(data, path, v)
}

// ParseRequest decodes data into v. A .json extension selects JSON; any
// other name is decoded as YAML, which also accepts JSON documents.
func ParseRequest(data []byte, filename string, v any) error {
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		return decodeJSON(data, v)
	}
	return decodeYAML(data, v)
}

// LoadRequestFromStdin loads a YAML or JSON request from stdin.
func LoadRequestFromStdin(v any) error {
	return LoadRequestFromReader(os.Stdin, v)
}

// LoadRequestFromReader loads a YAML or JSON request from r.
func LoadRequestFromReader(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return decodeYAML(data, v)
}

func decodeJSON(data []byte, v any) error {
	err := decodeStrictJSON(data, v)
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return err
	}
	return decodeStrictJSON([]byte(fixed), v)
}

func decodeStrictJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyRequest
		}
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse JSON: trailing data after document")
	}
	return nil
}

func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyRequest
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
