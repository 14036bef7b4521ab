package cli

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query applies a jq expression to the JSON form of result and returns the
// emitted values. A single value is returned as is; several are returned as
// a []any.
func Query(result any, expr string) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}

	// gojq only understands plain JSON values.
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal jq input: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("unmarshal jq input: %w", err)
	}

	var out []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		out = append(out, v)
	}

	switch len(out) {
	case 0:
		return nil, fmt.Errorf("jq expression returned no result")
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}
