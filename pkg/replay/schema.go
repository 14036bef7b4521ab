package replay

import (
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/reb0und/sringbuf/pkg/ringbuf"
)

// Schema returns the JSON Schema of a script file.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Script](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			// A slot is a bare value or null.
			reflect.TypeFor[ringbuf.Slot[any]](): {},
		},
	})
	if err != nil {
		return nil, err
	}
	s.Description = "sringbuf replay script"
	if ops := s.Properties["ops"]; ops != nil && ops.Items != nil {
		if kind := ops.Items.Properties["op"]; kind != nil {
			kind.Enum = []any{string(OpWrite), string(OpRead)}
		}
	}
	return s, nil
}
