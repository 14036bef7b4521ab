// Package replay drives a ring buffer from a declarative script and records
// the full buffer state after every operation.
//
// A script names a capacity and a list of write and read operations. Reads
// may carry an expected value, and the script may carry the expected final
// state:
//
//	name: overwrite on full
//	capacity: 3
//	ops:
//	  - {op: write, value: 1}
//	  - {op: write, value: 2}
//	  - {op: write, value: 3}
//	  - {op: write, value: 4}
//	  - {op: read, want: 4}
//	expect:
//	  slots: [null, 2, 3]
//	  read_index: 1
//	  write_index: 1
//
// Runner.Run executes a script and returns a Report with one Step per
// operation. Expectation mismatches are reported as Failures rather than
// errors.
package replay

import (
	"errors"
	"fmt"

	"github.com/reb0und/sringbuf/pkg/cli"
	"github.com/reb0und/sringbuf/pkg/ringbuf"
)

// ErrInvalidScript is returned when a script cannot be run.
var ErrInvalidScript = errors.New("replay: invalid script")

// OpKind names a buffer operation.
type OpKind string

// Operation kinds.
const (
	OpWrite OpKind = "write"
	OpRead  OpKind = "read"
)

// IsValid returns true if the op kind is known.
func (k OpKind) IsValid() bool {
	return k == OpWrite || k == OpRead
}

// Op is one scripted operation.
type Op struct {
	Op OpKind `json:"op" yaml:"op" msgpack:"op"`

	// Value is the value to write. Required for writes.
	Value any `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`

	// Want is the value a read is expected to return.
	Want any `json:"want,omitempty" yaml:"want,omitempty" msgpack:"want,omitempty"`

	// WantEmpty expects a read to find the buffer empty.
	WantEmpty bool `json:"want_empty,omitempty" yaml:"want_empty,omitempty" msgpack:"want_empty,omitempty"`
}

// Script is a replayable sequence of operations on a buffer of a fixed
// capacity.
type Script struct {
	Name     string              `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Capacity int                 `json:"capacity" yaml:"capacity" msgpack:"capacity"`
	Ops      []Op                `json:"ops" yaml:"ops" msgpack:"ops"`
	Expect   *ringbuf.State[any] `json:"expect,omitempty" yaml:"expect,omitempty" msgpack:"expect,omitempty"`
}

// Validate checks the script before it is run.
func (s *Script) Validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidScript, s.Capacity)
	}
	for i, op := range s.Ops {
		switch {
		case !op.Op.IsValid():
			return fmt.Errorf("%w: op %d: unknown op %q", ErrInvalidScript, i, op.Op)
		case op.Op == OpWrite && op.Value == nil:
			return fmt.Errorf("%w: op %d: write without value", ErrInvalidScript, i)
		case op.Op == OpWrite && (op.Want != nil || op.WantEmpty):
			return fmt.Errorf("%w: op %d: write cannot carry read expectations", ErrInvalidScript, i)
		case op.Op == OpRead && op.Value != nil:
			return fmt.Errorf("%w: op %d: read cannot carry a value", ErrInvalidScript, i)
		case op.Op == OpRead && op.Want != nil && op.WantEmpty:
			return fmt.Errorf("%w: op %d: want and want_empty are exclusive", ErrInvalidScript, i)
		}
	}
	if s.Expect != nil {
		if err := s.Expect.Validate(); err != nil {
			return fmt.Errorf("%w: expect: %w", ErrInvalidScript, err)
		}
		if n := len(s.Expect.Slots); n != s.Capacity {
			return fmt.Errorf("%w: expect has %d slots, capacity is %d", ErrInvalidScript, n, s.Capacity)
		}
	}
	return nil
}

// LoadScript reads and validates a YAML or JSON script file.
func LoadScript(path string) (*Script, error) {
	var s Script
	if err := cli.LoadRequest(path, &s); err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	return &s, nil
}

// ParseScript parses and validates script data. The filename extension
// selects YAML or JSON.
func ParseScript(data []byte, filename string) (*Script, error) {
	var s Script
	if err := cli.ParseRequest(data, filename, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", filename, err)
	}
	return &s, nil
}
