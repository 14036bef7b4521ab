package ringbuf

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a State cannot describe a RingBuffer.
var ErrInvalidState = errors.New("ringbuf: invalid state")

// State is a snapshot of a RingBuffer: every slot in storage order and both
// cursors.
type State[T any] struct {
	Slots      []Slot[T] `json:"slots" yaml:"slots" msgpack:"slots"`
	ReadIndex  int       `json:"read_index" yaml:"read_index" msgpack:"read_index"`
	WriteIndex int       `json:"write_index" yaml:"write_index" msgpack:"write_index"`
}

// UnmarshalYAML implements the function-style yaml unmarshaler accepted by
// both gopkg.in/yaml.v3 and github.com/goccy/go-yaml. Neither library hands
// a null sequence element to a Slot unmarshaler, so slots are decoded as
// pointers here and a null becomes an empty slot.
func (s *State[T]) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		Slots      []*T `yaml:"slots"`
		ReadIndex  int  `yaml:"read_index"`
		WriteIndex int  `yaml:"write_index"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	slots := make([]Slot[T], len(raw.Slots))
	for i, v := range raw.Slots {
		if v != nil {
			slots[i] = Some(*v)
		}
	}
	*s = State[T]{Slots: slots, ReadIndex: raw.ReadIndex, WriteIndex: raw.WriteIndex}
	return nil
}

// Validate checks that s has at least one slot and both cursors index into
// it.
func (s State[T]) Validate() error {
	n := len(s.Slots)
	if n == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidState)
	}
	if s.ReadIndex < 0 || s.ReadIndex >= n {
		return fmt.Errorf("%w: read_index %d out of range [0, %d)", ErrInvalidState, s.ReadIndex, n)
	}
	if s.WriteIndex < 0 || s.WriteIndex >= n {
		return fmt.Errorf("%w: write_index %d out of range [0, %d)", ErrInvalidState, s.WriteIndex, n)
	}
	return nil
}

// Values returns the values of occupied slots in storage order.
func (s State[T]) Values() []T {
	var vs []T
	for _, slot := range s.Slots {
		if slot.Occupied {
			vs = append(vs, slot.Value)
		}
	}
	return vs
}

// String renders the state in the same form as RingBuffer.String.
func (s State[T]) String() string {
	return formatState(s.Slots, s.ReadIndex, s.WriteIndex)
}

// StateEqual reports whether two states have the same cursors and slots.
func StateEqual[T comparable](a, b State[T]) bool {
	return StateEqualFunc(a, b, func(x, y T) bool { return x == y })
}

// StateEqualFunc is like StateEqual but compares occupied slot values with eq.
func StateEqualFunc[T any](a, b State[T], eq func(T, T) bool) bool {
	if a.ReadIndex != b.ReadIndex || a.WriteIndex != b.WriteIndex {
		return false
	}
	return slotsEqual(a.Slots, b.Slots, eq)
}
