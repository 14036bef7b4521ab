package ringbuf

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Slot is one storage position of a RingBuffer. The zero value is an empty
// slot.
//
// In JSON, YAML and msgpack an occupied slot encodes as its value and an
// empty slot as null. An occupied slot whose value itself encodes as null
// (a nil pointer, map or slice) therefore decodes back as empty.
type Slot[T any] struct {
	Value    T
	Occupied bool
}

// Some returns an occupied slot holding v.
func Some[T any](v T) Slot[T] {
	return Slot[T]{Value: v, Occupied: true}
}

// None returns an empty slot.
func None[T any]() Slot[T] {
	return Slot[T]{}
}

// Get returns the slot value and whether the slot is occupied.
func (s Slot[T]) Get() (T, bool) {
	if !s.Occupied {
		var zero T
		return zero, false
	}
	return s.Value, true
}

// String returns the formatted value, or "_" for an empty slot.
func (s Slot[T]) String() string {
	if !s.Occupied {
		return "_"
	}
	return fmt.Sprint(s.Value)
}

// MarshalJSON implements json.Marshaler.
func (s Slot[T]) MarshalJSON() ([]byte, error) {
	if !s.Occupied {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Slot[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Slot[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface of both
// gopkg.in/yaml.v3 and github.com/goccy/go-yaml.
func (s Slot[T]) MarshalYAML() (any, error) {
	if !s.Occupied {
		return nil, nil
	}
	return s.Value, nil
}

// UnmarshalYAML implements the function-style yaml unmarshaler accepted by
// both gopkg.in/yaml.v3 and github.com/goccy/go-yaml. yaml.v3 never calls it
// for a null node; State decodes null slots itself. goccy leaves a nil
// pointer untouched, so v starts allocated and a null resets it to nil.
func (s *Slot[T]) UnmarshalYAML(unmarshal func(any) error) error {
	v := new(T)
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		*s = Slot[T]{}
		return nil
	}
	*s = Some(*v)
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (s Slot[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !s.Occupied {
		return enc.EncodeNil()
	}
	return enc.Encode(s.Value)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *Slot[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		*s = Slot[T]{}
		return dec.DecodeNil()
	}
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

func slotsEqual[T any](a, b []Slot[T], eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Occupied != b[i].Occupied {
			return false
		}
		if a[i].Occupied && !eq(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
