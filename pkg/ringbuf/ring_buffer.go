package ringbuf

import (
	"fmt"
	"strings"
)

const zeroValuePanic = "ringbuf: RingBuffer not created with New or FromState"

// RingBuffer is a fixed-capacity circular buffer that overwrites unread
// values when the write cursor catches up with them.
//
// Every slot records whether it holds an unread value. The read and write
// cursors advance independently modulo the capacity and are never compared
// with each other; emptiness is decided by the slot under the read cursor.
//
// A RingBuffer must be created with New or FromState; the zero value has no
// slots and Write and Read panic on it. A RingBuffer is not safe for
// concurrent use.
type RingBuffer[T any] struct {
	slots      []Slot[T]
	readIndex  int
	writeIndex int
}

// New creates a RingBuffer with the given capacity. All slots start empty and
// both cursors start at 0.
//
// New panics if capacity is not positive.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringbuf: capacity must be positive, got %d", capacity))
	}
	return &RingBuffer[T]{
		slots: make([]Slot[T], capacity),
	}
}

// FromState creates a RingBuffer holding exactly the given slots and cursors.
// The slots are copied. It returns an error wrapping ErrInvalidState if s has
// no slots or a cursor is out of range.
func FromState[T any](s State[T]) (*RingBuffer[T], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rb := &RingBuffer[T]{
		slots:      make([]Slot[T], len(s.Slots)),
		readIndex:  s.ReadIndex,
		writeIndex: s.WriteIndex,
	}
	copy(rb.slots, s.Slots)
	return rb, nil
}

// Write stores v in the slot under the write cursor and advances the cursor.
// Any unread value in that slot is discarded.
func (rb *RingBuffer[T]) Write(v T) {
	rb.mustInit()
	rb.slots[rb.writeIndex] = Some(v)
	rb.writeIndex = rb.next(rb.writeIndex)
}

// Read returns the value under the read cursor, clears its slot and advances
// the cursor. If the slot is empty it returns the zero value and false and
// leaves the buffer untouched.
func (rb *RingBuffer[T]) Read() (T, bool) {
	rb.mustInit()
	s := rb.slots[rb.readIndex]
	if !s.Occupied {
		var zero T
		return zero, false
	}
	rb.slots[rb.readIndex] = Slot[T]{}
	rb.readIndex = rb.next(rb.readIndex)
	return s.Value, true
}

// Capacity returns the number of slots.
func (rb *RingBuffer[T]) Capacity() int {
	return len(rb.slots)
}

// State returns a copy of the slots and both cursors.
func (rb *RingBuffer[T]) State() State[T] {
	slots := make([]Slot[T], len(rb.slots))
	copy(slots, rb.slots)
	return State[T]{
		Slots:      slots,
		ReadIndex:  rb.readIndex,
		WriteIndex: rb.writeIndex,
	}
}

// String renders the slots and cursors, e.g. "[6 7 _ 4 5] r=3 w=2".
func (rb *RingBuffer[T]) String() string {
	return formatState(rb.slots, rb.readIndex, rb.writeIndex)
}

func (rb *RingBuffer[T]) mustInit() {
	if len(rb.slots) == 0 {
		panic(zeroValuePanic)
	}
}

func (rb *RingBuffer[T]) next(i int) int {
	if i+1 == len(rb.slots) {
		return 0
	}
	return i + 1
}

// Equal reports whether a and b have the same capacity, cursors and slots.
// Values held by empty slots are not compared.
func Equal[T comparable](a, b *RingBuffer[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal but compares occupied slot values with eq.
func EqualFunc[T any](a, b *RingBuffer[T], eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.readIndex != b.readIndex || a.writeIndex != b.writeIndex {
		return false
	}
	return slotsEqual(a.slots, b.slots, eq)
}

func formatState[T any](slots []Slot[T], r, w int) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, s := range slots {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.String())
	}
	fmt.Fprintf(&sb, "] r=%d w=%d", r, w)
	return sb.String()
}
