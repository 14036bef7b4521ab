// Package ringbuf provides a fixed-capacity circular buffer with per-slot
// occupancy tracking.
//
// A RingBuffer owns N slots and two independent cursors. Write stores a value
// at the write cursor and advances it; Read takes the value at the read
// cursor, clears the slot and advances it. There is no length counter: a slot
// either holds an unread value or it is empty, and that is the only record of
// what is left to read.
//
// Writes are never rejected. When the write cursor reaches a slot that still
// holds an unread value, the value is overwritten without notice. After N
// writes with no reads the two cursors meet, so the next write replaces the
// value the next Read would have returned:
//
//	rb := ringbuf.New[int](3)
//	for i := 1; i <= 6; i++ {
//		rb.Write(i)
//	}
//	v, _ := rb.Read() // 4: slot 0 was rewritten by the 4th write
//	v, _ = rb.Read()  // 5
//
// An empty buffer is detected by Read returning false. Reading an empty slot
// changes nothing, so it can be repeated freely.
//
// The buffer is meant for a single owner. It performs no locking; concurrent
// use must be synchronized by the caller.
//
// State returns a copy of the slots and cursors for inspection. State values
// encode to JSON, YAML and msgpack with empty slots written as null.
package ringbuf
