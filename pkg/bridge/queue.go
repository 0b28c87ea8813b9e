// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

// ChangeQueueCapacity is the number of pending edits kept between frames
const ChangeQueueCapacity = 50

// ChangeQueue is a bounded FIFO of pending edits. When full, pushing drops
// the oldest entry. It is not safe for concurrent use; Bridge guards it.
type ChangeQueue struct {
	entries []Change
	evicted uint64
}

// Push appends c and reports whether an old entry was evicted to make room
func (q *ChangeQueue) Push(c Change) bool {
	q.entries = append(q.entries, c)
	if len(q.entries) <= ChangeQueueCapacity {
		return false
	}
	copy(q.entries, q.entries[1:])
	q.entries[len(q.entries)-1] = nil
	q.entries = q.entries[:len(q.entries)-1]
	q.evicted++
	return true
}

// Len returns the number of pending entries
func (q *ChangeQueue) Len() int {
	return len(q.entries)
}

// Entries returns a copy of the pending entries, oldest first
func (q *ChangeQueue) Entries() []Change {
	out := make([]Change, len(q.entries))
	copy(out, q.entries)
	return out
}

// Drain returns all pending entries and empties the queue
func (q *ChangeQueue) Drain() []Change {
	out := q.entries
	q.entries = nil
	return out
}

// Evicted returns how many entries have been dropped for capacity
func (q *ChangeQueue) Evicted() uint64 {
	return q.evicted
}
