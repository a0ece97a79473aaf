// SPDX-License-Identifier: EPL-2.0

// Package mailbox is an unbounded FIFO queue for many producers and one
// consumer. Producers never block.
package mailbox

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Push once the mailbox has been closed.
var ErrClosed = errors.New("mailbox is closed")

type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool

	// ready holds at most one pending wake-up
	ready chan struct{}
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Push appends v. It never blocks.
func (m *Mailbox[T]) Push(v T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	m.wake()
	return nil
}

// Pop removes the oldest item. ok is false when the mailbox is empty.
func (m *Mailbox[T]) Pop() (v T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.head >= len(m.items) {
		return v, false
	}

	v = m.items[m.head]
	var zero T
	m.items[m.head] = zero
	m.head++

	// reclaim the consumed prefix once it dominates the backing array
	if m.head == len(m.items) {
		m.items, m.head = m.items[:0], 0
	} else if m.head > 64 && m.head*2 > len(m.items) {
		n := copy(m.items, m.items[m.head:])
		clear(m.items[n:])
		m.items, m.head = m.items[:n], 0
	}

	return v, true
}

// Ready is signalled after every Push and on Close. A receive does not
// mean an item is waiting; the consumer drains with Pop until it reports
// false, then waits again.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items) - m.head
}

// Any reports whether a queued item satisfies match. Items stay queued.
func (m *Mailbox[T]) Any(match func(T) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.items[m.head:] {
		if match(v) {
			return true
		}
	}
	return false
}

// Close stops further pushes. Items already queued can still be popped.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	already := m.closed
	m.closed = true
	m.mu.Unlock()

	if !already {
		m.wake()
	}
}

func (m *Mailbox[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *Mailbox[T]) wake() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
