package ui

import (
	"context"
	"sync"
)

// TickQueue defers callbacks until Flush is called, the way a UI framework
// runs callbacks after its next render pass.
type TickQueue struct {
	mu      sync.Mutex
	pending []func()
}

// NextTick queues fn for the next Flush.
func (q *TickQueue) NextTick(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of queued callbacks.
func (q *TickQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs queued callbacks in order. Callbacks queued while flushing run
// in the same call. It returns the number of callbacks run.
func (q *TickQueue) Flush() int {
	ran := 0
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Loop runs scheduled callbacks on its own goroutine, one at a time.
type Loop struct {
	ticks chan func()
}

// NewLoop returns a loop that buffers up to size callbacks.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{ticks: make(chan func(), size)}
}

// NextTick schedules fn. It blocks while the buffer is full.
func (l *Loop) NextTick(fn func()) {
	l.ticks <- fn
}

// Run executes callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.ticks:
			fn()
		}
	}
}
