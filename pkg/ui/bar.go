package ui

import (
	"sync"

	"go.uber.org/atomic"
)

// BarListener is called whenever the bar starts or finishes.
type BarListener func(active bool)

// Bar is a global loading bar. Start and Finish are idempotent: repeated
// calls without a state change are ignored and do not notify listeners.
type Bar struct {
	active   *atomic.Bool
	starts   *atomic.Int64
	finishes *atomic.Int64

	mu        sync.Mutex
	nextID    int
	listeners map[int]BarListener
}

// NewBar returns an idle bar.
func NewBar() *Bar {
	return &Bar{
		active:    atomic.NewBool(false),
		starts:    atomic.NewInt64(0),
		finishes:  atomic.NewInt64(0),
		listeners: make(map[int]BarListener),
	}
}

// Start shows the bar.
func (b *Bar) Start() {
	if b.active.CompareAndSwap(false, true) {
		b.starts.Inc()
		b.notify(true)
	}
}

// Finish hides the bar.
func (b *Bar) Finish() {
	if b.active.CompareAndSwap(true, false) {
		b.finishes.Inc()
		b.notify(false)
	}
}

// Active reports whether the bar is showing.
func (b *Bar) Active() bool {
	return b.active.Load()
}

// Starts returns how many times the bar went from idle to active.
func (b *Bar) Starts() int64 {
	return b.starts.Load()
}

// Finishes returns how many times the bar went from active to idle.
func (b *Bar) Finishes() int64 {
	return b.finishes.Load()
}

// OnChange registers l and returns a function that removes it.
func (b *Bar) OnChange(l BarListener) (remove func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Bar) notify(active bool) {
	b.mu.Lock()
	ls := make([]BarListener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.Unlock()

	for _, l := range ls {
		l(active)
	}
}
