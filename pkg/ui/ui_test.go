package ui

import (
	"context"
	"testing"
	"time"
)

func TestBarIdempotent(t *testing.T) {
	b := NewBar()

	var events []bool
	remove := b.OnChange(func(active bool) { events = append(events, active) })

	b.Start()
	b.Start()
	if !b.Active() {
		t.Fatal("Active() = false after Start")
	}
	b.Finish()
	b.Finish()
	if b.Active() {
		t.Fatal("Active() = true after Finish")
	}

	if b.Starts() != 1 || b.Finishes() != 1 {
		t.Errorf("Starts/Finishes = %d/%d, want 1/1", b.Starts(), b.Finishes())
	}
	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("events = %v, want [true false]", events)
	}

	remove()
	b.Start()
	if len(events) != 2 {
		t.Errorf("listener called after remove: %v", events)
	}
}

func TestBarFinishWhileIdle(t *testing.T) {
	b := NewBar()
	b.Finish()
	if b.Finishes() != 0 {
		t.Errorf("Finishes() = %d, want 0", b.Finishes())
	}
}

func TestLayout(t *testing.T) {
	l := NewLayout("default")
	if got := l.Name(); got != "default" {
		t.Errorf("Name() = %q, want default", got)
	}
	l.SetLayout("admin")
	if got := l.Name(); got != "admin" {
		t.Errorf("Name() = %q, want admin", got)
	}
	l.SetLayout("")
	if got := l.Name(); got != "default" {
		t.Errorf("Name() = %q after reset, want default", got)
	}
}

func TestTickQueue(t *testing.T) {
	var q TickQueue
	var order []int

	q.NextTick(func() { order = append(order, 1) })
	q.NextTick(func() {
		order = append(order, 2)
		q.NextTick(func() { order = append(order, 3) })
	})

	if len(order) != 0 {
		t.Fatal("callbacks ran before Flush")
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if ran := q.Flush(); ran != 3 {
		t.Errorf("Flush() = %d, want 3", ran)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
	if q.Flush() != 0 {
		t.Error("second Flush ran callbacks")
	}
}

func TestLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop(4)
	go l.Run(ctx)

	done := make(chan int, 2)
	l.NextTick(func() { done <- 1 })
	l.NextTick(func() { done <- 2 })

	for want := 1; want <= 2; want++ {
		select {
		case got := <-done:
			if got != want {
				t.Errorf("callback %d ran, want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for callback")
		}
	}
}
