package capture

import (
	"sync/atomic"

	"github.com/verte-zerg/staccato/internal/model"
)

// Queue is a bounded multi-producer/single-consumer event buffer. Offer
// never blocks: when the queue is full the new event is dropped, so input
// capture cannot stall behind a slow consumer. Drops are counted for
// diagnosing capture gaps.
type Queue struct {
	ch      chan model.KeyEvent
	dropped atomic.Uint64
}

// NewQueue returns a queue with the given capacity (minimum 1).
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan model.KeyEvent, capacity)}
}

// Offer enqueues an event without blocking and reports whether it was
// accepted. On overflow the newest event is the one dropped.
func (q *Queue) Offer(ev model.KeyEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain removes up to max queued events (all of them when max <= 0),
// preserving enqueue order. It never blocks.
func (q *Queue) Drain(max int) []model.KeyEvent {
	var out []model.KeyEvent
	for max <= 0 || len(out) < max {
		select {
		case ev := <-q.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// Len returns the number of currently queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns the total number of events discarded on overflow.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
