// Package tracker maintains the set of currently held keys.
package tracker

import (
	"github.com/verte-zerg/staccato/internal/keys"
	"github.com/verte-zerg/staccato/internal/model"
)

// Listener receives accepted key events together with a snapshot of the
// active-key state taken at notification time. The snapshot is a copy; a
// listener may keep or mutate it freely.
//
// For a release of a held key the snapshot still contains the key, so the
// listener can read the matching press timestamp. For a stray release the
// snapshot is empty.
type Listener interface {
	HandleKeyEvent(ev model.KeyEvent, active map[string]float64)
}

// ListenerFunc adapts a function to the Listener interface.
//
// Note that two ListenerFunc values are never identical for registration
// purposes; use a named type when idempotent Add/Remove matters.
type ListenerFunc func(ev model.KeyEvent, active map[string]float64)

// HandleKeyEvent calls the underlying function.
func (f ListenerFunc) HandleKeyEvent(ev model.KeyEvent, active map[string]float64) {
	f(ev, active)
}

// Tracker converts a raw press/release stream into a consistent held-key
// model and fans accepted events out to listeners. It is the single writer
// of the active-key state; everything downstream sees copies.
//
// Tracker is not safe for concurrent use. The monitor drives it from a
// single consumer goroutine.
type Tracker struct {
	active    map[string]float64
	listeners []Listener

	suppressedRepeats uint64
	strayReleases     uint64
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{active: map[string]float64{}}
}

// AddListener registers a listener. Registering the same listener twice is
// a no-op; listeners are compared by interface identity.
func (t *Tracker) AddListener(l Listener) {
	if l == nil {
		return
	}
	for _, existing := range t.listeners {
		if existing == l {
			return
		}
	}
	t.listeners = append(t.listeners, l)
}

// RemoveListener unregisters a listener. Removing an unknown listener is a
// no-op.
func (t *Tracker) RemoveListener(l Listener) {
	for i, existing := range t.listeners {
		if existing == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Process applies one event to the active-key state and reports whether it
// was accepted.
//
// A press of an already-held key is a key-repeat artifact: it is rejected,
// the recorded press timestamp is kept, and listeners are not notified. A
// release is always accepted; if the key is not held (focus-loss artifact)
// the state is unchanged and listeners see an empty snapshot.
func (t *Tracker) Process(ev model.KeyEvent) bool {
	key := keys.Normalize(ev.Key)

	switch ev.Type {
	case model.Press:
		if _, held := t.active[key]; held {
			t.suppressedRepeats++
			return false
		}
		t.active[key] = ev.Timestamp
		t.notify(ev, t.snapshot())
	case model.Release:
		if _, held := t.active[key]; held {
			// Snapshot before removal so listeners can compute duration.
			t.notify(ev, t.snapshot())
			delete(t.active, key)
		} else {
			t.strayReleases++
			t.notify(ev, map[string]float64{})
		}
	}
	return true
}

// Active returns a copy of the currently held keys and press timestamps.
func (t *Tracker) Active() map[string]float64 {
	return t.snapshot()
}

// ActiveCount returns the number of currently held keys.
func (t *Tracker) ActiveCount() int {
	return len(t.active)
}

// SuppressedRepeats returns how many repeat presses were rejected.
func (t *Tracker) SuppressedRepeats() uint64 {
	return t.suppressedRepeats
}

// StrayReleases returns how many releases arrived without a matching press.
func (t *Tracker) StrayReleases() uint64 {
	return t.strayReleases
}

// Clear resets the active-key state without notifying listeners.
func (t *Tracker) Clear() {
	t.active = map[string]float64{}
}

func (t *Tracker) snapshot() map[string]float64 {
	out := make(map[string]float64, len(t.active))
	for k, ts := range t.active {
		out[k] = ts
	}
	return out
}

// notify hands each listener its own copy of the snapshot, so a listener
// that holds on to or mutates the map cannot affect its peers.
func (t *Tracker) notify(ev model.KeyEvent, base map[string]float64) {
	for _, l := range t.listeners {
		snap := make(map[string]float64, len(base))
		for k, ts := range base {
			snap[k] = ts
		}
		invoke(l, ev, snap)
	}
}

// invoke isolates listener panics so one failing listener cannot prevent
// the others from being notified or corrupt tracker state.
func invoke(l Listener, ev model.KeyEvent, active map[string]float64) {
	defer func() {
		_ = recover()
	}()
	l.HandleKeyEvent(ev, active)
}
