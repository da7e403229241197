package tracker

import (
	"testing"

	"github.com/verte-zerg/staccato/internal/model"
)

type recordingListener struct {
	events    []model.KeyEvent
	snapshots []map[string]float64
}

func (r *recordingListener) HandleKeyEvent(ev model.KeyEvent, active map[string]float64) {
	r.events = append(r.events, ev)
	r.snapshots = append(r.snapshots, active)
}

type panickyListener struct{}

func (panickyListener) HandleKeyEvent(model.KeyEvent, map[string]float64) {
	panic("listener failure")
}

func press(key string, ts float64) model.KeyEvent {
	return model.KeyEvent{Key: key, Type: model.Press, Timestamp: ts}
}

func release(key string, ts float64) model.KeyEvent {
	return model.KeyEvent{Key: key, Type: model.Release, Timestamp: ts}
}

func TestPressThenRelease(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(l)

	if !tr.Process(press("a", 1.0)) {
		t.Fatalf("expected press to be accepted")
	}
	if tr.ActiveCount() != 1 {
		t.Fatalf("expected 1 active key, got %d", tr.ActiveCount())
	}
	if !tr.Process(release("a", 1.5)) {
		t.Fatalf("expected release to be accepted")
	}
	if tr.ActiveCount() != 0 {
		t.Fatalf("expected no active keys, got %d", tr.ActiveCount())
	}

	if len(l.events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(l.events))
	}
	// The release snapshot must still contain the key and its press time.
	if ts, ok := l.snapshots[1]["a"]; !ok || ts != 1.0 {
		t.Fatalf("release snapshot missing press time: %v", l.snapshots[1])
	}
}

func TestRepeatPressSuppressed(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(l)

	tr.Process(press("a", 1.0))
	if tr.Process(press("a", 2.0)) {
		t.Fatalf("expected repeat press to be rejected")
	}
	if got := tr.Active()["a"]; got != 1.0 {
		t.Fatalf("repeat press must not overwrite press time, got %v", got)
	}
	if len(l.events) != 1 {
		t.Fatalf("repeat press must not be forwarded, got %d notifications", len(l.events))
	}
	if tr.SuppressedRepeats() != 1 {
		t.Fatalf("expected 1 suppressed repeat, got %d", tr.SuppressedRepeats())
	}
}

func TestStrayRelease(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(l)

	if !tr.Process(release("x", 1.0)) {
		t.Fatalf("stray release must be accepted")
	}
	if tr.ActiveCount() != 0 {
		t.Fatalf("stray release must not alter state")
	}
	if len(l.snapshots) != 1 || len(l.snapshots[0]) != 0 {
		t.Fatalf("stray release must be forwarded with an empty snapshot: %v", l.snapshots)
	}
	if tr.StrayReleases() != 1 {
		t.Fatalf("expected 1 stray release, got %d", tr.StrayReleases())
	}
}

func TestKeysAreCaseInsensitive(t *testing.T) {
	tr := New()
	tr.Process(press("A", 1.0))
	if tr.Process(press("a", 1.1)) {
		t.Fatalf("expected case-folded repeat to be rejected")
	}
	tr.Process(release("A", 1.2))
	if tr.ActiveCount() != 0 {
		t.Fatalf("expected case-folded release to clear the key")
	}
}

func TestActiveCountNeverExceedsDistinctKeys(t *testing.T) {
	tr := New()
	seq := []model.KeyEvent{
		press("a", 0.0), press("a", 0.1), press("b", 0.2),
		release("c", 0.3), release("a", 0.4), release("a", 0.5),
		press("b", 0.6), release("b", 0.7),
	}
	for _, ev := range seq {
		tr.Process(ev)
		if tr.ActiveCount() < 0 || tr.ActiveCount() > 2 {
			t.Fatalf("active count out of bounds: %d", tr.ActiveCount())
		}
	}
}

func TestListenerIdempotentAddRemove(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(l)
	tr.AddListener(l)
	tr.Process(press("a", 1.0))
	if len(l.events) != 1 {
		t.Fatalf("duplicate registration must be a no-op, got %d notifications", len(l.events))
	}
	tr.RemoveListener(l)
	tr.RemoveListener(l)
	tr.Process(press("b", 2.0))
	if len(l.events) != 1 {
		t.Fatalf("removed listener must not be notified")
	}
}

func TestListenerPanicIsolated(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(panickyListener{})
	tr.AddListener(l)

	tr.Process(press("a", 1.0))
	if len(l.events) != 1 {
		t.Fatalf("panicking listener must not block the others")
	}
	if tr.ActiveCount() != 1 {
		t.Fatalf("panicking listener must not corrupt tracker state")
	}
}

func TestSnapshotsAreIndependentCopies(t *testing.T) {
	tr := New()
	first := &recordingListener{}
	second := &recordingListener{}
	tr.AddListener(first)
	tr.AddListener(second)

	tr.Process(press("a", 1.0))
	first.snapshots[0]["a"] = 999
	if second.snapshots[0]["a"] != 1.0 {
		t.Fatalf("listener snapshots must be independent copies")
	}
	if tr.Active()["a"] != 1.0 {
		t.Fatalf("listener mutation must not reach tracker state")
	}
}

func TestClearResetsStateSilently(t *testing.T) {
	tr := New()
	l := &recordingListener{}
	tr.AddListener(l)
	tr.Process(press("a", 1.0))
	notified := len(l.events)

	tr.Clear()
	if tr.ActiveCount() != 0 {
		t.Fatalf("expected clear to empty the state")
	}
	if len(l.events) != notified {
		t.Fatalf("clear must not notify listeners")
	}
}
