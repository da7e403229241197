package capture

import (
	"context"
	"time"

	"github.com/verte-zerg/staccato/internal/model"
)

// ReplaySource feeds a recorded session back through the live pipeline,
// re-stamping events into the current clock domain so the rolling window
// math works unchanged.
type ReplaySource struct {
	session model.Session
	speed   float64
}

// NewReplaySource returns a source replaying the session at the given speed
// factor (1 = real time; values <= 0 fall back to 1).
func NewReplaySource(session model.Session, speed float64) *ReplaySource {
	if speed <= 0 {
		speed = 1
	}
	return &ReplaySource{session: session, speed: speed}
}

// Stream emits the recorded events with scaled inter-event delays and
// returns nil once the session is exhausted.
func (r *ReplaySource) Stream(ctx context.Context, emit func(model.KeyEvent)) error {
	events := r.session.Events
	if len(events) == 0 {
		return nil
	}
	first := events[0].Timestamp
	base := Now() + 0.1

	for _, ev := range events {
		due := base + (ev.Timestamp-first)/r.speed
		if wait := due - Now(); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(wait * float64(time.Second))):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out := ev
		out.Timestamp = due
		emit(out)
	}
	return nil
}
