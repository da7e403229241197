package capture

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/staccato/internal/model"
)

// DemoConfig tunes the synthetic typing source.
type DemoConfig struct {
	Seed        int64
	KeysPerSec  float64
	AdhesionPct float64 // probability a keystroke overlaps its predecessor
	RepeatPct   float64 // probability of an injected key-repeat press
	StrayPct    float64 // probability of an injected stray release
}

// DefaultDemoConfig returns a plausible mid-speed typist with occasional
// adhesion artifacts.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Seed:        time.Now().UnixNano(),
		KeysPerSec:  6,
		AdhesionPct: 0.25,
		RepeatPct:   0.03,
		StrayPct:    0.02,
	}
}

var demoKeys = []string{
	"a", "s", "d", "f", "j", "k", "l", ";",
	"e", "r", "u", "i", "o", "t", "n", "m",
	"space", "left shift", "enter",
}

// DemoSource synthesizes a key event stream with injected adhesion, key
// repeats, and stray releases, so the full pipeline can run without an
// OS-level hook.
type DemoSource struct {
	cfg DemoConfig
	rnd *rand.Rand
}

// NewDemoSource returns a demo source seeded from the config.
func NewDemoSource(cfg DemoConfig) *DemoSource {
	if cfg.KeysPerSec <= 0 {
		cfg.KeysPerSec = DefaultDemoConfig().KeysPerSec
	}
	return &DemoSource{cfg: cfg, rnd: rand.New(rand.NewSource(cfg.Seed))}
}

// keystroke returns the events for one synthetic keystroke starting at the
// given timestamp, plus the start time of the next keystroke. Events may be
// stamped past the next start time; the stream merges them in order.
func (s *DemoSource) keystroke(at float64) ([]model.KeyEvent, float64) {
	key := demoKeys[s.rnd.Intn(len(demoKeys))]
	hold := 0.050 + s.rnd.Float64()*0.080
	gap := 1.0 / s.cfg.KeysPerSec * (0.6 + s.rnd.Float64()*0.8)

	if s.rnd.Float64() < s.cfg.AdhesionPct {
		// Start the next keystroke before this one releases.
		gap = hold * (0.3 + s.rnd.Float64()*0.6)
	} else if gap < hold {
		gap = hold + 0.010
	}

	events := []model.KeyEvent{
		{Key: key, Type: model.Press, Timestamp: at},
		{Key: key, Type: model.Release, Timestamp: at + hold},
	}
	if s.rnd.Float64() < s.cfg.RepeatPct {
		events = append(events, model.KeyEvent{Key: key, Type: model.Press, Timestamp: at + hold*0.5})
	}
	if s.rnd.Float64() < s.cfg.StrayPct {
		other := demoKeys[s.rnd.Intn(len(demoKeys))]
		events = append(events, model.KeyEvent{Key: other, Type: model.Release, Timestamp: at + hold*0.8})
	}
	return events, at + gap
}

// Stream emits synthetic events in timestamp order until the context is
// cancelled.
func (s *DemoSource) Stream(ctx context.Context, emit func(model.KeyEvent)) error {
	cursor := Now() + 0.2
	var pending []model.KeyEvent

	for {
		// Generate until the earliest pending event precedes the cursor;
		// everything scheduled later starts at or after the cursor, so the
		// pop below cannot run ahead of an ungenerated event.
		for len(pending) == 0 || pending[0].Timestamp >= cursor {
			events, next := s.keystroke(cursor)
			pending = append(pending, events...)
			sort.SliceStable(pending, func(i, j int) bool {
				return pending[i].Timestamp < pending[j].Timestamp
			})
			cursor = next
		}

		ev := pending[0]
		pending = pending[1:]
		if wait := ev.Timestamp - Now(); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(wait * float64(time.Second))):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		emit(ev)
	}
}
