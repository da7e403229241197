// Package capture defines the event source boundary and the bounded queue
// that decouples producers from the monitor's consumer loop.
//
// Operating-system key hooks are deliberately out of scope; they plug in by
// implementing Source. The package ships a synthetic demo source and a
// session replay source.
package capture

import (
	"context"
	"time"

	"github.com/verte-zerg/staccato/internal/model"
)

// Source pushes timestamped key events to the monitor. Implementations run
// on their own goroutine and must stop when the context is cancelled.
// Delivery is best effort; the only ordering guarantee is producer-local
// FIFO.
type Source interface {
	Stream(ctx context.Context, emit func(model.KeyEvent)) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(model.KeyEvent)) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(model.KeyEvent)) error {
	return f(ctx, emit)
}

var epoch = time.Now()

// Now returns monotonic seconds since process start, the timestamp domain
// for all live-captured events.
func Now() float64 {
	return time.Since(epoch).Seconds()
}
