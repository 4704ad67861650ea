package upload

import (
	"context"
	"time"
)

// Stage labels shown next to the progress value.
const (
	StageUploading  = "Uploading document..."
	StageExtracting = "Extracting clinical data..."
	StageMatching   = "Matching insurance packages..."
	StageFinalizing = "Finalizing analysis..."
)

// StageFor returns the label for a progress value.
func StageFor(progress int) string {
	switch {
	case progress < 30:
		return StageUploading
	case progress < 60:
		return StageExtracting
	case progress < 90:
		return StageMatching
	default:
		return StageFinalizing
	}
}

// Ticker is the tick source of the progress driver.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker with the given period.
type TickerFactory func(d time.Duration) Ticker

// timeTicker adapts *time.Ticker to Ticker.
type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFactory.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// drive advances synthetic progress on every tick until ctx is done.
// It never reaches 100; only a resolved request does.
func (c *Controller) drive(ctx context.Context) {
	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if c.session.Phase != PhaseSubmitting && c.session.Phase != PhaseAwaitingResult {
		return
	}
	next := min(c.session.Progress+c.step, c.ceiling)
	if next == c.session.Progress {
		return
	}
	c.session.Progress = next
	c.session.Stage = StageFor(next)
	c.notifyLocked()
}
