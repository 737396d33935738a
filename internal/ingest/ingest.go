package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// SkipTally counts malformed records dropped at ingest. Sources increment
// it as they skip; the pipeline drains it into each cycle summary. Nil
// tallies are safe no-ops.
type SkipTally struct {
	n atomic.Int64
}

func (t *SkipTally) Inc() {
	if t != nil {
		t.n.Add(1)
	}
}

// Drain returns the count accumulated since the last drain and resets it.
func (t *SkipTally) Drain() int {
	if t == nil {
		return 0
	}
	return int(t.n.Swap(0))
}

func SendNonBlocking(ctx context.Context, out chan<- model.Hotspot, h model.Hotspot, logger *slog.Logger) bool {
	select {
	case out <- h:
		return true
	case <-ctx.Done():
		return false
	default:
		if logger != nil {
			logger.Warn("hotspot channel full, dropping record", "hotspot_id", h.ID, "lat", h.Latitude, "lon", h.Longitude)
		}
		return false
	}
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
