package pipeline

import (
	"context"
	"log/slog"

	"github.com/myat555/WildfireNowcast/internal/model"
)

// Runner buffers ingested hotspots between cycles and hands them to the
// pipeline in batches when ticked.
type Runner struct {
	pipe      *Pipeline
	in        <-chan model.Hotspot
	batchSize int
	logger    *slog.Logger
}

func NewRunner(pipe *Pipeline, in <-chan model.Hotspot, batchSize int, logger *slog.Logger) *Runner {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Runner{pipe: pipe, in: in, batchSize: batchSize, logger: logger}
}

// Tick drains the input channel and runs cycles until the channel is
// empty, batchSize hotspots at a time. A tick with no pending hotspots
// is a no-op.
func (r *Runner) Tick(ctx context.Context) {
	for {
		batch := r.drain()
		if len(batch) == 0 {
			return
		}
		if _, err := r.pipe.RunCycle(ctx, batch); err != nil {
			if r.logger != nil {
				r.logger.Error("cycle aborted", "err", err)
			}
			return
		}
		if len(batch) < r.batchSize {
			return
		}
	}
}

func (r *Runner) drain() []model.Hotspot {
	batch := make([]model.Hotspot, 0, r.batchSize)
	for len(batch) < r.batchSize {
		select {
		case h := <-r.in:
			batch = append(batch, h)
		default:
			return batch
		}
	}
	return batch
}
