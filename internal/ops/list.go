package ops

import (
	"context"
	"slices"
	"time"

	"github.com/hpungsan/tokime/internal/manager"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	RunningOnly bool
	NewestFirst bool // order by creation time, newest first; ties keep insertion order
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items   []StopwatchView `json:"items"`
	Count   int             `json:"count"`
	Running int             `json:"running"`
	TotalMs int64           `json:"total_ms"`
}

// List returns stopwatches in insertion order, or newest first.
func List(ctx context.Context, mgr *manager.Manager, input ListInput) (*ListOutput, error) {
	items := viewStopwatches(ctx, mgr, input.RunningOnly, time.Local)
	if input.NewestFirst {
		slices.SortStableFunc(items, func(a, b StopwatchView) int {
			switch {
			case a.CreatedAt > b.CreatedAt:
				return -1
			case a.CreatedAt < b.CreatedAt:
				return 1
			}
			return 0
		})
	}

	out := &ListOutput{
		Items: items,
		Count: len(items),
	}
	for _, v := range out.Items {
		if v.Running {
			out.Running++
		}
		out.TotalMs += v.TotalMs
	}
	return out, nil
}

// RunningOutput contains the result of the Running operation.
type RunningOutput struct {
	Count int             `json:"count"`
	Items []StopwatchView `json:"items"`
}

// Running reports how many stopwatches are running, and which.
func Running(ctx context.Context, mgr *manager.Manager) (*RunningOutput, error) {
	running := viewStopwatches(ctx, mgr, true, time.Local)
	return &RunningOutput{
		Count: len(running),
		Items: running,
	}, nil
}
