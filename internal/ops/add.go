package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Title string // optional, empty uses the configured placeholder
	Start bool   // start a session right away
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Stopwatch StopwatchView `json:"stopwatch"`
}

// Add creates a stopwatch and optionally starts it.
func Add(ctx context.Context, mgr *manager.Manager, input AddInput) (*AddOutput, error) {
	id := mgr.Add(ctx, stopwatch.Record{Title: strings.TrimSpace(input.Title)}).ID()

	if input.Start {
		mgr.Start(ctx, id)
	}

	v, ok := viewStopwatch(ctx, mgr, id, false, time.Local)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}
	return &AddOutput{Stopwatch: v}, nil
}
