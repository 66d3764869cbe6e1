package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
)

// RenameInput contains parameters for the Rename operation.
type RenameInput struct {
	ID    string
	Title string // empty resets to the placeholder
}

// RenameOutput contains the result of the Rename operation.
type RenameOutput struct {
	Stopwatch StopwatchView `json:"stopwatch"`
}

// Rename changes a stopwatch title.
func Rename(ctx context.Context, mgr *manager.Manager, input RenameInput) (*RenameOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	title := input.Title
	if _, ok := mgr.Update(ctx, id, manager.UpdateFields{Title: &title}); !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}

	v, ok := viewStopwatch(ctx, mgr, id, false, time.Local)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}
	return &RenameOutput{Stopwatch: v}, nil
}
