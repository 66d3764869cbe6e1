package ops

import (
	"context"

	"github.com/hpungsan/tokime/internal/manager"
)

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	// StopwatchesOnly removes the stopwatch collection and keeps every
	// other stored key.
	StopwatchesOnly bool
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared bool   `json:"cleared"`
	Removed int    `json:"removed"`
	Scope   string `json:"scope"`
}

// Clear wipes the store, including keys the manager does not own, unless
// input limits it to the stopwatch collection.
func Clear(ctx context.Context, mgr *manager.Manager, input ClearInput) (*ClearOutput, error) {
	removed := len(mgr.ListAll(ctx))

	scope := "all"
	wipe := mgr.Clear
	if input.StopwatchesOnly {
		scope = "stopwatches"
		wipe = mgr.ClearCollection
	}
	if err := wipe(ctx); err != nil {
		return nil, err
	}

	return &ClearOutput{
		Cleared: true,
		Removed: removed,
		Scope:   scope,
	}, nil
}
