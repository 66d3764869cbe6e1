package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID              string
	IncludeSessions *bool          // default: true (nil means default)
	Location        *time.Location // default: local time
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	Stopwatch StopwatchView `json:"stopwatch"`
}

// Fetch retrieves one stopwatch with its sessions, newest first.
func Fetch(ctx context.Context, mgr *manager.Manager, input FetchInput) (*FetchOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	includeSessions := true
	if input.IncludeSessions != nil {
		includeSessions = *input.IncludeSessions
	}

	v, ok := viewStopwatch(ctx, mgr, id, includeSessions, input.Location)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}
	return &FetchOutput{Stopwatch: v}, nil
}
