package ops

import (
	"context"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a stopwatch and all of its sessions.
func Delete(ctx context.Context, mgr *manager.Manager, input DeleteInput) (*DeleteOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	if !mgr.Delete(ctx, id) {
		return nil, errors.NewNotFound("stopwatch", id)
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}
