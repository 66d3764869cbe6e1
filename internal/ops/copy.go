package ops

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// ClipboardWriter places text on the system clipboard.
type ClipboardWriter func(text string) error

// SystemClipboard writes through the platform clipboard utility.
var SystemClipboard ClipboardWriter = clipboard.WriteAll

// CopyInput contains parameters for the Copy operation.
type CopyInput struct {
	ID string
}

// CopyOutput contains the result of the Copy operation.
type CopyOutput struct {
	Text string `json:"text"`
}

// Copy puts "Title: HH:MM:SS" for a stopwatch on the clipboard.
// A nil write uses SystemClipboard.
func Copy(ctx context.Context, mgr *manager.Manager, write ClipboardWriter, input CopyInput) (*CopyOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	var text string
	ok := mgr.View(ctx, id, func(s *stopwatch.Stopwatch) {
		text = CopyText(s.Title(), s.FormattedTotalDuration())
	})
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}

	if write == nil {
		write = SystemClipboard
	}
	if err := write(text); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write clipboard: %w", err))
	}

	return &CopyOutput{Text: text}, nil
}

// CopyText formats the clipboard line for a stopwatch.
func CopyText(title, total string) string {
	return title + ": " + total
}
