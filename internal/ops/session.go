package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// SessionAddInput contains parameters for the SessionAdd operation.
type SessionAddInput struct {
	StopwatchID string
	Title       string
	Start       int64  // epoch milliseconds, required
	End         *int64 // nil leaves the session open
}

// SessionUpdateInput contains parameters for the SessionUpdate operation.
type SessionUpdateInput struct {
	StopwatchID string
	SessionID   string

	// Editable fields (nil = don't change)
	Title *string
	Start *int64
	End   *int64

	// Reopen clears the end time. Refused while another session is open.
	Reopen bool
}

// SessionDeleteInput contains parameters for the SessionDelete operation.
type SessionDeleteInput struct {
	StopwatchID string
	SessionID   string
}

// SessionOutput contains the result of SessionAdd and SessionUpdate.
type SessionOutput struct {
	Session   SessionView   `json:"session"`
	Stopwatch StopwatchView `json:"stopwatch"`
}

// SessionDeleteOutput contains the result of the SessionDelete operation.
type SessionDeleteOutput struct {
	Deleted     bool   `json:"deleted"`
	StopwatchID string `json:"stopwatch_id"`
	SessionID   string `json:"session_id"`
}

// SessionAdd appends a manually entered session.
func SessionAdd(ctx context.Context, mgr *manager.Manager, input SessionAddInput) (*SessionOutput, error) {
	id, err := requireID("stopwatch_id", input.StopwatchID)
	if err != nil {
		return nil, err
	}

	sess, err := mgr.AddSession(ctx, id, stopwatch.ManualSession{
		Title: input.Title,
		Start: input.Start,
		End:   input.End,
	})
	if err != nil {
		return nil, err
	}

	return sessionOutput(ctx, mgr, id, sess)
}

// SessionUpdate edits the title or timing of a session, or reopens it.
func SessionUpdate(ctx context.Context, mgr *manager.Manager, input SessionUpdateInput) (*SessionOutput, error) {
	id, err := requireID("stopwatch_id", input.StopwatchID)
	if err != nil {
		return nil, err
	}
	sessionID, err := requireID("session_id", input.SessionID)
	if err != nil {
		return nil, err
	}

	update := stopwatch.SessionUpdate{
		Title:  input.Title,
		Start:  input.Start,
		End:    input.End,
		Reopen: input.Reopen,
	}
	if update.IsEmpty() {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	sess, err := mgr.UpdateSession(ctx, id, sessionID, update)
	if err != nil {
		return nil, err
	}

	return sessionOutput(ctx, mgr, id, sess)
}

// SessionDelete removes a session from a stopwatch.
func SessionDelete(ctx context.Context, mgr *manager.Manager, input SessionDeleteInput) (*SessionDeleteOutput, error) {
	id, err := requireID("stopwatch_id", input.StopwatchID)
	if err != nil {
		return nil, err
	}
	sessionID, err := requireID("session_id", input.SessionID)
	if err != nil {
		return nil, err
	}

	if !mgr.DeleteSession(ctx, id, sessionID) {
		if _, ok := mgr.Get(ctx, id); !ok {
			return nil, errors.NewNotFound("stopwatch", id)
		}
		return nil, errors.NewNotFound("session", sessionID)
	}

	return &SessionDeleteOutput{
		Deleted:     true,
		StopwatchID: id,
		SessionID:   sessionID,
	}, nil
}

func sessionOutput(ctx context.Context, mgr *manager.Manager, id string, sess stopwatch.Session) (*SessionOutput, error) {
	sw, sv, ok := viewSession(ctx, mgr, id, sess, time.Local)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}
	return &SessionOutput{
		Session:   sv,
		Stopwatch: sw,
	}, nil
}
