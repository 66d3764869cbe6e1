package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// Timer actions reported in TimerOutput.
const (
	ActionStarted = "started"
	ActionStopped = "stopped"
)

// TimerInput addresses the stopwatch for Start, Stop and Toggle.
type TimerInput struct {
	ID string
}

// TimerOutput contains the result of a Start, Stop or Toggle operation.
type TimerOutput struct {
	Action    string        `json:"action"`
	Session   SessionView   `json:"session"`
	Stopwatch StopwatchView `json:"stopwatch"`
}

// Start opens a session on an idle stopwatch.
func Start(ctx context.Context, mgr *manager.Manager, input TimerInput) (*TimerOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	sess, ok := mgr.Start(ctx, id)
	if !ok {
		if _, found := mgr.Get(ctx, id); !found {
			return nil, errors.NewNotFound("stopwatch", id)
		}
		return nil, errors.NewAlreadyRunning(id)
	}

	return timerOutput(ctx, mgr, ActionStarted, id, sess)
}

// Stop closes the open session of a running stopwatch.
func Stop(ctx context.Context, mgr *manager.Manager, input TimerInput) (*TimerOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	sess, ok := mgr.Stop(ctx, id)
	if !ok {
		if _, found := mgr.Get(ctx, id); !found {
			return nil, errors.NewNotFound("stopwatch", id)
		}
		return nil, errors.NewNotRunning(id)
	}

	return timerOutput(ctx, mgr, ActionStopped, id, sess)
}

// Toggle stops a running stopwatch or starts an idle one.
func Toggle(ctx context.Context, mgr *manager.Manager, input TimerInput) (*TimerOutput, error) {
	id, err := requireID("id", input.ID)
	if err != nil {
		return nil, err
	}

	sess, started, ok := mgr.Toggle(ctx, id)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}

	action := ActionStopped
	if started {
		action = ActionStarted
	}
	return timerOutput(ctx, mgr, action, id, sess)
}

func timerOutput(ctx context.Context, mgr *manager.Manager, action, id string, sess stopwatch.Session) (*TimerOutput, error) {
	sw, sv, ok := viewSession(ctx, mgr, id, sess, time.Local)
	if !ok {
		return nil, errors.NewNotFound("stopwatch", id)
	}
	return &TimerOutput{
		Action:    action,
		Session:   sv,
		Stopwatch: sw,
	}, nil
}
