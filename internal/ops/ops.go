package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
	"github.com/hpungsan/tokime/internal/timefmt"
)

// StopwatchView is the surface representation of a stopwatch.
type StopwatchView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	CreatedAt     int64         `json:"created_at"`
	Running       bool          `json:"running"`
	TotalMs       int64         `json:"total_ms"`
	Total         string        `json:"total"`
	SessionCount  int           `json:"session_count"`
	ActiveSession *SessionView  `json:"active_session,omitempty"`
	Sessions      []SessionView `json:"sessions,omitempty"`
}

// SessionView is the surface representation of a session.
type SessionView struct {
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	Start      int64  `json:"start"`
	End        *int64 `json:"end"`
	StartText  string `json:"start_text"`
	EndText    string `json:"end_text,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Duration   string `json:"duration"`
	Active     bool   `json:"active"`
}

// NewStopwatchView summarizes s. Sessions are included, newest first, only
// when withSessions is set. A nil loc formats timestamps in local time.
func NewStopwatchView(s *stopwatch.Stopwatch, withSessions bool, loc *time.Location) StopwatchView {
	total := s.TotalDuration()
	v := StopwatchView{
		ID:           s.ID(),
		Title:        s.Title(),
		CreatedAt:    s.CreatedAt(),
		Running:      s.IsRunning(),
		TotalMs:      total,
		Total:        timefmt.Duration(total),
		SessionCount: len(s.Sessions()),
	}
	if open, ok := s.OpenSession(); ok {
		sv := NewSessionView(s, open, loc)
		v.ActiveSession = &sv
	}
	if withSessions {
		sorted := s.SortedSessions()
		v.Sessions = make([]SessionView, 0, len(sorted))
		for _, sess := range sorted {
			v.Sessions = append(v.Sessions, NewSessionView(s, sess, loc))
		}
	}
	return v
}

// NewSessionView formats sess, measuring an open session against s's clock.
func NewSessionView(s *stopwatch.Stopwatch, sess stopwatch.Session, loc *time.Location) SessionView {
	d := s.SessionDuration(sess)
	v := SessionView{
		ID:         sess.ID,
		Title:      sess.Title,
		Start:      sess.Start,
		StartText:  timefmt.Timestamp(sess.Start, loc),
		DurationMs: d,
		Duration:   timefmt.Duration(d),
		Active:     sess.IsOpen(),
	}
	if sess.End != nil {
		end := *sess.End
		v.End = &end
		v.EndText = timefmt.Timestamp(end, loc)
	}
	return v
}

// Views are built inside mgr.View and mgr.ViewAll. The entities are shared
// with every other caller of the manager and may only be read under its lock.

// viewStopwatch builds the view of one stopwatch. It reports false if the id is unknown.
func viewStopwatch(ctx context.Context, mgr *manager.Manager, id string, withSessions bool, loc *time.Location) (StopwatchView, bool) {
	var v StopwatchView
	ok := mgr.View(ctx, id, func(s *stopwatch.Stopwatch) {
		v = NewStopwatchView(s, withSessions, loc)
	})
	return v, ok
}

// viewSession builds the views of a stopwatch and one of its sessions.
func viewSession(ctx context.Context, mgr *manager.Manager, id string, sess stopwatch.Session, loc *time.Location) (StopwatchView, SessionView, bool) {
	var (
		sw StopwatchView
		sv SessionView
	)
	ok := mgr.View(ctx, id, func(s *stopwatch.Stopwatch) {
		sw = NewStopwatchView(s, false, loc)
		sv = NewSessionView(s, sess, loc)
	})
	return sw, sv, ok
}

// viewStopwatches builds views for every stopwatch, or only the running ones.
func viewStopwatches(ctx context.Context, mgr *manager.Manager, runningOnly bool, loc *time.Location) []StopwatchView {
	var views []StopwatchView
	mgr.ViewAll(ctx, func(list []*stopwatch.Stopwatch) {
		views = make([]StopwatchView, 0, len(list))
		for _, s := range list {
			if runningOnly && !s.IsRunning() {
				continue
			}
			views = append(views, NewStopwatchView(s, false, loc))
		}
	})
	return views
}

// requireID trims id and rejects an empty value.
func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest(field + " is required")
	}
	return id, nil
}
