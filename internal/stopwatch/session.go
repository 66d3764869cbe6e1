package stopwatch

import (
	"strings"

	"github.com/hpungsan/tokime/internal/errors"
)

// Session is one contiguous timing interval of a stopwatch.
// Timestamps are epoch milliseconds. A nil End means the session is open.
type Session struct {
	ID          string `json:"id"`
	Start       int64  `json:"start"`
	End         *int64 `json:"end"`
	Title       string `json:"title,omitempty"`
	StopwatchID string `json:"stopwatchId"`
}

// IsOpen reports whether the session is still running.
func (s Session) IsOpen() bool {
	return s.End == nil
}

// Duration returns the elapsed milliseconds, using now for an open session.
func (s Session) Duration(now int64) int64 {
	end := now
	if s.End != nil {
		end = *s.End
	}
	return end - s.Start
}

// clone returns a copy that shares no pointers with s.
func (s Session) clone() Session {
	if s.End != nil {
		end := *s.End
		s.End = &end
	}
	return s
}

// ManualSession holds caller-supplied timing for a session entered by hand.
type ManualSession struct {
	Title string
	Start int64
	End   *int64 // nil leaves the session open
}

// SessionUpdate lists the session fields to overwrite. Nil fields are left alone.
// Reopen clears End and cannot be combined with it.
type SessionUpdate struct {
	Title  *string
	Start  *int64
	End    *int64
	Reopen bool
}

// IsEmpty reports whether the update changes nothing.
func (u SessionUpdate) IsEmpty() bool {
	return u.Title == nil && u.Start == nil && u.End == nil && !u.Reopen
}

// validateTiming enforces the manual-edit rule: start is set and end, if any, is after it.
func validateTiming(start int64, end *int64) error {
	if start <= 0 {
		return errors.NewInvalidRequest("start must be a positive epoch-millisecond timestamp")
	}
	if end != nil && *end <= start {
		return errors.NewInvalidRequest("end must be after start")
	}
	return nil
}

func cleanTitle(s string) string {
	return strings.TrimSpace(s)
}
