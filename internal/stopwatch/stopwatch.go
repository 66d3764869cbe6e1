// Package stopwatch holds the stopwatch entity and its timing sessions.
//
// A Stopwatch owns its sessions exclusively. The automatic start/stop path
// keeps at most one session open; sessions entered by hand are exempt so
// historical or imported records are never rejected.
package stopwatch

import (
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/timefmt"
)

// DefaultTitle is used when a stopwatch is created or renamed without a title.
const DefaultTitle = "Untitled Stopwatch"

// Record is the plain persisted form of a stopwatch.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt int64     `json:"createdAt"`
	Sessions  []Session `json:"sessions"`
}

// Stopwatch is a named timer made of sessions.
type Stopwatch struct {
	id           string
	title        string
	createdAt    int64
	sessions     []Session
	now          func() time.Time
	defaultTitle string
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Stopwatch) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultTitle overrides the placeholder used for empty titles.
func WithDefaultTitle(title string) Option {
	return func(s *Stopwatch) {
		if t := strings.TrimSpace(title); t != "" {
			s.defaultTitle = t
		}
	}
}

// New builds a stopwatch from rec, filling in a fresh id, the placeholder
// title, the current time and an empty session list where rec leaves them unset.
func New(rec Record, opts ...Option) *Stopwatch {
	s := &Stopwatch{
		now:          time.Now,
		defaultTitle: DefaultTitle,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.id = rec.ID
	if s.id == "" {
		s.id = NewID(StopwatchIDPrefix, s.now())
	}
	s.title = cleanTitle(rec.Title)
	if s.title == "" {
		s.title = s.defaultTitle
	}
	s.createdAt = rec.CreatedAt
	if s.createdAt == 0 {
		s.createdAt = s.now().UnixMilli()
	}
	s.sessions = make([]Session, 0, len(rec.Sessions))
	for _, sess := range rec.Sessions {
		s.sessions = append(s.sessions, sess.clone())
	}
	return s
}

// ID returns the stopwatch identifier.
func (s *Stopwatch) ID() string { return s.id }

// Title returns the display name.
func (s *Stopwatch) Title() string { return s.title }

// CreatedAt returns the creation time in epoch milliseconds.
func (s *Stopwatch) CreatedAt() int64 { return s.createdAt }

// SetTitle renames the stopwatch. An empty title falls back to the placeholder.
func (s *Stopwatch) SetTitle(title string) {
	title = cleanTitle(title)
	if title == "" {
		title = s.defaultTitle
	}
	s.title = title
}

// Sessions returns a copy of the sessions in insertion order.
func (s *Stopwatch) Sessions() []Session {
	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

// SortedSessions returns a copy of the sessions, newest start first.
func (s *Stopwatch) SortedSessions() []Session {
	out := s.Sessions()
	slices.SortStableFunc(out, func(a, b Session) int {
		switch {
		case a.Start > b.Start:
			return -1
		case a.Start < b.Start:
			return 1
		}
		return 0
	})
	return out
}

// TotalDuration sums all session durations in milliseconds.
// Open sessions count up to now.
func (s *Stopwatch) TotalDuration() int64 {
	now := s.nowMillis()
	var total int64
	for _, sess := range s.sessions {
		total += sess.Duration(now)
	}
	return total
}

// FormattedTotalDuration returns TotalDuration as HH:MM:SS.
func (s *Stopwatch) FormattedTotalDuration() string {
	return timefmt.Duration(s.TotalDuration())
}

// SessionDuration returns the elapsed milliseconds of sess against this stopwatch's clock.
func (s *Stopwatch) SessionDuration(sess Session) int64 {
	return sess.Duration(s.nowMillis())
}

// IsRunning reports whether any session is open.
func (s *Stopwatch) IsRunning() bool {
	return s.openIndex() >= 0
}

// OpenSession returns the open session, if any.
func (s *Stopwatch) OpenSession() (Session, bool) {
	i := s.openIndex()
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].clone(), true
}

// StartSession opens a new session at now. It returns false and changes
// nothing if a session is already open.
func (s *Stopwatch) StartSession() (Session, bool) {
	if s.IsRunning() {
		return Session{}, false
	}
	t := s.now()
	sess := Session{
		ID:          NewID(SessionIDPrefix, t),
		Start:       t.UnixMilli(),
		StopwatchID: s.id,
	}
	s.sessions = append(s.sessions, sess)
	return sess.clone(), true
}

// StopSession closes the open session at now. It returns false if nothing is open.
func (s *Stopwatch) StopSession() (Session, bool) {
	i := s.openIndex()
	if i < 0 {
		return Session{}, false
	}
	end := s.nowMillis()
	s.sessions[i].End = &end
	return s.sessions[i].clone(), true
}

// DeleteSession removes the session with the given id and reports whether it existed.
func (s *Stopwatch) DeleteSession(sessionID string) bool {
	before := len(s.sessions)
	s.sessions = slices.DeleteFunc(s.sessions, func(sess Session) bool {
		return sess.ID == sessionID
	})
	return len(s.sessions) != before
}

// AddManualSession appends a session with caller-supplied timing.
// It does not check whether another session is open.
func (s *Stopwatch) AddManualSession(m ManualSession) (Session, error) {
	if err := validateTiming(m.Start, m.End); err != nil {
		return Session{}, err
	}
	sess := Session{
		ID:          NewID(SessionIDPrefix, s.now()),
		Start:       m.Start,
		End:         m.End,
		Title:       cleanTitle(m.Title),
		StopwatchID: s.id,
	}
	sess = sess.clone()
	s.sessions = append(s.sessions, sess)
	return sess.clone(), nil
}

// UpdateSession overwrites the fields set in u on the matching session.
// It returns false if no session has that id. The merged timing must still
// satisfy end > start, otherwise nothing changes and an error is returned.
// Reopening fails with ALREADY_RUNNING while a different session is open.
func (s *Stopwatch) UpdateSession(sessionID string, u SessionUpdate) (Session, bool, error) {
	i := slices.IndexFunc(s.sessions, func(sess Session) bool {
		return sess.ID == sessionID
	})
	if i < 0 {
		return Session{}, false, nil
	}
	if u.Reopen {
		if u.End != nil {
			return Session{}, true, errors.NewInvalidRequest("reopen and end are mutually exclusive")
		}
		for j, other := range s.sessions {
			if j != i && other.IsOpen() {
				return Session{}, true, errors.NewAlreadyRunning(s.id)
			}
		}
	}

	merged := s.sessions[i].clone()
	if u.Title != nil {
		merged.Title = cleanTitle(*u.Title)
	}
	if u.Start != nil {
		merged.Start = *u.Start
	}
	if u.End != nil {
		end := *u.End
		merged.End = &end
	}
	if u.Reopen {
		merged.End = nil
	}
	if err := validateTiming(merged.Start, merged.End); err != nil {
		return Session{}, true, err
	}

	s.sessions[i] = merged
	return merged.clone(), true, nil
}

// Record returns a deep copy of the stopwatch suitable for storage.
func (s *Stopwatch) Record() Record {
	return Record{
		ID:        s.id,
		Title:     s.title,
		CreatedAt: s.createdAt,
		Sessions:  s.Sessions(),
	}
}

func (s *Stopwatch) openIndex() int {
	return slices.IndexFunc(s.sessions, Session.IsOpen)
}

func (s *Stopwatch) nowMillis() int64 {
	return s.now().UnixMilli()
}
