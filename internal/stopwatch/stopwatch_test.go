package stopwatch

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tokime/internal/errors"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func int64Ptr(v int64) *int64 { return &v }

func openCount(s *Stopwatch) int {
	n := 0
	for _, sess := range s.Sessions() {
		if sess.IsOpen() {
			n++
		}
	}
	return n
}

func TestNew_Defaults(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{}, WithClock(clock.Now))

	if !strings.HasPrefix(s.ID(), StopwatchIDPrefix) {
		t.Errorf("ID = %q, want prefix %q", s.ID(), StopwatchIDPrefix)
	}
	if len(s.ID()) != len(StopwatchIDPrefix)+26 {
		t.Errorf("ID length = %d, want %d (prefix + ULID)", len(s.ID()), len(StopwatchIDPrefix)+26)
	}
	if s.Title() != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title(), DefaultTitle)
	}
	if s.CreatedAt() != clock.Now().UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", s.CreatedAt(), clock.Now().UnixMilli())
	}
	rec := s.Record()
	if rec.Sessions == nil || len(rec.Sessions) != 0 {
		t.Errorf("Sessions = %v, want empty non-nil slice", rec.Sessions)
	}
}

func TestNew_KeepsProvidedFields(t *testing.T) {
	s := New(Record{ID: "sw_fixed", Title: "  Focus  ", CreatedAt: 42})

	assert.Equal(t, "sw_fixed", s.ID())
	assert.Equal(t, "Focus", s.Title())
	assert.Equal(t, int64(42), s.CreatedAt())
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := New(Record{}).ID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestWithDefaultTitle(t *testing.T) {
	s := New(Record{}, WithDefaultTitle("Timer"))
	assert.Equal(t, "Timer", s.Title())

	s.SetTitle("Work")
	assert.Equal(t, "Work", s.Title())

	s.SetTitle("   ")
	assert.Equal(t, "Timer", s.Title())
}

func TestStartStop_SingleOpenSession(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{Title: "Focus"}, WithClock(clock.Now))

	first, ok := s.StartSession()
	require.True(t, ok)
	require.True(t, first.IsOpen())
	require.Equal(t, s.ID(), first.StopwatchID)
	require.Equal(t, clock.Now().UnixMilli(), first.Start)
	require.True(t, strings.HasPrefix(first.ID, SessionIDPrefix))

	// Second start while running is a no-op.
	_, ok = s.StartSession()
	require.False(t, ok)
	require.Len(t, s.Sessions(), 1)
	require.Equal(t, 1, openCount(s))

	clock.Advance(time.Second)
	stopped, ok := s.StopSession()
	require.True(t, ok)
	require.Equal(t, first.ID, stopped.ID)
	require.NotNil(t, stopped.End)
	require.Equal(t, clock.Now().UnixMilli(), *stopped.End)
	require.Equal(t, 0, openCount(s))

	// Stop with nothing open.
	_, ok = s.StopSession()
	require.False(t, ok)

	// Interleaved start/stop never leaves more than one open session.
	for i := range 10 {
		if i%3 == 0 {
			s.StopSession()
		} else {
			s.StartSession()
		}
		clock.Advance(time.Millisecond)
		if n := openCount(s); n > 1 {
			t.Fatalf("step %d: %d open sessions", i, n)
		}
	}
}

func TestEndToEnd_FiveSecondSession(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{Title: "Focus"}, WithClock(clock.Now))

	_, ok := s.StartSession()
	require.True(t, ok)
	clock.Advance(5000 * time.Millisecond)
	_, ok = s.StopSession()
	require.True(t, ok)

	assert.Equal(t, "00:00:05", s.FormattedTotalDuration())
	assert.False(t, s.IsRunning())
}

func TestEndToEnd_ManualMeeting(t *testing.T) {
	s := New(Record{Title: "Work"})
	start := time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC).UnixMilli()

	sess, err := s.AddManualSession(ManualSession{
		Title: "Meeting",
		Start: start,
		End:   int64Ptr(start + 7_200_000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Meeting", sess.Title)
	assert.Equal(t, int64(7_200_000), s.TotalDuration())
	assert.Equal(t, "02:00:00", s.FormattedTotalDuration())
}

func TestTotalDuration_MixedSessions(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now().UnixMilli()
	s := New(Record{
		Sessions: []Session{
			{ID: "ses_a", Start: now - 10_000, End: int64Ptr(now - 4_000)},
			{ID: "ses_b", Start: now - 3_000},
		},
	}, WithClock(clock.Now))

	assert.Equal(t, int64(9_000), s.TotalDuration())
	assert.True(t, s.IsRunning())
}

func TestTotalDuration_MonotonicWhileRunning(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{}, WithClock(clock.Now))
	s.StartSession()

	prev := s.TotalDuration()
	for range 5 {
		clock.Advance(250 * time.Millisecond)
		cur := s.TotalDuration()
		if cur < prev {
			t.Fatalf("duration went backwards: %d < %d", cur, prev)
		}
		prev = cur
	}
	assert.Equal(t, int64(1250), prev)
}

func TestDeleteSession(t *testing.T) {
	s := New(Record{
		Sessions: []Session{
			{ID: "ses_a", Start: 1, End: int64Ptr(2)},
			{ID: "ses_b", Start: 3, End: int64Ptr(4)},
		},
	})

	assert.True(t, s.DeleteSession("ses_a"))
	assert.Len(t, s.Sessions(), 1)
	assert.False(t, s.DeleteSession("ses_a"))
	assert.False(t, s.DeleteSession("missing"))
	assert.Len(t, s.Sessions(), 1)
}

func TestAddManualSession_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ManualSession
	}{
		{name: "end before start", input: ManualSession{Start: 2000, End: int64Ptr(1000)}},
		{name: "end equals start", input: ManualSession{Start: 2000, End: int64Ptr(2000)}},
		{name: "missing start", input: ManualSession{End: int64Ptr(1000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Record{})
			_, err := s.AddManualSession(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
			assert.Empty(t, s.Sessions())
		})
	}
}

// Manual entry is exempt from the single-open-session rule that
// StartSession enforces.
func TestAddManualSession_AllowsSecondOpenSession(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{}, WithClock(clock.Now))
	_, ok := s.StartSession()
	require.True(t, ok)

	_, err := s.AddManualSession(ManualSession{Start: clock.Now().UnixMilli() - 60_000})
	require.NoError(t, err)
	assert.Equal(t, 2, openCount(s))

	// StopSession closes one at a time.
	_, ok = s.StopSession()
	require.True(t, ok)
	assert.Equal(t, 1, openCount(s))
}

func TestAddManualSession_DoesNotAliasCallerEnd(t *testing.T) {
	s := New(Record{})
	end := int64(5000)
	_, err := s.AddManualSession(ManualSession{Start: 1000, End: &end})
	require.NoError(t, err)

	end = 999_999
	assert.Equal(t, int64(4000), s.TotalDuration())
}

func TestUpdateSession(t *testing.T) {
	s := New(Record{
		Sessions: []Session{{ID: "ses_a", Start: 1000, End: int64Ptr(2000)}},
	})

	title := "Review"
	sess, found, err := s.UpdateSession("ses_a", SessionUpdate{Title: &title, End: int64Ptr(4000)})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Review", sess.Title)
	assert.Equal(t, int64(3000), s.TotalDuration())

	// Invalid merge leaves the session unchanged.
	_, found, err = s.UpdateSession("ses_a", SessionUpdate{Start: int64Ptr(5000)})
	require.True(t, found)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Equal(t, int64(1000), s.Sessions()[0].Start)

	_, found, err = s.UpdateSession("missing", SessionUpdate{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateSession_CloseOpenSession(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{}, WithClock(clock.Now))
	open, _ := s.StartSession()

	_, _, err := s.UpdateSession(open.ID, SessionUpdate{End: int64Ptr(open.Start + 90_000)})
	require.NoError(t, err)
	assert.False(t, s.IsRunning())
	assert.Equal(t, "00:01:30", s.FormattedTotalDuration())
}

func TestUpdateSession_Reopen(t *testing.T) {
	s := New(Record{
		Sessions: []Session{
			{ID: "ses_a", Start: 1000, End: int64Ptr(2000)},
			{ID: "ses_b", Start: 3000, End: int64Ptr(4000)},
		},
	})

	sess, found, err := s.UpdateSession("ses_a", SessionUpdate{Reopen: true})
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, sess.IsOpen())
	assert.True(t, s.IsRunning())

	// A second reopen is refused while ses_a is open.
	_, found, err = s.UpdateSession("ses_b", SessionUpdate{Reopen: true})
	require.True(t, found)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyRunning))
	assert.Equal(t, 1, openCount(s))

	// Reopening the session that is already open is a no-op.
	_, _, err = s.UpdateSession("ses_a", SessionUpdate{Reopen: true})
	require.NoError(t, err)
	assert.Equal(t, 1, openCount(s))
}

func TestUpdateSession_ReopenWithEndRejected(t *testing.T) {
	s := New(Record{
		Sessions: []Session{{ID: "ses_a", Start: 1000, End: int64Ptr(2000)}},
	})

	_, _, err := s.UpdateSession("ses_a", SessionUpdate{Reopen: true, End: int64Ptr(5000)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if s.IsRunning() {
		t.Error("rejected reopen should leave the session closed")
	}
}

func TestSessionUpdate_IsEmpty(t *testing.T) {
	assert.True(t, SessionUpdate{}.IsEmpty())
	assert.False(t, SessionUpdate{Reopen: true}.IsEmpty())
	assert.False(t, SessionUpdate{End: int64Ptr(1)}.IsEmpty())
}

func TestRecord_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	s := New(Record{Title: "Round trip"}, WithClock(clock.Now))
	s.StartSession()
	clock.Advance(time.Minute)
	s.StopSession()
	_, err := s.AddManualSession(ManualSession{Title: "Earlier", Start: 1000, End: int64Ptr(61_000)})
	require.NoError(t, err)
	s.StartSession()

	rec := s.Record()
	again := New(rec, WithClock(clock.Now)).Record()
	require.Equal(t, rec, again)

	// Through JSON as well, the way the manager persists it.
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, rec, New(decoded).Record())
}

func TestRecord_IsDeepCopy(t *testing.T) {
	s := New(Record{
		Sessions: []Session{{ID: "ses_a", Start: 1000, End: int64Ptr(2000)}},
	})

	rec := s.Record()
	*rec.Sessions[0].End = 9000
	rec.Sessions[0].Title = "changed"

	got := s.Sessions()[0]
	assert.Equal(t, int64(2000), *got.End)
	assert.Empty(t, got.Title)
}

func TestRecord_JSONLayout(t *testing.T) {
	s := New(Record{
		ID:        "sw_1",
		Title:     "Focus",
		CreatedAt: 100,
		Sessions: []Session{
			{ID: "ses_1", Start: 200, StopwatchID: "sw_1"},
		},
	})

	data, err := json.Marshal(s.Record())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"sw_1","title":"Focus","createdAt":100,"sessions":[{"id":"ses_1","start":200,"end":null,"stopwatchId":"sw_1"}]}`,
		string(data))
}

func TestSortedSessions_NewestFirst(t *testing.T) {
	s := New(Record{
		Sessions: []Session{
			{ID: "ses_mid", Start: 2000, End: int64Ptr(2500)},
			{ID: "ses_old", Start: 1000, End: int64Ptr(1500)},
			{ID: "ses_new", Start: 3000},
		},
	})

	sorted := s.SortedSessions()
	require.Len(t, sorted, 3)
	assert.Equal(t, "ses_new", sorted[0].ID)
	assert.Equal(t, "ses_mid", sorted[1].ID)
	assert.Equal(t, "ses_old", sorted[2].ID)

	// Insertion order is unchanged.
	assert.Equal(t, "ses_mid", s.Sessions()[0].ID)
}

func TestOpenSession(t *testing.T) {
	s := New(Record{})
	_, ok := s.OpenSession()
	assert.False(t, ok)

	started, _ := s.StartSession()
	open, ok := s.OpenSession()
	assert.True(t, ok)
	assert.Equal(t, started.ID, open.ID)
}
