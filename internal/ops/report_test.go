package ops

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tokime/internal/errors"
)

func seedReport(t *testing.T) (ctx context.Context, ids []string, run func(ReportInput) *ReportOutput) {
	t.Helper()
	mgr, clock := newTestManager(t)
	ctx = context.Background()

	focus := addStopwatch(t, mgr, "Focus")
	_, err := Start(ctx, mgr, TimerInput{ID: focus})
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	_, err = Stop(ctx, mgr, TimerInput{ID: focus})
	require.NoError(t, err)

	work := addStopwatch(t, mgr, "Work | Ops")
	start := time.Date(2024, time.March, 1, 14, 0, 0, 0, time.UTC).UnixMilli()
	_, err = SessionAdd(ctx, mgr, SessionAddInput{StopwatchID: work, Title: "Meeting", Start: start, End: int64Ptr(start + 7_200_000)})
	require.NoError(t, err)
	_, err = Start(ctx, mgr, TimerInput{ID: work})
	require.NoError(t, err)

	run = func(in ReportInput) *ReportOutput {
		t.Helper()
		out, err := Report(ctx, mgr, in)
		require.NoError(t, err)
		return out
	}
	return ctx, []string{focus, work}, run
}

func TestReport_Markdown(t *testing.T) {
	_, _, run := seedReport(t)

	out := run(ReportInput{})
	assert.Equal(t, ReportMarkdown, out.Format)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, int64(7_205_000), out.TotalMs)

	assert.Contains(t, out.Content, "# Tokime report")
	assert.Contains(t, out.Content, "| Focus | idle | 1 | 00:00:05 |")
	assert.Contains(t, out.Content, `| Work \| Ops | running | 2 | 02:00:00 |`)
	assert.Contains(t, out.Content, "**Total:** 02:00:05")
	assert.NotContains(t, out.Content, "## Focus")
}

func TestReport_WithSessions(t *testing.T) {
	_, _, run := seedReport(t)

	out := run(ReportInput{IncludeSessions: true, Location: time.UTC})
	assert.Contains(t, out.Content, "## Focus")
	assert.Contains(t, out.Content, "| Meeting | Mar 1, 2024, 02:00:00 PM | Mar 1, 2024, 04:00:00 PM | 02:00:00 |")
	assert.Contains(t, out.Content, "| active |", "open session should be marked active")
}

func TestReport_RunningOnly(t *testing.T) {
	_, _, run := seedReport(t)

	out := run(ReportInput{RunningOnly: true})
	assert.Equal(t, 1, out.Count)
	assert.NotContains(t, out.Content, "| Focus |")
}

func TestReport_HTML(t *testing.T) {
	_, _, run := seedReport(t)

	out := run(ReportInput{Format: "HTML"})
	assert.Equal(t, ReportHTML, out.Format)
	assert.Contains(t, out.Content, "<h1>Tokime report</h1>")
	assert.Contains(t, out.Content, "<table>")
	assert.Contains(t, out.Content, "<td>Focus</td>")
	assert.Contains(t, out.Content, "<strong>Total:</strong> 02:00:05")
	assert.False(t, strings.Contains(out.Content, "| Focus |"), "markdown table should be rendered")
}

func TestReport_Empty(t *testing.T) {
	mgr, _ := newTestManager(t)

	out, err := Report(context.Background(), mgr, ReportInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.Contains(t, out.Content, "No stopwatches.")
}

func TestReport_InvalidFormat(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := Report(context.Background(), mgr, ReportInput{Format: "pdf"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
