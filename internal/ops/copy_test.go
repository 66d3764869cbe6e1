package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hpungsan/tokime/internal/errors"
)

func TestCopy(t *testing.T) {
	mgr, clock := newTestManager(t)
	ctx := context.Background()
	id := addStopwatch(t, mgr, "Focus")
	if _, err := Start(ctx, mgr, TimerInput{ID: id}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(65 * time.Second)

	var got string
	out, err := Copy(ctx, mgr, func(text string) error {
		got = text
		return nil
	}, CopyInput{ID: id})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	if out.Text != "Focus: 00:01:05" {
		t.Errorf("Text = %q, want %q", out.Text, "Focus: 00:01:05")
	}
	if got != out.Text {
		t.Errorf("clipboard = %q, want %q", got, out.Text)
	}
}

func TestCopy_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	noop := func(string) error { return nil }

	if _, err := Copy(ctx, mgr, noop, CopyInput{ID: "sw_missing"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	id := addStopwatch(t, mgr, "Focus")
	failing := func(string) error { return fmt.Errorf("no clipboard utility") }
	if _, err := Copy(ctx, mgr, failing, CopyInput{ID: id}); !errors.Is(err, errors.ErrInternal) {
		t.Errorf("expected ErrInternal, got %v", err)
	}
}

func TestCopyText(t *testing.T) {
	if got := CopyText("Work", "02:00:00"); got != "Work: 02:00:00" {
		t.Errorf("CopyText = %q", got)
	}
}
