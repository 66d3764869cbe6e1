package mcp

import (
	"strings"
	"testing"

	"github.com/hpungsan/tokime/internal/errors"
)

func TestDecode_SessionAdd(t *testing.T) {
	in, err := decode[SessionAddRequest](makeRequest(map[string]any{
		"stopwatch_id": "sw_1",
		"start":        float64(1_700_000_000_000),
		"end":          float64(1_700_000_060_000),
		"title":        "Standup",
	}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if in.Start != 1_700_000_000_000 || in.End == nil || *in.End != 1_700_000_060_000 {
		t.Errorf("timing = %d/%v, want 1700000000000/1700000060000", in.Start, in.End)
	}
	if in.Title != "Standup" {
		t.Errorf("title = %q, want Standup", in.Title)
	}
}

func TestDecode_FractionalTimestampNamesField(t *testing.T) {
	_, err := decode[SessionAddRequest](makeRequest(map[string]any{
		"stopwatch_id": "sw_1",
		"start":        1000.5,
	}))
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if !strings.Contains(err.Error(), "start must be an integer") {
		t.Errorf("message %q should name the start argument", err.Error())
	}
}

func TestDecode_WrongTypeReopen(t *testing.T) {
	_, err := decode[SessionUpdateRequest](makeRequest(map[string]any{
		"stopwatch_id": "sw_1",
		"session_id":   "ses_1",
		"reopen":       "yes",
	}))
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if !strings.Contains(err.Error(), "reopen must be a boolean") {
		t.Errorf("message %q should name the reopen argument", err.Error())
	}
}

func TestDecode_NoArguments(t *testing.T) {
	in, err := decode[ListRequest](makeRequest(nil))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if in.RunningOnly {
		t.Error("running_only should default to false")
	}
}
