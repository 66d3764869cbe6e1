package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	mgr *manager.Manager
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(mgr *manager.Manager, cfg *config.Config) *Handlers {
	return &Handlers{mgr: mgr, cfg: cfg}
}

// AddRequest represents the arguments for stopwatch_add.
type AddRequest struct {
	Title string `json:"title,omitempty"`
	Start bool   `json:"start,omitempty"`
}

// ListRequest represents the arguments for stopwatch_list.
type ListRequest struct {
	RunningOnly bool `json:"running_only,omitempty"`
}

// GetRequest represents the arguments for stopwatch_get.
type GetRequest struct {
	ID              string `json:"id"`
	IncludeSessions *bool  `json:"include_sessions,omitempty"`
}

// IDRequest represents the arguments for tools that only take an id.
type IDRequest struct {
	ID string `json:"id"`
}

// RenameRequest represents the arguments for stopwatch_rename.
type RenameRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReportRequest represents the arguments for stopwatch_report.
type ReportRequest struct {
	Format          string `json:"format,omitempty"`
	RunningOnly     bool   `json:"running_only,omitempty"`
	IncludeSessions bool   `json:"include_sessions,omitempty"`
}

// SessionAddRequest represents the arguments for session_add.
type SessionAddRequest struct {
	StopwatchID string `json:"stopwatch_id"`
	Start       int64  `json:"start"`
	End         *int64 `json:"end,omitempty"`
	Title       string `json:"title,omitempty"`
}

// SessionUpdateRequest represents the arguments for session_update.
type SessionUpdateRequest struct {
	StopwatchID string  `json:"stopwatch_id"`
	SessionID   string  `json:"session_id"`
	Title       *string `json:"title,omitempty"`
	Start       *int64  `json:"start,omitempty"`
	End         *int64  `json:"end,omitempty"`
	Reopen      bool    `json:"reopen,omitempty"`
}

// SessionDeleteRequest represents the arguments for session_delete.
type SessionDeleteRequest struct {
	StopwatchID string `json:"stopwatch_id"`
	SessionID   string `json:"session_id"`
}

// HandleAdd handles the stopwatch_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Add(ctx, h.mgr, ops.AddInput{Title: input.Title, Start: input.Start})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the stopwatch_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.mgr, ops.ListInput{RunningOnly: input.RunningOnly})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the stopwatch_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.mgr, ops.FetchInput{
		ID:              input.ID,
		IncludeSessions: input.IncludeSessions,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStart handles the stopwatch_start tool call.
func (h *Handlers) HandleStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Start(ctx, h.mgr, ops.TimerInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStop handles the stopwatch_stop tool call.
func (h *Handlers) HandleStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Stop(ctx, h.mgr, ops.TimerInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRename handles the stopwatch_rename tool call.
func (h *Handlers) HandleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenameRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Rename(ctx, h.mgr, ops.RenameInput{ID: input.ID, Title: input.Title})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the stopwatch_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.mgr, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRunning handles the stopwatch_running tool call.
func (h *Handlers) HandleRunning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Running(ctx, h.mgr)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleReport handles the stopwatch_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Report(ctx, h.mgr, ops.ReportInput{
		Format:          input.Format,
		RunningOnly:     input.RunningOnly,
		IncludeSessions: input.IncludeSessions,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionAdd handles the session_add tool call.
func (h *Handlers) HandleSessionAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionAddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SessionAdd(ctx, h.mgr, ops.SessionAddInput{
		StopwatchID: input.StopwatchID,
		Title:       input.Title,
		Start:       input.Start,
		End:         input.End,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionUpdate handles the session_update tool call.
func (h *Handlers) HandleSessionUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionUpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SessionUpdate(ctx, h.mgr, ops.SessionUpdateInput{
		StopwatchID: input.StopwatchID,
		SessionID:   input.SessionID,
		Title:       input.Title,
		Start:       input.Start,
		End:         input.End,
		Reopen:      input.Reopen,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionDelete handles the session_delete tool call.
func (h *Handlers) HandleSessionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionDeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SessionDelete(ctx, h.mgr, ops.SessionDeleteInput{
		StopwatchID: input.StopwatchID,
		SessionID:   input.SessionID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error into an MCP error result with a JSON payload.
// Non-Tokime errors are reported as INTERNAL without their text.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var te *errors.TokimeError
	if stderrors.As(err, &te) {
		message := te.Message
		if err != error(te) {
			// Keep the wrapper context, e.g. "import: NOT_FOUND: ...".
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    te.Code,
			"message": message,
			"status":  te.Status,
		}
		// INTERNAL details may carry paths or SQL text.
		if te.Code != errors.ErrInternal && te.Details != nil {
			errorObj["details"] = te.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
