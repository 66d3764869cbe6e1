package mcp

import "github.com/mark3labs/mcp-go/mcp"

var addToolDef = mcp.NewTool("stopwatch_add",
	mcp.WithDescription("Create a stopwatch. An empty title uses the default placeholder."),
	mcp.WithString("title", mcp.Description("Display title")),
	mcp.WithBoolean("start", mcp.Description("Start a session immediately")),
)

var listToolDef = mcp.NewTool("stopwatch_list",
	mcp.WithDescription("List stopwatches in creation order with formatted totals."),
	mcp.WithBoolean("running_only", mcp.Description("Only include running stopwatches")),
)

var getToolDef = mcp.NewTool("stopwatch_get",
	mcp.WithDescription("Get one stopwatch with its sessions, newest first."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Stopwatch id")),
	mcp.WithBoolean("include_sessions", mcp.Description("Include sessions (default true)")),
)

var startToolDef = mcp.NewTool("stopwatch_start",
	mcp.WithDescription("Start a stopwatch. Fails with ALREADY_RUNNING if a session is open."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Stopwatch id")),
)

var stopToolDef = mcp.NewTool("stopwatch_stop",
	mcp.WithDescription("Stop a running stopwatch. Fails with NOT_RUNNING if idle."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Stopwatch id")),
)

var renameToolDef = mcp.NewTool("stopwatch_rename",
	mcp.WithDescription("Rename a stopwatch. An empty title resets to the placeholder."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Stopwatch id")),
	mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
)

var deleteToolDef = mcp.NewTool("stopwatch_delete",
	mcp.WithDescription("Delete a stopwatch and all of its sessions."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Stopwatch id")),
)

var runningToolDef = mcp.NewTool("stopwatch_running",
	mcp.WithDescription("Count running stopwatches and list them."),
)

var reportToolDef = mcp.NewTool("stopwatch_report",
	mcp.WithDescription("Render a time report as markdown or html."),
	mcp.WithString("format", mcp.Description("markdown (default) or html")),
	mcp.WithBoolean("running_only", mcp.Description("Only include running stopwatches")),
	mcp.WithBoolean("include_sessions", mcp.Description("Add a session table per stopwatch")),
)

var sessionAddToolDef = mcp.NewTool("session_add",
	mcp.WithDescription("Add a manual session. Times are epoch milliseconds; omit end for an open session."),
	mcp.WithString("stopwatch_id", mcp.Required(), mcp.Description("Stopwatch id")),
	mcp.WithNumber("start", mcp.Required(), mcp.Description("Start, epoch milliseconds")),
	mcp.WithNumber("end", mcp.Description("End, epoch milliseconds; must be after start")),
	mcp.WithString("title", mcp.Description("Session title")),
)

var sessionUpdateToolDef = mcp.NewTool("session_update",
	mcp.WithDescription("Edit a session's title or timing, or reopen a closed session."),
	mcp.WithString("stopwatch_id", mcp.Required(), mcp.Description("Stopwatch id")),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithNumber("start", mcp.Description("New start, epoch milliseconds")),
	mcp.WithNumber("end", mcp.Description("New end, epoch milliseconds")),
	mcp.WithBoolean("reopen", mcp.Description("Clear the end time so the session runs again. Fails if another session is open.")),
)

var sessionDeleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session from a stopwatch."),
	mcp.WithString("stopwatch_id", mcp.Required(), mcp.Description("Stopwatch id")),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)
