package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/ops"
	"github.com/hpungsan/tokime/internal/tui"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// clipboardWriter is used by the copy command and the popup.
var clipboardWriter = ops.SystemClipboard

// newCLIApp creates the CLI application with all commands.
func newCLIApp(mgr *manager.Manager, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tokime",
		Usage:   "Stopwatches for the terminal",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(mgr),
			listCmd(mgr),
			showCmd(mgr),
			startCmd(mgr),
			stopCmd(mgr),
			toggleCmd(mgr),
			renameCmd(mgr),
			deleteCmd(mgr),
			runningCmd(mgr),
			sessionCmd(mgr),
			reportCmd(mgr),
			copyCmd(mgr),
			popupCmd(mgr, cfg),
			exportCmd(mgr, cfg),
			importCmd(mgr, cfg),
			clearCmd(mgr),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func addCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a stopwatch",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "start", Aliases: []string{"s"}, Usage: "Start it right away"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Add(c.Context, mgr, ops.AddInput{
				Title: strings.Join(c.Args().Slice(), " "),
				Start: c.Bool("start"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func listCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stopwatches with their totals",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "running", Aliases: []string{"r"}, Usage: "Only running stopwatches"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, mgr, ops.ListInput{RunningOnly: c.Bool("running")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func showCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stopwatch and its sessions, newest first",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-sessions", Usage: "Exclude sessions from output"},
			&cli.BoolFlag{Name: "utc", Usage: "Format timestamps in UTC"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{ID: c.Args().First()}
			if c.Bool("no-sessions") {
				include := false
				input.IncludeSessions = &include
			}
			if c.Bool("utc") {
				input.Location = time.UTC
			}
			output, err := ops.Fetch(c.Context, mgr, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// timerCmd builds the start, stop and toggle commands, which differ only in the op they call.
func timerCmd(name, usage string, op func(*cli.Context, ops.TimerInput) (*ops.TimerOutput, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := op(c, ops.TimerInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func startCmd(mgr *manager.Manager) *cli.Command {
	return timerCmd("start", "Start a stopwatch", func(c *cli.Context, in ops.TimerInput) (*ops.TimerOutput, error) {
		return ops.Start(c.Context, mgr, in)
	})
}

func stopCmd(mgr *manager.Manager) *cli.Command {
	return timerCmd("stop", "Stop a running stopwatch", func(c *cli.Context, in ops.TimerInput) (*ops.TimerOutput, error) {
		return ops.Stop(c.Context, mgr, in)
	})
}

func toggleCmd(mgr *manager.Manager) *cli.Command {
	return timerCmd("toggle", "Start a stopwatch, or stop it if running", func(c *cli.Context, in ops.TimerInput) (*ops.TimerOutput, error) {
		return ops.Toggle(c.Context, mgr, in)
	})
}

func renameCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a stopwatch (an empty title resets it)",
		ArgsUsage: "<id> [title]",
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			input := ops.RenameInput{}
			if len(args) > 0 {
				input.ID = args[0]
				input.Title = strings.Join(args[1:], " ")
			}
			output, err := ops.Rename(c.Context, mgr, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func deleteCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a stopwatch and its sessions",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, mgr, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func runningCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:  "running",
		Usage: "Count and list running stopwatches",
		Action: func(c *cli.Context) error {
			output, err := ops.Running(c.Context, mgr)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "Start time (epoch ms or RFC 3339)"},
		&cli.StringFlag{Name: "end", Usage: "End time (epoch ms or RFC 3339)"},
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Session title"},
	}
}

func sessionCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Edit the sessions of a stopwatch",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a session by hand (omit --end to leave it open)",
				ArgsUsage: "<stopwatch-id>",
				Flags:     sessionFlags(),
				Action: func(c *cli.Context) error {
					if !c.IsSet("start") {
						return outputError(errors.NewInvalidRequest("--start is required"))
					}
					start, err := parseTimestamp(c.String("start"))
					if err != nil {
						return outputError(err)
					}
					input := ops.SessionAddInput{
						StopwatchID: c.Args().First(),
						Title:       c.String("title"),
						Start:       start,
					}
					if c.IsSet("end") {
						end, err := parseTimestamp(c.String("end"))
						if err != nil {
							return outputError(err)
						}
						input.End = &end
					}
					output, err := ops.SessionAdd(c.Context, mgr, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Change the title or times of a session, or reopen it",
				ArgsUsage: "<stopwatch-id> <session-id>",
				Flags: append(sessionFlags(),
					&cli.BoolFlag{Name: "reopen", Usage: "Clear the end time so the session runs again"},
				),
				Action: func(c *cli.Context) error {
					input := ops.SessionUpdateInput{
						StopwatchID: c.Args().Get(0),
						SessionID:   c.Args().Get(1),
					}
					if c.IsSet("title") {
						title := c.String("title")
						input.Title = &title
					}
					if c.IsSet("start") {
						start, err := parseTimestamp(c.String("start"))
						if err != nil {
							return outputError(err)
						}
						input.Start = &start
					}
					if c.IsSet("end") {
						end, err := parseTimestamp(c.String("end"))
						if err != nil {
							return outputError(err)
						}
						input.End = &end
					}
					input.Reopen = c.Bool("reopen")
					output, err := ops.SessionUpdate(c.Context, mgr, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a session",
				ArgsUsage: "<stopwatch-id> <session-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.SessionDelete(c.Context, mgr, ops.SessionDeleteInput{
						StopwatchID: c.Args().Get(0),
						SessionID:   c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

func reportCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print a time report as Markdown or HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.ReportMarkdown, Usage: "Output format: markdown|html"},
			&cli.BoolFlag{Name: "html", Usage: "Shorthand for --format=html"},
			&cli.BoolFlag{Name: "sessions", Usage: "Include a session table per stopwatch"},
			&cli.BoolFlag{Name: "running", Aliases: []string{"r"}, Usage: "Only running stopwatches"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if c.Bool("html") {
				format = ops.ReportHTML
			}
			output, err := ops.Report(c.Context, mgr, ops.ReportInput{
				Format:          format,
				RunningOnly:     c.Bool("running"),
				IncludeSessions: c.Bool("sessions"),
			})
			if err != nil {
				return outputError(err)
			}
			// Reports are documents, not JSON
			_, err = io.WriteString(stdout, output.Content)
			return err
		},
	}
}

func copyCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy \"Title: HH:MM:SS\" to the clipboard",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Copy(c.Context, mgr, clipboardWriter, ops.CopyInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func popupCmd(mgr *manager.Manager, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "popup",
		Usage: "Open the interactive stopwatch list",
		Action: func(c *cli.Context) error {
			if err := tui.Run(c.Context, mgr, tui.Options{
				RefreshInterval: cfg.RefreshInterval(),
				Clipboard:       clipboardWriter,
			}); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

func exportCmd(mgr *manager.Manager, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up all stored data to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.tokime/exports/tokime-backup-<date>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, mgr, cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func importCmd(mgr *manager.Manager, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Restore data from a JSON backup, overwriting stored keys",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, mgr, cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func clearCmd(mgr *manager.Manager) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all stored data",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the wipe"},
			&cli.BoolFlag{Name: "stopwatches-only", Usage: "Remove stopwatches but keep other stored keys"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("clear removes all data; pass --yes to confirm"))
			}
			output, err := ops.Clear(c.Context, mgr, ops.ClearInput{
				StopwatchesOnly: c.Bool("stopwatches-only"),
			})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var tokimeErr *errors.TokimeError
	if stderrors.As(err, &tokimeErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", tokimeErr.Code, tokimeErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseTimestamp accepts epoch milliseconds or an RFC 3339 time.
func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, errors.NewInvalidRequest("timestamp must be non-negative")
		}
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid timestamp %q: use epoch ms or RFC 3339", s))
	}
	return t.UnixMilli(), nil
}
