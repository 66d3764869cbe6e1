package ops

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
	"github.com/hpungsan/tokime/internal/timefmt"
)

// Report formats.
const (
	ReportMarkdown = "markdown"
	ReportHTML     = "html"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Format          string         // markdown (default) or html
	RunningOnly     bool
	IncludeSessions bool
	Location        *time.Location // default: local time
}

// ReportOutput contains the result of the Report operation.
type ReportOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
	Count   int    `json:"count"`
	TotalMs int64  `json:"total_ms"`
}

var reportMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Report renders a time table of stopwatches as Markdown, or as HTML
// converted from that Markdown.
func Report(ctx context.Context, mgr *manager.Manager, input ReportInput) (*ReportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = ReportMarkdown
	}
	if format != ReportMarkdown && format != ReportHTML {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html")
	}

	var (
		md    string
		total int64
		count int
	)
	mgr.ViewAll(ctx, func(all []*stopwatch.Stopwatch) {
		items := all
		if input.RunningOnly {
			items = make([]*stopwatch.Stopwatch, 0, len(all))
			for _, s := range all {
				if s.IsRunning() {
					items = append(items, s)
				}
			}
		}
		md, total = buildMarkdownReport(items, input.IncludeSessions, input.Location)
		count = len(items)
	})

	out := &ReportOutput{
		Format:  format,
		Content: md,
		Count:   count,
		TotalMs: total,
	}

	if format == ReportHTML {
		var buf bytes.Buffer
		if err := reportMarkdown.Convert([]byte(md), &buf); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to render report: %w", err))
		}
		out.Content = buf.String()
	}

	return out, nil
}

func buildMarkdownReport(items []*stopwatch.Stopwatch, withSessions bool, loc *time.Location) (string, int64) {
	var b strings.Builder
	var total int64

	b.WriteString("# Tokime report\n\n")
	if len(items) == 0 {
		b.WriteString("No stopwatches.\n")
		return b.String(), 0
	}

	b.WriteString("| Stopwatch | Status | Sessions | Total |\n")
	b.WriteString("| --- | --- | ---: | ---: |\n")
	for _, s := range items {
		d := s.TotalDuration()
		total += d
		status := "idle"
		if s.IsRunning() {
			status = "running"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n",
			escapeCell(s.Title()), status, len(s.Sessions()), timefmt.Duration(d))
	}
	fmt.Fprintf(&b, "\n**Total:** %s\n", timefmt.Duration(total))

	if withSessions {
		for _, s := range items {
			fmt.Fprintf(&b, "\n## %s\n\n", escapeCell(s.Title()))
			sessions := s.SortedSessions()
			if len(sessions) == 0 {
				b.WriteString("No sessions.\n")
				continue
			}
			b.WriteString("| Session | Start | End | Duration |\n")
			b.WriteString("| --- | --- | --- | ---: |\n")
			for _, sess := range sessions {
				v := NewSessionView(s, sess, loc)
				end := v.EndText
				if v.Active {
					end = "active"
				}
				title := v.Title
				if title == "" {
					title = "-"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
					escapeCell(title), v.StartText, end, v.Duration)
			}
		}
	}

	return b.String(), total
}

// escapeCell keeps a title from breaking a Markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
