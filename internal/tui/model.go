// Package tui is the terminal popup: a live list of stopwatches with
// start/stop, create, rename, delete and copy-to-clipboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/ops"
)

type mode int

const (
	modeBrowse mode = iota
	modeNew
	modeRename
	modeConfirmDelete
)

type tickMsg time.Time

// Options configures a Model.
type Options struct {
	RefreshInterval time.Duration       // default one second
	Clipboard       ops.ClipboardWriter // default ops.SystemClipboard
}

// Model is the Bubble Tea model for the popup.
type Model struct {
	ctx       context.Context
	mgr       *manager.Manager
	interval  time.Duration
	clipboard ops.ClipboardWriter

	items   []ops.StopwatchView
	running int
	cursor  int

	mode   mode
	input  textinput.Model
	keys   keyMap
	help   help.Model
	status string
	failed bool
	width  int
}

// New builds a popup over mgr and loads the current stopwatches.
func New(ctx context.Context, mgr *manager.Manager, opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	if opts.Clipboard == nil {
		opts.Clipboard = ops.SystemClipboard
	}

	in := textinput.New()
	in.Placeholder = "Stopwatch title"
	in.CharLimit = 120
	in.Prompt = "› "

	m := Model{
		ctx:       ctx,
		mgr:       mgr,
		interval:  opts.RefreshInterval,
		clipboard: opts.Clipboard,
		input:     in,
		keys:      defaultKeys(),
		help:      help.New(),
	}
	m.refresh()
	return m
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles ticks, resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowsing(msg)
		case modeConfirmDelete:
			return m.updateConfirming(msg)
		}
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.New):
		m.mode = modeNew
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Rename):
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeRename
		m.input.SetValue(sel.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Toggle):
		if sel, ok := m.selected(); ok {
			out, err := ops.Toggle(m.ctx, m.mgr, ops.TimerInput{ID: sel.ID})
			if m.report(err) {
				m.setStatus(fmt.Sprintf("%s %s", out.Action, out.Stopwatch.Title))
			}
		}

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			return m, nil
		}

	case key.Matches(msg, m.keys.Copy):
		if sel, ok := m.selected(); ok {
			out, err := ops.Copy(m.ctx, m.mgr, m.clipboard, ops.CopyInput{ID: sel.ID})
			if m.report(err) {
				m.setStatus("copied " + out.Text)
			}
		}
	}

	m.refresh()
	return m, nil
}

func (m Model) updateConfirming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		if sel, ok := m.selected(); ok {
			_, err := ops.Delete(m.ctx, m.mgr, ops.DeleteInput{ID: sel.ID})
			if m.report(err) {
				m.setStatus("deleted " + sel.Title)
			}
		}
		m.mode = modeBrowse
		m.refresh()

	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		title := strings.TrimSpace(m.input.Value())
		if m.mode == modeNew {
			out, err := ops.Add(m.ctx, m.mgr, ops.AddInput{Title: title})
			if m.report(err) {
				m.setStatus("added " + out.Stopwatch.Title)
				m.refresh()
				m.focus(out.Stopwatch.ID)
			}
		} else if sel, ok := m.selected(); ok {
			out, err := ops.Rename(m.ctx, m.mgr, ops.RenameInput{ID: sel.ID, Title: title})
			if m.report(err) {
				m.setStatus("renamed to " + out.Stopwatch.Title)
			}
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh reloads the views and keeps the cursor in range.
func (m *Model) refresh() {
	out, err := ops.List(m.ctx, m.mgr, ops.ListInput{NewestFirst: true})
	if err != nil {
		m.report(err)
		return
	}
	m.items = out.Items
	m.running = out.Running
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// focus moves the cursor to the row with the given id, if it is listed.
func (m *Model) focus(id string) {
	for i, item := range m.items {
		if item.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *Model) selected() (ops.StopwatchView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return ops.StopwatchView{}, false
	}
	return m.items[m.cursor], true
}

// report shows err in the status line and returns true when err is nil.
func (m *Model) report(err error) bool {
	if err == nil {
		return true
	}
	m.status = err.Error()
	m.failed = true
	return false
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

// View renders the popup.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Tokime"))
	if m.running > 0 {
		b.WriteString(" ")
		b.WriteString(badgeStyle.Render(fmt.Sprintf("%d", m.running)))
	}
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("No stopwatches yet. Press n to add one."))
	} else {
		rows := make([]string, 0, len(m.items))
		for i, item := range m.items {
			rows = append(rows, m.renderRow(i, item))
		}
		b.WriteString(listStyle.Render(strings.Join(rows, "\n")))
	}
	b.WriteString("\n")

	switch m.mode {
	case modeNew:
		b.WriteString("\nNew stopwatch\n" + m.input.View() + "\n")
	case modeRename:
		b.WriteString("\nRename\n" + m.input.View() + "\n")
	case modeConfirmDelete:
		if sel, ok := m.selected(); ok {
			b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Delete %q and all its sessions? (y/n)", sel.Title)) + "\n")
		}
	}

	if m.status != "" {
		style := mutedStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return appStyle.Render(b.String())
}

func (m Model) renderRow(i int, item ops.StopwatchView) string {
	marker := "  "
	style := rowStyle
	if i == m.cursor {
		marker = "> "
		style = selectedStyle
	}

	state := mutedStyle.Render("○")
	total := item.Total
	if item.Running {
		state = runningStyle.Render("●")
		total = runningStyle.Render(total)
	}

	return fmt.Sprintf("%s%s %s  %s", marker, state, style.Render(item.Title), total)
}
