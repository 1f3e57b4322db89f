package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/kgatracker/kgatracker/internal/control"
)

const callTimeout = 3 * time.Second

// Client is the part of the control client the monitor uses.
type Client interface {
	GetState(ctx context.Context) (control.Status, error)
	Restore(ctx context.Context) error
	CheckForUpdates(ctx context.Context) error
}

// Model is the monitor's bubbletea model.
type Model struct {
	client   Client
	interval time.Duration

	status   *control.Status
	updated  time.Time
	err      error
	notice   string
	width    int
	showHelp bool
}

// NewModel creates a monitor polling client every interval.
func NewModel(client Client, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{client: client, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetch() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		st, err := client.GetState(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return statusMsg{status: st, at: time.Now()}
	}
}

func (m Model) call(text string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errorMsg{err: err}
		}
		return actionMsg{text: text}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, m.fetch()
		case key.Matches(msg, keys.Restore):
			return m, m.call("restore requested", m.client.Restore)
		case key.Matches(msg, keys.Update):
			return m, m.call("update check started", m.client.CheckForUpdates)
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case statusMsg:
		st := msg.status
		m.status = &st
		m.updated = msg.at
		m.err = nil
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil

	case actionMsg:
		m.notice = msg.text
		return m, m.fetch()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(brandStyle.Render("KGA Tracker"))
	if m.status != nil {
		b.WriteString(" " + hintStyle.Render(m.status.Version))
	}
	b.WriteString("\n\n")

	if m.status == nil {
		if m.err != nil {
			b.WriteString(errorStyle.Render("host unreachable: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(hintStyle.Render("connecting...") + "\n")
		}
		b.WriteString("\n" + m.helpLine())
		return b.String()
	}

	b.WriteString(panelStyle.Render(m.statusBody()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	} else if m.notice != "" {
		b.WriteString(hintStyle.Render(m.notice) + "\n")
	}
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) statusBody() string {
	s := m.status
	rows := [][2]string{
		{"Mode", renderMode(s.Mode)},
		{"Flags", renderFlags(*s)},
		{"Pending", renderList(s.Pending)},
		{"PID", valueStyle.Render(fmt.Sprint(s.PID))},
		{"", ""},
		{"Update", valueStyle.Render(orDash(s.Update.State))},
		{"Feed", valueStyle.Render(m.fit(orDash(s.Update.FeedURL)))},
		{"Latest", valueStyle.Render(orDash(s.Update.Latest))},
		{"Last check", valueStyle.Render(formatTime(s.Update.LastChecked))},
	}
	if s.Update.LastError != "" {
		rows = append(rows, [2]string{"Last error", errorStyle.Render(m.fit(s.Update.LastError))})
	}

	lines := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		if r[0] == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, labelStyle.Render(r[0])+r[1])
	}
	lines = append(lines, hintStyle.Render("updated "+m.updated.Format("15:04:05")))
	return strings.Join(lines, "\n")
}

// fit truncates a value so its row stays inside the panel.
func (m Model) fit(s string) string {
	if m.width == 0 {
		return s
	}
	// label column, border and padding
	avail := m.width - labelStyle.GetWidth() - 4
	if avail < 8 {
		avail = 8
	}
	return ansi.Truncate(s, avail, "…")
}

func (m Model) helpLine() string {
	bindings := keys.bindings()
	if !m.showHelp {
		bindings = []key.Binding{keys.Help, keys.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return hintStyle.Render(strings.Join(parts, " • "))
}

func renderMode(mode string) string {
	if mode == "mini" {
		return modeMiniStyle.Render("mini")
	}
	return modeNormalStyle.Render(orDash(mode))
}

func renderFlags(s control.Status) string {
	var flags []string
	if s.ShuttingDown {
		flags = append(flags, "shutting down")
	}
	if s.Quitting {
		flags = append(flags, "quitting")
	}
	if s.Minimizing {
		flags = append(flags, "minimizing")
	}
	if len(flags) == 0 {
		return hintStyle.Render("none")
	}
	return flagStyle.Render(strings.Join(flags, ", "))
}

func renderList(items []string) string {
	if len(items) == 0 {
		return hintStyle.Render("none")
	}
	return valueStyle.Render(strings.Join(items, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
