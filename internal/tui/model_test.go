package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kgatracker/kgatracker/internal/control"
)

type fakeClient struct {
	status   control.Status
	err      error
	restores int
	checks   int
}

func (c *fakeClient) GetState(context.Context) (control.Status, error) {
	return c.status, c.err
}

func (c *fakeClient) Restore(context.Context) error {
	c.restores++
	return c.err
}

func (c *fakeClient) CheckForUpdates(context.Context) error {
	c.checks++
	return c.err
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestStatusRendersInView(t *testing.T) {
	m := NewModel(&fakeClient{}, time.Second)
	m, _ = update(t, m, statusMsg{
		status: control.Status{
			Version:  "1.4.0",
			Mode:     "mini",
			Quitting: true,
			Pending:  []string{"minimize"},
			Update:   control.UpdateStatus{State: "deferred", FeedURL: "/srv/feed", Latest: "1.5.0"},
		},
		at: time.Now(),
	})

	view := m.View()
	for _, want := range []string{"1.4.0", "mini", "quitting", "minimize", "deferred", "/srv/feed", "1.5.0", "never"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFetchProducesStatusOrError(t *testing.T) {
	client := &fakeClient{status: control.Status{Mode: "normal"}}
	m := NewModel(client, time.Second)

	if _, ok := m.fetch()().(statusMsg); !ok {
		t.Fatal("fetch should produce statusMsg")
	}

	client.err = errors.New("connection refused")
	msg := m.fetch()()
	if _, ok := msg.(errorMsg); !ok {
		t.Fatalf("fetch produced %T, want errorMsg", msg)
	}

	m, _ = update(t, m, msg)
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}
}

func TestKeys(t *testing.T) {
	client := &fakeClient{}
	m := NewModel(client, time.Second)

	_, cmd := update(t, m, keyPress('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}

	_, cmd = update(t, m, keyPress('r'))
	msg := cmd()
	if a, ok := msg.(actionMsg); !ok || a.text != "restore requested" {
		t.Errorf("r produced %#v", msg)
	}
	if client.restores != 1 {
		t.Errorf("restores = %d, want 1", client.restores)
	}

	_, cmd = update(t, m, keyPress('u'))
	cmd()
	if client.checks != 1 {
		t.Errorf("checks = %d, want 1", client.checks)
	}

	m, _ = update(t, m, keyPress('?'))
	if !m.showHelp {
		t.Error("? should toggle help")
	}
	if !strings.Contains(m.View(), "restore window") {
		t.Error("full help not shown")
	}
}

func TestActionRefreshes(t *testing.T) {
	m := NewModel(&fakeClient{}, time.Second)
	m, cmd := update(t, m, actionMsg{text: "update check started"})
	if m.notice != "update check started" {
		t.Errorf("notice = %q", m.notice)
	}
	if cmd == nil {
		t.Error("action should trigger a refresh")
	}
}

func TestFitTruncatesToWidth(t *testing.T) {
	m := NewModel(&fakeClient{}, time.Second)
	long := strings.Repeat("x", 200)
	if got := m.fit(long); got != long {
		t.Error("fit without a known width should not truncate")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	got := m.fit(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("fit(long) = %q, want ellipsis suffix", got)
	}
	if len([]rune(got)) > 40 {
		t.Errorf("fit(long) has %d runes, want at most 40", len([]rune(got)))
	}
}
