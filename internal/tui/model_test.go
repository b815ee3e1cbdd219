package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/platform"
)

func testSession(p platform.Progress) Session {
	return Session{
		ID:       "session-1",
		Mode:     "4 workers, mean join",
		Paths:    10000,
		Progress: func() platform.Progress { return p },
		Await: func(ctx context.Context) (orchestration.AggregateResult, error) {
			<-ctx.Done()
			return orchestration.AggregateResult{}, ctx.Err()
		},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestModel_TickRefreshesProgress(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{Submitted: 6, Running: 2, Succeeded: 3}))
	defer m.cancel()

	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next refresh")
	}
	if m.units.Succeeded != 3 || m.units.Submitted != 6 {
		t.Errorf("units = %+v", m.units)
	}
	view := m.View()
	for _, want := range []string{"session-1", "3/6 done", "4 workers, mean join", "10,000"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_FailuresShown(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{Submitted: 5, Succeeded: 3, Failed: 1, Skipped: 1}))
	defer m.cancel()

	m, _ = update(t, m, tickMsg(time.Now()))
	if !strings.Contains(m.View(), "1 failed, 1 skipped") {
		t.Errorf("view should report failures:\n%s", m.View())
	}
}

func TestModel_QuitCancelsSession(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{}))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		t.Error("quit should wait for the session instead of exiting immediately")
	}
	if !m.canceled {
		t.Error("model should be marked canceled")
	}
	select {
	case <-m.ctx.Done():
	default:
		t.Fatal("quit should cancel the session context")
	}

	msg := awaitCmd(m.ctx, m.session.Await)()
	m, cmd = update(t, m, msg)
	if !m.done || !errors.Is(m.err, context.Canceled) {
		t.Errorf("done = %v, err = %v", m.done, m.err)
	}
	if cmd == nil {
		t.Error("a finished session should quit the program")
	}
}

func TestModel_DoneShowsValue(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{Submitted: 3, Succeeded: 3}))
	defer m.cancel()

	result := orchestration.AggregateResult{Kind: orchestration.KindMean, Value: 219.25, Units: 2, Paths: 100}
	m, _ = update(t, m, doneMsg{result: result})
	if m.result.Value != 219.25 {
		t.Errorf("result = %+v", m.result)
	}
	view := m.View()
	if !strings.Contains(view, "219.250000") || !strings.Contains(view, "done") {
		t.Errorf("view should show the final value:\n%s", view)
	}

	if _, cmd := update(t, m, tickMsg(time.Now())); cmd != nil {
		t.Error("ticks after completion should not reschedule")
	}
}

func TestModel_PauseAndStats(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{Submitted: 1}))
	defer m.cancel()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if !m.paused || !strings.Contains(m.View(), "paused") {
		t.Error("p should pause the charts")
	}

	m, _ = update(t, m, sysStatsMsg{CPUPercent: 50, MemPercent: 25})
	if m.cpu.Last() != 50 || m.mem.Last() != 25 {
		t.Errorf("cpu = %v, mem = %v", m.cpu.Last(), m.mem.Last())
	}
}

func TestModel_WindowResize(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), testSession(platform.Progress{}))
	defer m.cancel()

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	if m.bar.Width != maxBarWidth {
		t.Errorf("bar width = %d, want %d", m.bar.Width, maxBarWidth)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 5, Height: 40})
	if m.bar.Width != minBarWidth {
		t.Errorf("bar width = %d, want %d", m.bar.Width, minBarWidth)
	}
}
