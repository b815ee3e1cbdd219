// Package tui renders an interactive dashboard that follows a running
// valuation session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/basketmc/internal/format"
	"github.com/agbru/basketmc/internal/metrics"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/platform"
	"github.com/agbru/basketmc/internal/sysmon"
)

const (
	tickInterval  = 250 * time.Millisecond
	historyLength = 40
	labelWidth    = 10
	minBarWidth   = 10
	maxBarWidth   = 60
)

// Session describes the run the dashboard follows. Await blocks until the
// root result is available or ctx is done; the dashboard cancels ctx when the
// user quits.
type Session struct {
	ID       string
	Mode     string
	Paths    int
	Progress func() platform.Progress
	Await    func(ctx context.Context) (orchestration.AggregateResult, error)
}

type (
	tickMsg     time.Time
	sysStatsMsg sysmon.Stats
	memStatsMsg metrics.MemorySnapshot
	doneMsg     struct {
		result orchestration.AggregateResult
		err    error
	}
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	session Session
	ctx     context.Context
	cancel  context.CancelFunc

	keymap KeyMap
	help   help.Model
	bar    progress.Model

	units  platform.Progress
	cpu    *RingBuffer
	mem    *RingBuffer
	memory metrics.MemorySnapshot

	start    time.Time
	end      time.Time
	paused   bool
	canceled bool
	done     bool
	result   orchestration.AggregateResult
	err      error
	width    int
}

// NewModel creates a dashboard for s. The returned model owns a child of ctx
// that it cancels when the user quits.
func NewModel(ctx context.Context, s Session) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		session: s,
		ctx:     ctx,
		cancel:  cancel,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth/2)),
		cpu:     NewRingBuffer(historyLength),
		mem:     NewRingBuffer(historyLength),
		start:   time.Now(),
	}
}

// Init starts the refresh ticker and the wait for the session result.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), awaitCmd(m.ctx, m.session.Await))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = max(minBarWidth, min(msg.Width-labelWidth-8, maxBarWidth))
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.units = m.session.Progress()
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleSysStatsCmd(m.ctx), sampleMemStatsCmd(), tickCmd())

	case sysStatsMsg:
		m.cpu.Push(msg.CPUPercent)
		m.mem.Push(msg.MemPercent)
		return m, nil

	case memStatsMsg:
		m.memory = metrics.MemorySnapshot(msg)
		return m, nil

	case doneMsg:
		m.done = true
		m.end = time.Now()
		m.result, m.err = msg.result, msg.err
		m.units = m.session.Progress()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		// The pending wait returns once the context is canceled.
		m.canceled = true
		m.cancel()
	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) elapsed() time.Duration {
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

func (m Model) status() string {
	switch {
	case m.done && m.err != nil:
		return statusErrorStyle.Render("failed")
	case m.done:
		return statusDoneStyle.Render("done")
	case m.canceled:
		return statusErrorStyle.Render("canceling")
	case m.paused:
		return statusRunStyle.Render("paused")
	default:
		return statusRunStyle.Render("running")
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// View renders the dashboard.
func (m Model) View() string {
	header := titleStyle.Render("basketmc") +
		dimStyle.Render(fmt.Sprintf(" | session %s | %s | ", m.session.ID, format.FormatExecutionDuration(m.elapsed()))) +
		m.status()

	u := m.units
	rows := []string{
		row("Mode", m.session.Mode),
		row("Paths", format.FormatInt(m.session.Paths)),
		row("Units", valueStyle.Render(fmt.Sprintf("%d/%d done", u.Done(), u.Submitted))+
			dimStyle.Render(fmt.Sprintf(", %d running", u.Running))),
	}
	if u.Failed+u.Skipped > 0 {
		rows = append(rows, row("Failures", statusErrorStyle.Render(fmt.Sprintf("%d failed, %d skipped", u.Failed, u.Skipped))))
	}
	rows = append(rows,
		row("Progress", m.bar.ViewAs(u.Fraction())),
		row("CPU", cpuSparkStyle.Render(RenderSparkline(m.cpu.Slice()))+fmt.Sprintf(" %5.1f%%", m.cpu.Last())),
		row("Memory", memSparkStyle.Render(RenderSparkline(m.mem.Slice()))+fmt.Sprintf(" %5.1f%%", m.mem.Last())),
		row("Heap", fmt.Sprintf("%s, %d goroutines", format.FormatBytes(m.memory.HeapAlloc), m.memory.Goroutines)),
	)
	if m.done && m.err == nil && m.result.Kind == orchestration.KindMean {
		rows = append(rows, row("Value", valueStyle.Render(fmt.Sprintf("%.6f", m.result.Value))))
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// Run shows the dashboard until the session finishes or the user cancels it,
// and returns the session result.
func Run(ctx context.Context, s Session) (orchestration.AggregateResult, error) {
	// Styles follow the theme InitTheme selected.
	initStyles()

	model := NewModel(ctx, s)
	defer model.cancel()

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return orchestration.AggregateResult{}, fmt.Errorf("dashboard: %w", err)
	}
	m, ok := final.(Model)
	if !ok || !m.done {
		return orchestration.AggregateResult{}, errors.New("dashboard exited before the session finished")
	}
	return m.result, m.err
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func awaitCmd(ctx context.Context, await func(context.Context) (orchestration.AggregateResult, error)) tea.Cmd {
	return func() tea.Msg {
		result, err := await(ctx)
		return doneMsg{result: result, err: err}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return sysStatsMsg(sysmon.Sample(ctx))
	}
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return memStatsMsg(metrics.NewMemoryCollector().Snapshot())
	}
}
