package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/format"
	"github.com/agbru/basketmc/internal/metrics"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/sysmon"
	"github.com/agbru/basketmc/internal/ui"
)

// CLIColorProvider implements apperrors.ColorProvider with the active theme.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// HandleError prints a run failure and returns the exit code.
func HandleError(err error, summary Summary, out io.Writer) int {
	return apperrors.HandleRunError(err, summary.Duration, out, CLIColorProvider{})
}

// summaryRow is one label/value line of the summary box.
type summaryRow struct {
	label string
	value string
}

func (s Summary) rows() []summaryRow {
	rows := []summaryRow{
		{"Session", s.SessionID},
		{"Result", s.ResultID},
		{"Mode", s.Mode},
		{"Paths", format.FormatInt(s.Result.Paths)},
		{"Units", fmt.Sprintf("%d", s.Result.Units)},
	}
	if s.Seed != 0 {
		rows = append(rows, summaryRow{"Seed", fmt.Sprintf("%d", s.Seed)})
	}
	switch s.Result.Kind {
	case orchestration.KindVector:
		for i, item := range s.Result.Items {
			rows = append(rows, summaryRow{fmt.Sprintf("Partial %d", i), describeItem(item)})
		}
	default:
		rows = append(rows,
			summaryRow{"Basket value", fmt.Sprintf("%.6f", s.Result.Value)},
			summaryRow{"Std. error", fmt.Sprintf("%.6f", s.Result.StdError)},
		)
	}
	rows = append(rows,
		summaryRow{"Reference Σw·S", fmt.Sprintf("%.6f", s.Reference)},
		summaryRow{"Duration", format.FormatExecutionDuration(s.Duration)},
	)
	return rows
}

func describeItem(item orchestration.VectorItem) string {
	p, err := orchestration.DecodePartial(item.Bytes())
	if err != nil {
		return fmt.Sprintf("%d bytes", len(item.Bytes()))
	}
	return fmt.Sprintf("%.6f ± %.6f (%s paths)", p.Value, p.StdError, format.FormatInt(p.Paths))
}

// DisplaySummary renders the run summary inside a rounded lipgloss box.
func DisplaySummary(out io.Writer, s Summary) {
	theme := ui.GetCurrentBoxTheme()
	labelStyle := lipgloss.NewStyle().Foreground(theme.Label)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Value)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	rows := s.rows()
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > width {
			width = w
		}
	}

	lines := []string{titleStyle.Render("Basket valuation"), ""}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(r.label))
		lines = append(lines, labelStyle.Render(r.label+pad)+"  "+valueStyle.Render(r.value))
	}
	fmt.Fprintln(out, box.Render(strings.Join(lines, "\n")))
}

// DisplayMemoryStats shows the runtime memory used by the run.
func DisplayMemoryStats(delta metrics.MemoryDelta, after metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(after.HeapAlloc))
	fmt.Fprintf(out, "  Heap delta:      %+d B\n", delta.HeapAllocDelta)
	fmt.Fprintf(out, "  Goroutines:      %d\n", after.Goroutines)
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.GCCycles)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(delta.PauseNs)/1e6)
}

// DisplaySystemStats shows the machine-wide resource usage.
func DisplaySystemStats(stats sysmon.Stats, out io.Writer) {
	fmt.Fprintf(out, "\nSystem:\n")
	fmt.Fprintf(out, "  Logical CPUs:    %d\n", stats.LogicalCPU)
	fmt.Fprintf(out, "  CPU:             %.1f%%\n", stats.CPUPercent)
	fmt.Fprintf(out, "  Memory:          %.1f%%\n", stats.MemPercent)
	fmt.Fprintf(out, "  Process RSS:     %s\n", format.FormatBytes(stats.ProcessRSS))
}
