package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/basketmc/internal/config"
	"github.com/agbru/basketmc/internal/format"
	"github.com/agbru/basketmc/internal/montecarlo"
	"github.com/agbru/basketmc/internal/ui"
)

// PrintExecutionConfig displays the request and environment of the run.
//
// Parameters:
//   - cfg: The application configuration.
//   - req: The simulation request about to be submitted.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, req montecarlo.Request, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Valuing a basket of %s%d%s assets over %s%s%s paths (r=%v, T=%v) with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), len(req.Basket), ui.ColorReset(),
		ui.ColorMagenta(), format.FormatInt(req.PathCount), ui.ColorReset(),
		req.RiskFreeRate, req.TimeHorizon,
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	for _, a := range req.Basket {
		fmt.Fprintf(out, "  %s%-8s%s spot=%-10v vol=%-6v weight=%v\n",
			ui.ColorBlue(), a.Name, ui.ColorReset(), a.Spot, a.Volatility, a.Weight)
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, %s%d%s concurrent units, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Parallelism, ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// DescribeMode names how a request is executed.
func DescribeMode(req montecarlo.Request) string {
	if req.SubtaskCount == 0 {
		return "single worker"
	}
	join := req.Join
	if join == "" {
		join = "mean"
	}
	return fmt.Sprintf("%d workers, %s join", req.SubtaskCount, join)
}

// PrintExecutionMode displays the decomposition of the run.
func PrintExecutionMode(req montecarlo.Request, out io.Writer) {
	fmt.Fprintf(out, "Execution mode: %s%s%s.\n", ui.ColorGreen(), DescribeMode(req), ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
