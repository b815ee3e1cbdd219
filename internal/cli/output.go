// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplaySummary], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatProgressLine].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet mode prints only the basket value.
	Quiet bool
}

// Summary describes a finished run. Mode names the decomposition, e.g.
// "4 workers, mean join".
type Summary struct {
	SessionID string
	ResultID  string
	Mode      string
	Seed      uint64
	Result    orchestration.AggregateResult
	Reference float64
	Duration  time.Duration
}

// resultFile is the document written by WriteResultToFile.
type resultFile struct {
	Generated string                        `json:"generated"`
	SessionID string                        `json:"sessionId"`
	ResultID  string                        `json:"resultId"`
	Mode      string                        `json:"mode"`
	Seed      uint64                        `json:"seed,omitempty"`
	Duration  string                        `json:"duration"`
	Reference orchestration.Number          `json:"reference"`
	Result    orchestration.AggregateResult `json:"result"`
}

// WriteResultToFile writes the run summary and its aggregate result as an
// indented JSON document.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(s Summary, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	doc := resultFile{
		Generated: time.Now().Format(time.RFC3339),
		SessionID: s.SessionID,
		ResultID:  s.ResultID,
		Mode:      s.Mode,
		Seed:      s.Seed,
		Duration:  s.Duration.String(),
		Reference: orchestration.Number(s.Reference),
		Result:    s.Result,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(config.OutputFile, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return nil
}

// FormatQuietResult formats a result for quiet mode: the basket value for a
// mean join, one partial value per line for a vector join.
func FormatQuietResult(result orchestration.AggregateResult) string {
	if result.Kind != orchestration.KindVector {
		return fmt.Sprintf("%.6f", result.Value)
	}
	var out string
	for i, item := range result.Items {
		if i > 0 {
			out += "\n"
		}
		if p, err := orchestration.DecodePartial(item.Bytes()); err == nil {
			out += fmt.Sprintf("%.6f", p.Value)
		} else {
			out += string(item.Bytes())
		}
	}
	return out
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, result orchestration.AggregateResult) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// DisplayResultWithConfig displays a run summary with the given output
// configuration and saves it when requested.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, s Summary, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, s.Result)
	} else {
		DisplaySummary(out, s)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(s, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
