package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a run duration for the summary table and
// the dashboard header. Sub-millisecond runs are shown in µs, sub-second runs
// in ms, runs under a minute in seconds with two decimals, and longer runs
// rounded to a tenth of a second ("1m30.6s").
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
