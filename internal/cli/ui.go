package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/basketmc/internal/format"
	"github.com/agbru/basketmc/internal/platform"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressSource returns the current unit counters of a session.
type ProgressSource func() platform.Progress

// FormatProgressLine renders the unit counters for the spinner suffix.
func FormatProgressLine(p platform.Progress, eta time.Duration) string {
	line := fmt.Sprintf(" units %d/%d %s", p.Done(), p.Submitted,
		format.FormatProgressBarWithETA(p.Fraction(), eta, ProgressBarWidth))
	if p.Failed > 0 || p.Skipped > 0 {
		line += fmt.Sprintf(" (%d failed, %d skipped)", p.Failed, p.Skipped)
	}
	return line
}

// DisplayProgress polls source and animates a spinner on out until ctx is
// done, then prints the final counters. It blocks; run it in a goroutine.
func DisplayProgress(ctx context.Context, source ProgressSource, out io.Writer) {
	s := newSpinner(spinner.WithWriter(out))
	tracker := format.NewProgressWithETA()

	update := func() string {
		p := source()
		_, eta := tracker.Update(p.Fraction())
		line := FormatProgressLine(p, eta)
		s.UpdateSuffix(line)
		return line
	}

	update()
	s.Start()
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			line := update()
			s.Stop()
			fmt.Fprintf(out, "%s\n", line)
			return
		case <-ticker.C:
			update()
		}
	}
}
