package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/basketmc/internal/platform"
)

// MockSpinner for testing
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

func TestFormatProgressLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		progress platform.Progress
		contains []string
		excludes []string
	}{
		{
			name:     "Nothing submitted",
			progress: platform.Progress{},
			contains: []string{"units 0/0", "0.0%"},
			excludes: []string{"failed"},
		},
		{
			name:     "Half done",
			progress: platform.Progress{Submitted: 6, Running: 2, Succeeded: 3},
			contains: []string{"units 3/6", "50.0%"},
			excludes: []string{"failed"},
		},
		{
			name:     "Failures",
			progress: platform.Progress{Submitted: 5, Succeeded: 3, Failed: 1, Skipped: 1},
			contains: []string{"units 5/5", "100.0%", "(1 failed, 1 skipped)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line := FormatProgressLine(tt.progress, 0)
			for _, want := range tt.contains {
				if !strings.Contains(line, want) {
					t.Errorf("line %q should contain %q", line, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(line, unwanted) {
					t.Errorf("line %q should not contain %q", line, unwanted)
				}
			}
		})
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var polls atomic.Int32
	var finished atomic.Bool
	source := func() platform.Progress {
		polls.Add(1)
		if finished.Load() {
			return platform.Progress{Submitted: 4, Succeeded: 4}
		}
		return platform.Progress{Submitted: 4, Succeeded: 1, Running: 3}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan struct{})
	go func() {
		DisplayProgress(ctx, source, &out)
		close(done)
	}()

	time.Sleep(2 * ProgressRefreshRate)
	finished.Store(true)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("DisplayProgress did not return after cancellation")
	}

	if !mockS.started || !mockS.stopped {
		t.Errorf("spinner started=%v stopped=%v, want both", mockS.started, mockS.stopped)
	}
	if polls.Load() < 2 {
		t.Errorf("source polled %d times, want at least 2", polls.Load())
	}
	if !strings.Contains(out.String(), "units 4/4") {
		t.Errorf("final line should report completion, got %q", out.String())
	}
}
