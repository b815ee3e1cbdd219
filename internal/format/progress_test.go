package format

import (
	"strings"
	"testing"
	"time"
)

// TestNewProgressWithETA verifies proper initialization.
func TestNewProgressWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA()

	if p.progressRate != 0 {
		t.Errorf("initial progressRate = %f, want 0", p.progressRate)
	}
	if p.startTime.IsZero() {
		t.Error("startTime should not be zero")
	}
	if p.Progress() != 0 {
		t.Errorf("initial progress = %f, want 0", p.Progress())
	}
}

// TestUpdate verifies progress updates and rate estimation.
func TestUpdate(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA()

	time.Sleep(5 * time.Millisecond)
	progress, eta := p.Update(0.25)
	if progress != 0.25 {
		t.Errorf("progress = %f, want 0.25", progress)
	}
	if eta <= 0 {
		t.Errorf("ETA should be positive once progress was made, got %v", eta)
	}
	if p.progressRate <= 0 {
		t.Errorf("progressRate = %f, want > 0", p.progressRate)
	}

	progress, eta = p.Update(1)
	if progress != 1 || eta != 0 {
		t.Errorf("complete: progress %f, ETA %v; want 1 and 0", progress, eta)
	}
}

// TestGetETA verifies ETA retrieval.
func TestGetETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA()

	if eta := p.GetETA(); eta != 0 {
		t.Errorf("initial ETA = %v, want 0", eta)
	}

	p.progress = 0.5
	p.progressRate = 0.1 // 10% per second

	eta := p.GetETA()
	expectedETA := 5 * time.Second
	tolerance := time.Second
	if eta < expectedETA-tolerance || eta > expectedETA+tolerance {
		t.Errorf("ETA = %v, want approximately %v", eta, expectedETA)
	}
}

// TestFormatETA verifies ETA formatting.
func TestFormatETA(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		eta      time.Duration
		expected string
	}{
		{"Zero duration", 0, "calculating..."},
		{"Negative duration", -time.Second, "calculating..."},
		{"Less than a second", 500 * time.Millisecond, "< 1s"},
		{"One second", time.Second, "1s"},
		{"Multiple seconds", 45 * time.Second, "45s"},
		{"One minute", time.Minute, "1m"},
		{"Minutes and seconds", 2*time.Minute + 30*time.Second, "2m30s"},
		{"One hour", time.Hour, "1h"},
		{"Hours and minutes", time.Hour + 15*time.Minute, "1h15m"},
		{"Multiple hours", 3*time.Hour + 45*time.Minute, "3h45m"},
		{"Hours only (no minutes)", 2 * time.Hour, "2h"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if result := FormatETA(tc.eta); result != tc.expected {
				t.Errorf("FormatETA(%v) = %q, want %q", tc.eta, result, tc.expected)
			}
		})
	}
}

// TestFormatProgressBarWithETA verifies combined progress and ETA formatting.
func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		progress float64
		eta      time.Duration
		width    int
		want     string
	}{
		{"Zero progress", 0, time.Minute, 4, "[░░░░]   0.0% ETA: 1m"},
		{"50% progress", 0.5, 30 * time.Second, 4, "[██░░]  50.0% ETA: 30s"},
		{"Complete", 1.0, 0, 4, "[████] 100.0% ETA: done"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatProgressBarWithETA(tc.progress, tc.eta, tc.width); got != tc.want {
				t.Errorf("FormatProgressBarWithETA = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestProgressWithETAEdgeCases verifies edge case handling.
func TestProgressWithETAEdgeCases(t *testing.T) {
	t.Parallel()
	t.Run("Progress exceeds 1.0", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA()
		if progress, _ := p.Update(1.5); progress != 1 {
			t.Errorf("progress = %f, want it clamped to 1", progress)
		}
	})

	t.Run("Negative progress", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA()
		if progress, _ := p.Update(-0.5); progress != 0 {
			t.Errorf("progress = %f, want it clamped to 0", progress)
		}
	})

	t.Run("Regression keeps the rate", func(t *testing.T) {
		t.Parallel()
		p := NewProgressWithETA()
		p.progress, p.progressRate = 0.5, 0.2
		p.Update(0.4)
		if p.progressRate != 0.2 {
			t.Errorf("progressRate = %f, want 0.2", p.progressRate)
		}
	})
}

// TestETACapping verifies that ETA is capped at reasonable values.
func TestETACapping(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA()
	p.progress = 0.001
	p.progressRate = 0.0000001

	if eta := p.GetETA(); eta > maxETA {
		t.Errorf("ETA = %v, should be capped at %v", eta, maxETA)
	}
}

// TestProgressBar verifies progress bar rendering.
func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		length   int
		expected string
	}{
		{0.0, 10, "░░░░░░░░░░"},
		{0.5, 10, "█████░░░░░"},
		{1.0, 10, "██████████"},
		{1.2, 10, "██████████"}, // Cap at 1.0
		{-0.1, 10, "░░░░░░░░░░"},  // Floor at 0.0
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.progress, tt.length); got != tt.expected {
			t.Errorf("ProgressBar(%f, %d) = %s; want %s", tt.progress, tt.length, got, tt.expected)
		}
	}
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0µs"},
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{10 * time.Millisecond, "10ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
		{59*time.Second + 994*time.Millisecond, "59.99s"},
		{90*time.Second + 560*time.Millisecond, "1m30.6s"},
		{2 * time.Hour, "2h0m0s"},
	}

	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.expected {
			t.Errorf("FormatExecutionDuration(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}

// TestFormatNumberString verifies thousand separator formatting.
func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"1", "1"},
		{"12", "12"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"-1234", "-1,234"},
		{"-123", "-123"},
	}

	for _, tt := range tests {
		if got := FormatNumberString(tt.input); got != tt.expected {
			t.Errorf("FormatNumberString(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
	if got := FormatInt(10000); got != "10,000" {
		t.Errorf("FormatInt(10000) = %q", got)
	}
}

// TestFormatBytes verifies binary unit formatting.
func TestFormatBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !strings.HasSuffix(FormatBytes(3<<30), "GiB") {
		t.Error("FormatBytes should reach GiB")
	}
}
