package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// maxETA caps estimates produced from very slow early progress.
	maxETA = 24 * time.Hour
	// rateSmoothing is the weight of the newest sample in the rate average.
	rateSmoothing = 0.3
)

// ProgressWithETA tracks a completion fraction over time and estimates the
// time remaining from an exponentially smoothed completion rate.
type ProgressWithETA struct {
	mu           sync.Mutex
	startTime    time.Time
	lastUpdate   time.Time
	progress     float64
	progressRate float64 // fraction per second
}

// NewProgressWithETA starts tracking at zero progress.
func NewProgressWithETA() *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{startTime: now, lastUpdate: now}
}

// Update records a new completion fraction, clamped to [0, 1], and returns it
// with the current ETA.
func (p *ProgressWithETA) Update(progress float64) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	progress = clamp(progress)

	now := time.Now()
	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0 && progress > p.progress {
		rate := (progress - p.progress) / dt
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = rateSmoothing*rate + (1-rateSmoothing)*p.progressRate
		}
		p.lastUpdate = now
	}
	p.progress = progress
	return progress, p.etaLocked()
}

// Progress returns the last recorded fraction.
func (p *ProgressWithETA) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// GetETA returns the estimated remaining time, 0 while no rate is known.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaLocked()
}

// Elapsed returns the time since tracking started.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *ProgressWithETA) etaLocked() time.Duration {
	if p.progressRate <= 0 || p.progress >= 1 {
		return 0
	}
	seconds := (1 - p.progress) / p.progressRate
	eta := time.Duration(seconds * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// FormatETA renders an ETA for humans: "calculating..." until an estimate
// exists, then seconds, minutes or hours.
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders progress as a fixed-width bar of block characters.
func ProgressBar(progress float64, length int) string {
	progress = clamp(progress)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	progress = clamp(progress)
	etaText := FormatETA(eta)
	if progress >= 1 {
		etaText = "done"
	}
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), progress*100, etaText)
}
