package tui

// sparklineChars maps values 0..7 to the block elements ▁▂▃▄▅▆▇█.
var sparklineChars = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RingBuffer is a fixed-capacity circular buffer of samples.
type RingBuffer struct {
	data  []float64
	head  int
	count int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{data: make([]float64, capacity)}
}

// Push adds a sample, overwriting the oldest if full.
func (r *RingBuffer) Push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Len returns the number of valid samples.
func (r *RingBuffer) Len() int { return r.count }

// Last returns the most recent sample, or 0 if empty.
func (r *RingBuffer) Last() float64 {
	if r.count == 0 {
		return 0
	}
	idx := r.head - 1
	if idx < 0 {
		idx = len(r.data) - 1
	}
	return r.data[idx]
}

// Slice returns samples oldest first.
func (r *RingBuffer) Slice() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	start := r.head - r.count
	if start < 0 {
		start += len(r.data)
	}
	for i := range r.count {
		result[i] = r.data[(start+i)%len(r.data)]
	}
	return result
}

// RenderSparkline converts percentages (0..100) into a sparkline. Values
// outside the range are clamped.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		v = max(0, min(v, 100))
		runes[i] = sparklineChars[min(int(v/100*7), 7)]
	}
	return string(runes)
}
