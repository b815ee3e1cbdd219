package format

import (
	"fmt"
	"strings"
)

// FormatNumberString inserts thousands separators into a decimal integer
// string, keeping a leading minus sign.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(sign) + n + (n-1)/3)
	b.WriteString(sign)
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatInt formats n with thousands separators.
func FormatInt(n int) string {
	return FormatNumberString(fmt.Sprintf("%d", n))
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
