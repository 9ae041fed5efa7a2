package analysis

import (
	"fmt"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatReturn formats a percentage return as "+X.XX%" or "-X.XX%".
// Drops decimals for magnitudes >= 1000% to keep the column compact.
func FormatReturn(r float64) string {
	if r >= 1000 || r <= -1000 {
		return fmt.Sprintf("%+.0f%%", r)
	}
	return fmt.Sprintf("%+.2f%%", r)
}
