package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPosition renders a playback position in seconds as m:ss or h:mm:ss.
func FormatPosition(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TruncateString shortens s to max runes, adding an ellipsis.
func TruncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// ParsePosition parses seconds ("90", "12.5") or clock notation ("1:30",
// "1:02:03") into seconds.
func ParsePosition(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty position")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid position %q", s)
	}

	var total float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		// Minutes and seconds fields after the first must be below 60.
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}
