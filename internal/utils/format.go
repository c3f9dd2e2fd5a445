package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// ConvertBytesToHumanReadable renders a byte count like "1.2 MB".
func ConvertBytesToHumanReadable(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// RelativeTime renders t relative to now, e.g. "3 minutes ago".
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
