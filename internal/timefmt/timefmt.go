// Package timefmt renders stopwatch durations and session timestamps.
package timefmt

import (
	"fmt"
	"time"
)

// TimestampLayout is used for session start/end times in listings.
const TimestampLayout = "Jan 2, 2006, 03:04:05 PM"

// Duration formats a millisecond duration as HH:MM:SS.
// Hours are not capped, so 100 hours renders as "100:00:00".
// Negative durations clamp to zero.
func Duration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Timestamp formats an epoch-millisecond timestamp in loc (time.Local if nil).
func Timestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(TimestampLayout)
}
