package internal

import (
	"fmt"
	"time"
)

// FormatTimeUntil renders d in the two largest units, e.g. "2 hours and 5 minutes".
// A zero minor unit is omitted.
func FormatTimeUntil(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs)
	case secs < 3600:
		return pair(secs/60, "minutes", secs%60, "seconds")
	case secs < 86400:
		return pair(secs/3600, "hours", secs%3600/60, "minutes")
	default:
		return pair(secs/86400, "days", secs%86400/3600, "hours")
	}
}

func pair(major int64, majorUnit string, minor int64, minorUnit string) string {
	if minor == 0 {
		return fmt.Sprintf("%d %s", major, majorUnit)
	}
	return fmt.Sprintf("%d %s and %d %s", major, majorUnit, minor, minorUnit)
}
