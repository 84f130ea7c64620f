package report

import (
	"fmt"
	"time"
)

// PeriodRange resolves a report period key to a half-open [start, end)
// range. Supported keys: "7" and "30" (trailing days) and "month" (from
// the first day of the current month).
func PeriodRange(key string, now time.Time) (time.Time, time.Time, error) {
	end := now
	switch key {
	case "7":
		return end.AddDate(0, 0, -7), end, nil
	case "30":
		return end.AddDate(0, 0, -30), end, nil
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown report period %q", key)
}
