package schedule

import (
	"time"
)

// IsQuiet reports whether t falls in one of the quiet hours (UTC).
func IsQuiet(t time.Time, quietHours []int) bool {
	h := t.UTC().Hour()
	for _, q := range quietHours {
		if q == h {
			return true
		}
	}
	return false
}

// NextWindow returns the next suitable interaction time avoiding quiet hours.
// When now is not quiet it is returned unchanged; otherwise the result is the
// top of the first non-quiet hour.
func NextWindow(now time.Time, quietHours []int) time.Time {
	if !IsQuiet(now, quietHours) {
		return now
	}
	top := now.UTC().Truncate(time.Hour)
	for i := 1; i <= 48; i++ { // search up to 2 days ahead
		cand := top.Add(time.Duration(i) * time.Hour)
		if !IsQuiet(cand, quietHours) {
			return cand
		}
	}
	return now.Add(15 * time.Minute)
}
