package achievements

import (
	"sort"
	"time"
)

// LongestStreak returns the longest run of consecutive calendar days, in
// loc, that contain at least one of the given times.
func LongestStreak(times []time.Time, loc *time.Location) int {
	if len(times) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	seen := make(map[time.Time]bool, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		d := day(t, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// day maps t to midnight UTC of its calendar date in loc, so DST shifts do
// not break day arithmetic.
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
