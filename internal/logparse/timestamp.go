package logparse

import (
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp converts a "D/M/YYYY H:MM:SS" token into a local instant.
// Day, month and hour need not be zero-padded. Malformed tokens (missing
// date or time half, wrong field count, non-numeric component) yield the
// zero time.Time; out-of-range components normalize by calendar rollover.
func ParseTimestamp(s string) time.Time {
	halves := strings.Split(strings.TrimSpace(s), " ")
	if len(halves) != 2 {
		return time.Time{}
	}

	dateFields := strings.Split(halves[0], "/")
	timeFields := strings.Split(halves[1], ":")
	if len(dateFields) != 3 || len(timeFields) != 3 {
		return time.Time{}
	}

	var n [6]int
	for i, field := range append(dateFields, timeFields...) {
		v, err := strconv.Atoi(field)
		if err != nil {
			return time.Time{}
		}
		n[i] = v
	}

	return time.Date(n[2], time.Month(n[1]), n[0], n[3], n[4], n[5], 0, time.Local)
}
