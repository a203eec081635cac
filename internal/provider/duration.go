package provider

import (
	"regexp"
	"strconv"
)

var (
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
)

// parseDurationMinutes converts a provider-native duration string like
// "4h 30m", "5h", or "45m" into whole minutes. Unparseable input yields 0 —
// callers treat a zero duration the same as an unknown one.
func parseDurationMinutes(s string) int {
	var total int
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
	}
	return total
}
