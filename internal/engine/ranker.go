package engine

import (
	"sort"

	"github.com/farecast/travel-backend/internal/domain"
)

// Rank sorts options in place: value score descending, then price
// ascending, then duration ascending, then adapter registration order.
// The tie-break chain is total and deterministic so identical inputs always
// produce identical orderings — test fixtures and paginated clients both
// rely on that.
func Rank(options []domain.TravelOption) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if sa, sb := scoreOf(a), scoreOf(b); sa != sb {
			return sa > sb
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		if a.DurationMinutes != b.DurationMinutes {
			return a.DurationMinutes < b.DurationMinutes
		}
		return a.AdapterOrder < b.AdapterOrder
	})
}

// scoreOf treats an unscored option as zero so Rank is safe to call on any
// input, scored or not.
func scoreOf(opt domain.TravelOption) int {
	if opt.ValueScore == nil {
		return 0
	}
	return *opt.ValueScore
}
