package engine

import (
	"math"

	"github.com/farecast/travel-backend/internal/domain"
)

// Calibration baseline for the value score. Providers quote in a single
// currency unit and the caps simply floor the normalized term at zero, so a
// fare above PriceCap or a trip longer than TimeCap contributes nothing to
// the score rather than going negative.
const (
	DefaultPriceCap = 10000 // currency units
	DefaultTimeCap  = 600   // minutes

	DefaultPriceWeight   = 0.5
	DefaultTimeWeight    = 0.3
	DefaultComfortWeight = 0.2
)

// Scorer computes the 0-100 value score from price, duration, and comfort.
// The weights and caps are configuration: deployments serving markets with
// different fare scales recalibrate without a code change.
type Scorer struct {
	PriceCap      float64
	TimeCap       float64
	PriceWeight   float64
	TimeWeight    float64
	ComfortWeight float64
}

// NewScorer returns a Scorer with the default calibration.
func NewScorer() Scorer {
	return Scorer{
		PriceCap:      DefaultPriceCap,
		TimeCap:       DefaultTimeCap,
		PriceWeight:   DefaultPriceWeight,
		TimeWeight:    DefaultTimeWeight,
		ComfortWeight: DefaultComfortWeight,
	}
}

// Score computes the value score for a single option.
func (s Scorer) Score(opt domain.TravelOption) int {
	normalizedPrice := math.Max(0, 1-opt.Price/s.PriceCap)
	normalizedTime := math.Max(0, 1-float64(opt.DurationMinutes)/s.TimeCap)
	normalizedComfort := float64(opt.ComfortScore) / 10

	score := 100 * (s.PriceWeight*normalizedPrice +
		s.TimeWeight*normalizedTime +
		s.ComfortWeight*normalizedComfort)

	return int(math.Round(score))
}

// ScoreAll annotates every option in place with its value score. It never
// reorders; ranking is a separate step.
func (s Scorer) ScoreAll(options []domain.TravelOption) {
	for i := range options {
		score := s.Score(options[i])
		options[i].ValueScore = &score
	}
}
