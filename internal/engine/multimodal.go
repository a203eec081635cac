package engine

import (
	"context"

	"github.com/farecast/travel-backend/internal/domain"
)

// Combiner produces additional multi-modal options (e.g. train to a hub
// city plus taxi for the last leg) from the merged single-mode set. It is a
// named seam so future routing logic slots in without touching the
// Aggregator's contract.
type Combiner interface {
	Combine(ctx context.Context, params domain.SearchParams, options []domain.TravelOption) ([]domain.TravelOption, error)
}

// MultiModalCombiner is the current Combiner implementation. Genuine
// multi-modal route planning needs hub detection and a mapping backend,
// neither of which is in scope yet, so it contributes no options.
type MultiModalCombiner struct{}

// Combine returns no additional options.
func (MultiModalCombiner) Combine(ctx context.Context, params domain.SearchParams, options []domain.TravelOption) ([]domain.TravelOption, error) {
	return nil, nil
}
