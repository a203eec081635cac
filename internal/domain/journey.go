package domain

import (
	"time"

	"github.com/google/uuid"
)

// Journey is one travel search made by a user: the search inputs plus the
// ranked option set the aggregation produced. A journey is the top-level
// aggregate; its options are embedded, not separately addressable.
//
// SelectedOption, once set, always references an option present in Options.
type Journey struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	TravelDate     time.Time      `json:"travel_date"`
	Passengers     int            `json:"passengers"`
	Options        []TravelOption `json:"options"`
	SelectedOption *uuid.UUID     `json:"selected_option,omitempty"` // nil until the user picks one
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Option returns the option with the given ID, or false when the journey
// does not contain it.
func (j Journey) Option(id uuid.UUID) (TravelOption, bool) {
	for _, opt := range j.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return TravelOption{}, false
}
