package domain

import (
	"encoding/json"
	"time"
)

// SavedView is a named booking-list query an owner stored for one venue.
type SavedView struct {
	ID        int64           `json:"id"`
	OwnerID   string          `json:"owner_id"`
	VenueID   string          `json:"venue_id"`
	Name      string          `json:"name"`
	Query     json.RawMessage `json:"query"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
