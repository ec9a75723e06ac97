package domain

type Venue struct {
	VenueID string `json:"venueId"`
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// Equipment is rentable gear offered by a venue.
type Equipment struct {
	EquipmentID string  `json:"equipmentId"`
	VenueID     string  `json:"venueId"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	RentalPrice float64 `json:"rentalPrice"`
}
