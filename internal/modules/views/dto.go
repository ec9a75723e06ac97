package views

import "courtdash/internal/modules/booking"

type CreateRequest struct {
	Name  string             `json:"name" binding:"required,max=100"`
	Query booking.ListParams `json:"query"`
}
