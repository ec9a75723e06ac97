package booking

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidStatus = errors.New("invalid status")
	ErrViewNotFound  = errors.New("saved view not found")
)
