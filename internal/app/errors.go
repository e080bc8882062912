package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrEmailRequired = errors.New("email is required")
	ErrNameRequired  = errors.New("activity name is required")
)
