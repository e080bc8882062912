package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrAlreadySignedUp  = errors.New("student already signed up")
	ErrNotRegistered    = errors.New("student not registered")
	ErrActivityFull     = errors.New("activity is full")
)
