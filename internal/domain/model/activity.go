// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"
)

// Activity is a named extracurricular offering with a participant roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string // signup order, unique
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft returns the remaining capacity, never below zero.
func (a Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// Clone returns a deep copy so callers can't mutate the roster of a stored activity.
func (a Activity) Clone() Activity {
	c := a
	c.Participants = slices.Clone(a.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	return c
}

// ChangeKind names a roster mutation.
type ChangeKind string

// Roster mutations.
const (
	ChangeSignup     ChangeKind = "signup"
	ChangeUnregister ChangeKind = "unregister"
)

// RosterChange records one successful signup or unregister.
// Seq increases with every published change and orders the feed.
type RosterChange struct {
	ID       string
	Seq      uint64
	Kind     ChangeKind
	Activity string
	Email    string
	At       time.Time
}
