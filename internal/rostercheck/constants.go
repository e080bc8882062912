package rostercheck

// Outcomes of a single roster request.
const (
	outcomeOK        = "ok"
	outcomeDuplicate = "duplicate"
	outcomeFull      = "full"
	outcomeFailed    = "failed"
)

// Error codes returned by the activities API.
const (
	codeAlreadySignedUp = "already_signed_up"
	codeNotRegistered   = "not_registered"
	codeActivityFull    = "activity_full"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
)

// DefaultDomain is used for generated student emails.
const DefaultDomain = "rostercheck.mergington.edu"
