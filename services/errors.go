package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	// Not-found and forbidden collapse into one error on purpose: a caller
	// must not be able to tell another host's resource from a missing one.
	ErrHackathonNotFound    = errors.New("hackathon not found or access denied")
	ErrRegistrationNotFound = errors.New("registration not found or access denied")

	// State-machine conflicts
	ErrHackathonNotUpcoming       = errors.New("hackathon cannot be started")
	ErrRegistrationAlreadyClosed  = errors.New("registration is already closed")
	ErrRegistrationAlreadyDecided = errors.New("registration has already been decided")

	// Input errors
	ErrInvalidDecision    = errors.New("decision must be APPROVED or REJECTED")
	ErrInvalidWinnerRank  = errors.New("winner rank must be a positive integer")
	ErrWinnerTeamInvalid  = errors.New("winner team does not belong to this hackathon")
	ErrUnsupportedImage   = errors.New("unsupported image content type")
	ErrRosterFileRequired = errors.New("a roster file is required")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
)

// ValidationError reports missing or malformed input fields with a
// field-level message map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
