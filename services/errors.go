package services

import "errors"

// StatusError is an application error that already knows the HTTP status it
// should surface with; the classification layer passes it through unchanged.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Shared errors used across services and the HTTP classification layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrEnrollmentRequired      = errors.New("enrollment number is required for students")
	ErrSearchInputRequired     = errors.New("search input must not be empty")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrNoFieldsToUpdate        = errors.New("no fields provided for update")
	ErrProjectInvalidRegStart  = errors.New("registration must not start in the past")
	ErrProjectInvalidRegWindow = errors.New("registration end must be after registration start")
	ErrProjectInvalidStart     = errors.New("project start must be after registration end")
	ErrProjectInvalidCapacity  = errors.New("project max team size must be positive")
	ErrRegistrationNotOpen     = errors.New("project registration is not open")

	// Authentication and authorization errors
	ErrUserNotFound          = errors.New("user not found")
	ErrIncorrectPassword     = errors.New("password is incorrect")
	ErrInternal              = errors.New("internal error")
	ErrAdminGateDenied       = errors.New("admin password is incorrect")
	ErrForbiddenOperation    = errors.New("operation not allowed for the current user")
	ErrVerificationExpired   = errors.New("verification code has expired")
	ErrVerificationMismatch  = errors.New("verification code is invalid")
	ErrAlreadyVerified       = errors.New("email is already verified")
	ErrLeaderActionForbidden = errors.New("only the team leader can perform this action")

	// Entity lookups
	ErrProjectNotFound = errors.New("project not found")
	ErrTeamNotFound    = errors.New("team not found")
)
