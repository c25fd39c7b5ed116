package handlers

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/services"
)

// FieldErrors is the stable field-addressable error shape. Every slot is
// always present so clients can test `field !== ""` without nil checks.
type FieldErrors struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	EnrollmentNumber string `json:"enrollmentNumber"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Dates            string `json:"dates"`
	General          string `json:"general"`
}

// Classification is the result of mapping an error onto the HTTP surface.
// Duplication flags accompany uniqueness conflicts so forms can mark every
// colliding field at once.
type Classification struct {
	Status      int             `json:"-"`
	Errors      FieldErrors     `json:"errors"`
	Duplication map[string]bool `json:"duplication,omitempty"`
}

// Classify maps any error produced below the handler boundary into a
// Classification. It never panics and always returns a fully-populated
// shape. Dispatch order matters: first match wins.
func Classify(err error) Classification {
	c := Classification{Status: http.StatusInternalServerError}
	if err == nil {
		return c
	}

	// 1. Uniqueness conflicts. The pre-check error carries every colliding
	// field; the constraint-level errors surface one field per violation
	// when a race slips past the pre-check.
	var dup *services.DuplicationError
	if errors.As(err, &dup) {
		c.Status = http.StatusConflict
		c.Duplication = map[string]bool{}
		if dup.Duplication.Email {
			c.Errors.Email = "that email is already registered"
			c.Duplication["email"] = true
		}
		if dup.Duplication.Username {
			c.Errors.Username = "that username is already registered"
			c.Duplication["username"] = true
		}
		if dup.Duplication.EnrollmentNumber {
			c.Errors.EnrollmentNumber = "that enrollment number is already registered"
			c.Duplication["enrollmentNumber"] = true
		}
		return c
	}
	switch {
	case errors.Is(err, repositories.ErrUserEmailConflict):
		c.Status = http.StatusConflict
		c.Errors.Email = "that email is already registered"
		c.Duplication = map[string]bool{"email": true}
		return c
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		c.Status = http.StatusConflict
		c.Errors.Username = "that username is already registered"
		c.Duplication = map[string]bool{"username": true}
		return c
	case errors.Is(err, repositories.ErrUserEnrollmentConflict):
		c.Status = http.StatusConflict
		c.Errors.EnrollmentNumber = "that enrollment number is already registered"
		c.Duplication = map[string]bool{"enrollmentNumber": true}
		return c
	case errors.Is(err, repositories.ErrProjectNameConflict),
		errors.Is(err, repositories.ErrProjectPublicIDConflict),
		errors.Is(err, repositories.ErrTeamNameConflict):
		c.Status = http.StatusConflict
		c.Errors.Name = "that name is already taken"
		c.Duplication = map[string]bool{"name": true}
		return c
	case errors.Is(err, repositories.ErrTeamMemberConflict):
		c.Status = http.StatusConflict
		c.Errors.General = err.Error()
		return c
	}

	// 2. Schema/payload validation: one message per offending field, fields
	// without a slot in the shape are dropped.
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.Status = http.StatusBadRequest
		for _, fieldErr := range validationErrors {
			assignFieldMessage(&c.Errors, fieldErr)
		}
		if c.Errors == (FieldErrors{}) {
			c.Errors.General = "validation failed"
		}
		return c
	}

	// 3. Recognized authentication / authorization / availability sentinels.
	switch {
	case errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenInvalid):
		c.Status = http.StatusUnauthorized
		c.Errors.General = "authentication required"
		return c
	case errors.Is(err, services.ErrAdminGateDenied):
		c.Status = http.StatusUnauthorized
		c.Errors.Password = "admin password is incorrect"
		return c
	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrLeaderActionForbidden),
		errors.Is(err, services.ErrRegistrationNotOpen):
		c.Status = http.StatusForbidden
		c.Errors.General = err.Error()
		return c
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		c.Status = http.StatusServiceUnavailable
		c.Errors.General = "service temporarily unavailable"
		return c
	}

	// 4. Application errors carrying an explicit status code.
	var statusErr *services.StatusError
	if errors.As(err, &statusErr) {
		c.Status = statusErr.Code
		c.Errors.General = statusErr.Message
		return c
	}

	// 5. Remaining sentinels with fixed mappings.
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, repositories.ErrTeamMemberNotFound),
		errors.Is(err, services.ErrNotFound):
		c.Status = http.StatusNotFound
		c.Errors.General = err.Error()
		return c
	case errors.Is(err, services.ErrIncorrectPassword):
		c.Status = http.StatusUnauthorized
		c.Errors.Password = "password is incorrect"
		return c
	case errors.Is(err, services.ErrInternal):
		c.Status = http.StatusInternalServerError
		c.Errors.General = "internal error"
		return c
	case errors.Is(err, services.ErrPasswordTooShort):
		c.Status = http.StatusBadRequest
		c.Errors.Password = err.Error()
		return c
	case errors.Is(err, services.ErrEnrollmentRequired):
		c.Status = http.StatusBadRequest
		c.Errors.EnrollmentNumber = err.Error()
		return c
	case errors.Is(err, services.ErrProjectInvalidRegStart),
		errors.Is(err, services.ErrProjectInvalidRegWindow),
		errors.Is(err, services.ErrProjectInvalidStart):
		c.Status = http.StatusBadRequest
		c.Errors.Dates = err.Error()
		return c
	case errors.Is(err, services.ErrProjectInvalidCapacity),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrNoFieldsToUpdate),
		errors.Is(err, services.ErrSearchInputRequired),
		errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrVerificationExpired),
		errors.Is(err, services.ErrVerificationMismatch),
		errors.Is(err, services.ErrAlreadyVerified):
		c.Status = http.StatusBadRequest
		c.Errors.General = err.Error()
		return c
	}

	// 6. Everything else: surface the message, default to 500.
	c.Errors.General = err.Error()
	return c
}

func assignFieldMessage(fields *FieldErrors, fieldErr validator.FieldError) {
	message := validationMessage(fieldErr)
	switch fieldErr.Field() {
	case "Email":
		fields.Email = message
	case "Username":
		fields.Username = message
	case "EnrollmentNumber":
		fields.EnrollmentNumber = message
	case "Password":
		fields.Password = message
	case "Name", "FullName":
		fields.Name = message
	case "RegistrationStart", "RegistrationEnd", "StartDate":
		fields.Dates = message
	}
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min":
		return "value is too short"
	case "max":
		return "value is too long"
	case "numeric":
		return "must contain only digits"
	default:
		return "invalid value"
	}
}
