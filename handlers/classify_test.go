package handlers

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/services"
)

func TestClassifyNil(t *testing.T) {
	c := Classify(nil)
	assert.Equal(t, http.StatusInternalServerError, c.Status)
	assert.Equal(t, FieldErrors{}, c.Errors)
}

func TestClassifyMultiFieldDuplication(t *testing.T) {
	err := &services.DuplicationError{Duplication: repositories.Duplication{
		Email:            true,
		Username:         true,
		EnrollmentNumber: true,
	}}

	c := Classify(err)
	assert.Equal(t, http.StatusConflict, c.Status)
	assert.NotEmpty(t, c.Errors.Email)
	assert.NotEmpty(t, c.Errors.Username)
	assert.NotEmpty(t, c.Errors.EnrollmentNumber)
	assert.Equal(t, map[string]bool{"email": true, "username": true, "enrollmentNumber": true}, c.Duplication)
}

func TestClassifyPartialDuplication(t *testing.T) {
	err := &services.DuplicationError{Duplication: repositories.Duplication{Email: true}}

	c := Classify(err)
	assert.Equal(t, http.StatusConflict, c.Status)
	assert.NotEmpty(t, c.Errors.Email)
	assert.Empty(t, c.Errors.Username)
	assert.Equal(t, map[string]bool{"email": true}, c.Duplication)
}

func TestClassifyConstraintConflicts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		flag string
	}{
		{"email", repositories.ErrUserEmailConflict, "email"},
		{"username", repositories.ErrUserUsernameConflict, "username"},
		{"enrollment", repositories.ErrUserEnrollmentConflict, "enrollmentNumber"},
		{"project name", repositories.ErrProjectNameConflict, "name"},
		{"team name", repositories.ErrTeamNameConflict, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			assert.Equal(t, http.StatusConflict, c.Status)
			assert.True(t, c.Duplication[tt.flag])
		})
	}
}

func TestClassifyValidationErrors(t *testing.T) {
	v := validator.New()
	err := v.Struct(services.RegisterInput{
		Username:         "ab",
		Email:            "not-an-email",
		EnrollmentNumber: "abc",
		Password:         "short",
	})
	require.Error(t, err)

	c := Classify(err)
	assert.Equal(t, http.StatusBadRequest, c.Status)
	assert.NotEmpty(t, c.Errors.Username)
	assert.NotEmpty(t, c.Errors.Email)
	assert.NotEmpty(t, c.Errors.EnrollmentNumber)
	assert.NotEmpty(t, c.Errors.Password)
	assert.NotEmpty(t, c.Errors.Name) // FullName missing
}

func TestClassifyTokenErrors(t *testing.T) {
	for _, err := range []error{services.ErrTokenExpired, services.ErrTokenInvalid} {
		c := Classify(err)
		assert.Equal(t, http.StatusUnauthorized, c.Status)
		assert.Equal(t, "authentication required", c.Errors.General)
	}
}

func TestClassifyAdminGateDenied(t *testing.T) {
	c := Classify(services.ErrAdminGateDenied)
	assert.Equal(t, http.StatusUnauthorized, c.Status)
	assert.NotEmpty(t, c.Errors.Password)
}

func TestClassifyForbidden(t *testing.T) {
	for _, err := range []error{
		services.ErrForbiddenOperation,
		services.ErrLeaderActionForbidden,
		services.ErrRegistrationNotOpen,
	} {
		c := Classify(err)
		assert.Equal(t, http.StatusForbidden, c.Status)
	}
}

func TestClassifyUnavailable(t *testing.T) {
	for _, err := range []error{driver.ErrBadConn, context.DeadlineExceeded} {
		c := Classify(err)
		assert.Equal(t, http.StatusServiceUnavailable, c.Status)
	}
}

func TestClassifyStatusErrorPassthrough(t *testing.T) {
	c := Classify(&services.StatusError{Code: http.StatusTeapot, Message: "short and stout"})
	assert.Equal(t, http.StatusTeapot, c.Status)
	assert.Equal(t, "short and stout", c.Errors.General)
}

func TestClassifyNotFoundFamily(t *testing.T) {
	for _, err := range []error{
		services.ErrUserNotFound,
		services.ErrProjectNotFound,
		services.ErrTeamNotFound,
		services.ErrNotFound,
	} {
		c := Classify(err)
		assert.Equal(t, http.StatusNotFound, c.Status)
		assert.Equal(t, err.Error(), c.Errors.General)
	}
}

func TestClassifyIncorrectPassword(t *testing.T) {
	// Wrong password and unknown user stay distinguishable on the wire.
	c := Classify(services.ErrIncorrectPassword)
	assert.Equal(t, http.StatusUnauthorized, c.Status)
	assert.Equal(t, "password is incorrect", c.Errors.Password)
	assert.Empty(t, c.Errors.General)

	c = Classify(services.ErrUserNotFound)
	assert.Equal(t, http.StatusNotFound, c.Status)
}

func TestClassifyWrappedSentinel(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), services.ErrUserNotFound)
	c := Classify(wrapped)
	assert.Equal(t, http.StatusNotFound, c.Status)
}

func TestClassifyFieldSlottedBadRequests(t *testing.T) {
	c := Classify(services.ErrPasswordTooShort)
	assert.Equal(t, http.StatusBadRequest, c.Status)
	assert.NotEmpty(t, c.Errors.Password)

	c = Classify(services.ErrEnrollmentRequired)
	assert.Equal(t, http.StatusBadRequest, c.Status)
	assert.NotEmpty(t, c.Errors.EnrollmentNumber)

	c = Classify(services.ErrProjectInvalidRegWindow)
	assert.Equal(t, http.StatusBadRequest, c.Status)
	assert.NotEmpty(t, c.Errors.Dates)
}

func TestClassifyUnknownErrorDefaultsTo500(t *testing.T) {
	c := Classify(errors.New("something odd"))
	assert.Equal(t, http.StatusInternalServerError, c.Status)
	assert.Equal(t, "something odd", c.Errors.General)
}
