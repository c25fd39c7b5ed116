package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/services"
)

func TestParseSearchQueryEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search", nil)

	query, err := parseSearchQuery(req)
	require.NoError(t, err)

	assert.Nil(t, query.Role)
	assert.Nil(t, query.Available)
	assert.Nil(t, query.Status)
	assert.Nil(t, query.MaxTeamSize)
	assert.Nil(t, query.From)
	assert.Nil(t, query.To)
	assert.Empty(t, query.InputText)
}

func TestParseSearchQueryAllFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/search?role=student&available=true&inputText=ada&status=ongoing&maxTeamSize=4"+
			"&from=2026-03-01T00:00:00Z&to=2026-04-01T00:00:00Z", nil)

	query, err := parseSearchQuery(req)
	require.NoError(t, err)

	require.NotNil(t, query.Role)
	assert.Equal(t, models.RoleStudent, *query.Role)
	require.NotNil(t, query.Available)
	assert.True(t, *query.Available)
	assert.Equal(t, "ada", query.InputText)
	require.NotNil(t, query.Status)
	assert.Equal(t, models.StatusOngoing, *query.Status)
	require.NotNil(t, query.MaxTeamSize)
	assert.Equal(t, 4, *query.MaxTeamSize)
	require.NotNil(t, query.From)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), *query.From)
	require.NotNil(t, query.To)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), *query.To)
}

func TestParseSearchQueryBadValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad role", "role=wizard"},
		{"bad available", "available=maybe"},
		{"bad status", "status=paused"},
		{"bad maxTeamSize", "maxTeamSize=zero"},
		{"negative maxTeamSize", "maxTeamSize=-1"},
		{"bad from", "from=yesterday"},
		{"bad to", "to=03-2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/search?"+tt.query, nil)

			_, err := parseSearchQuery(req)
			require.Error(t, err)

			var statusErr *services.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusBadRequest, statusErr.Code)
		})
	}
}
