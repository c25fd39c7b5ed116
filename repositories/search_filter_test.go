package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackslate/hackathon-system/models"
)

func TestBuildUserSearchFilterEmpty(t *testing.T) {
	where, args := buildUserSearchFilter(models.SearchQuery{})
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestBuildUserSearchFilterSingleStage(t *testing.T) {
	role := models.RoleStudent
	where, args := buildUserSearchFilter(models.SearchQuery{Role: &role})

	assert.Equal(t, " WHERE role = $1", where)
	assert.Equal(t, []interface{}{role}, args)
}

func TestBuildUserSearchFilterAllStages(t *testing.T) {
	role := models.RoleStudent
	available := true
	where, args := buildUserSearchFilter(models.SearchQuery{
		Role:      &role,
		Available: &available,
		InputText: "ada",
	})

	assert.Equal(t, " WHERE role = $1 AND available = $2 AND (username ILIKE $3 OR full_name ILIKE $3)", where)
	assert.Equal(t, []interface{}{role, true, "%ada%"}, args)
}

func TestBuildUserSearchFilterEscapesWildcards(t *testing.T) {
	_, args := buildUserSearchFilter(models.SearchQuery{InputText: `50%_a\b`})
	assert.Equal(t, []interface{}{`%50\%\_a\\b%`}, args)
}

func TestBuildProjectSearchFilterEmpty(t *testing.T) {
	where, args := buildProjectSearchFilter(models.SearchQuery{})
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestBuildProjectSearchFilterAllStages(t *testing.T) {
	status := models.StatusOngoing
	size := 4
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	where, args := buildProjectSearchFilter(models.SearchQuery{
		Status:      &status,
		MaxTeamSize: &size,
		InputText:   "hack",
		From:        &from,
		To:          &to,
	})

	assert.Equal(t,
		" WHERE status = $1 AND max_team_size <= $2 AND (name ILIKE $3 OR description ILIKE $3) AND start_date >= $4 AND start_date <= $5",
		where)
	assert.Equal(t, []interface{}{status, 4, "%hack%", from, to}, args)
}

func TestBuildProjectSearchFilterDateRangeOnly(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	where, args := buildProjectSearchFilter(models.SearchQuery{From: &from})

	assert.Equal(t, " WHERE start_date >= $1", where)
	assert.Equal(t, []interface{}{from}, args)
}
