package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusForDates(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusPlanned, StatusForDates(now.Add(time.Hour), now))
	assert.Equal(t, StatusOngoing, StatusForDates(now, now))
	assert.Equal(t, StatusOngoing, StatusForDates(now.Add(-time.Hour), now))
}
