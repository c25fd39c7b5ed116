package models

import (
	"time"

	"github.com/lib/pq"
)

// ProjectStatus mirrors the project_status ENUM in the database.
type ProjectStatus string

const (
	StatusPlanned   ProjectStatus = "planned"
	StatusOngoing   ProjectStatus = "ongoing"
	StatusCompleted ProjectStatus = "completed"
)

// Project represents a hackathon event owned by an organizer.
type Project struct {
	ID                int            `json:"id"`
	PublicID          string         `json:"publicId"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	RegistrationStart time.Time      `json:"registrationStart"`
	RegistrationEnd   time.Time      `json:"registrationEnd"`
	StartDate         time.Time      `json:"startDate"`
	OrganizerID       int            `json:"organizerId"`
	MaxTeamSize       int            `json:"maxTeamSize"`
	Rules             *string        `json:"rules,omitempty"`
	Theme             *string        `json:"theme,omitempty"`
	Prizes            *string        `json:"prizes,omitempty"`
	Tags              pq.StringArray `json:"tags"`
	Status            ProjectStatus  `json:"status"`
	LogoKey           *string        `json:"-"`
	LogoURL           *string        `json:"logoUrl,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`

	// Related entities, loaded on demand.
	Organizer *OrganizerSummary `json:"organizer,omitempty"`
	Judges    []Judge           `json:"judges,omitempty"`
	Teams     []Team            `json:"teams,omitempty"`
}

// OrganizerSummary is the denormalized organizer view attached to search
// results and project detail responses.
type OrganizerSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Judge belongs to a project; UserID is set when the judge is a registered user.
type Judge struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"-"`
	Name      string `json:"name"`
	UserID    *int   `json:"userId,omitempty"`
}

// StatusForDates derives the lifecycle status a project should carry at the
// given instant. Completed is a terminal state set by the organizer and is
// never derived, so the background sync only ever moves planned -> ongoing.
func StatusForDates(start time.Time, now time.Time) ProjectStatus {
	if now.Before(start) {
		return StatusPlanned
	}
	return StatusOngoing
}
