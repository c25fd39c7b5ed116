package models

import "time"

// SearchQuery carries the raw filter flags of the participant/project search.
// Nil or zero-valued fields contribute no filter stage.
type SearchQuery struct {
	Role        *UserRole
	Available   *bool
	InputText   string
	Status      *ProjectStatus
	MaxTeamSize *int
	From        *time.Time
	To          *time.Time
}

// SearchResult is the combined payload of the two-collection search.
type SearchResult struct {
	Users    []User    `json:"users"`
	Projects []Project `json:"projects"`
}
