package models

import "time"

// MemberStatus mirrors the member_status ENUM in the database.
type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberAccepted MemberStatus = "accepted"
)

// Team is a participant team registered for a project.
type Team struct {
	ID          int          `json:"id"`
	ProjectID   int          `json:"projectId"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	LeaderID    int          `json:"leaderId"`
	CreatedAt   time.Time    `json:"createdAt"`
	Members     []TeamMember `json:"members,omitempty"`
}

// TeamMember carries the participation status of a single user in a team.
type TeamMember struct {
	TeamID   int          `json:"-"`
	UserID   int          `json:"userId"`
	Username string       `json:"username"`
	FullName string       `json:"fullName"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joinedAt"`
}
