package models

import (
	"time"

	"github.com/lib/pq"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleOrganizer UserRole = "organizer"
)

// User is the single canonical identity model. Students carry an enrollment
// number, organizers never do; the database enforces both uniqueness sets.
type User struct {
	ID               int            `json:"id"`
	Username         string         `json:"username"`
	Email            string         `json:"email"`
	EnrollmentNumber *string        `json:"enrollmentNumber,omitempty"`
	Role             UserRole       `json:"role"`
	PasswordHash     string         `json:"-"`
	Verified         bool           `json:"verified"`
	VerifyCodeHash   *string        `json:"-"`
	VerifyCodeSentAt *time.Time     `json:"-"`
	FullName         string         `json:"fullName"`
	Bio              *string        `json:"bio,omitempty"`
	Skills           pq.StringArray `json:"skills"`
	GithubURL        *string        `json:"githubUrl,omitempty"`
	LinkedinURL      *string        `json:"linkedinUrl,omitempty"`
	PortfolioURL     *string        `json:"portfolioUrl,omitempty"`
	Available        bool           `json:"available"`
	AvatarKey        *string        `json:"-"`
	AvatarURL        *string        `json:"avatarUrl,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// Suggestion is the minimal projection returned by the typeahead endpoint.
type Suggestion struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}
