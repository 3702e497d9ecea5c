package models

import "time"

// RegistrationStatus represents registration review states, matching the ENUM in the DB.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// Registration is a pending/decided application for a hackathon. A team
// application carries a non-nil TeamName; an individual application does not.
type Registration struct {
	ID          int                `json:"id" db:"id"`
	HackathonID int                `json:"hackathon_id" db:"hackathon_id"`
	TeamName    *string            `json:"team_name,omitempty" db:"team_name"`
	Status      RegistrationStatus `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// IsTeam reports whether the registration is a team application.
func (r *Registration) IsTeam() bool {
	return r.TeamName != nil && *r.TeamName != ""
}

// Participant is one person's application detail inside a registration.
type Participant struct {
	ID             int       `json:"id" db:"id"`
	RegistrationID int       `json:"registration_id" db:"registration_id"`
	UserID         int       `json:"user_id" db:"user_id"`
	GithubURL      string    `json:"github_url" db:"github_url"`
	College        string    `json:"college" db:"college"`
	Year           string    `json:"year" db:"year"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
