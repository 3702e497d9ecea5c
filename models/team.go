package models

import "time"

// Team is an official team record, created only by registration approval or
// by the formed-teams import.
type Team struct {
	ID          int       `json:"id" db:"id"`
	HackathonID int       `json:"hackathon_id" db:"hackathon_id"`
	Name        string    `json:"name" db:"name"`
	Rank        *int      `json:"rank,omitempty" db:"rank"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

// TeamMember links a team to a user.
type TeamMember struct {
	ID     int `json:"id" db:"id"`
	TeamID int `json:"team_id" db:"team_id"`
	UserID int `json:"user_id" db:"user_id"`

	User *User `json:"user,omitempty" db:"-"`
}
