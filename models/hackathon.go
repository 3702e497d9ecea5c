package models

import "time"

// HackathonStatus represents hackathon lifecycle states, matching the ENUM in the DB.
type HackathonStatus string

const (
	StatusUpcoming HackathonStatus = "UPCOMING"
	StatusLive     HackathonStatus = "LIVE"
	StatusEnded    HackathonStatus = "ENDED"
)

// Hackathon represents a hackathon event owned by a single host.
type Hackathon struct {
	ID                   int             `json:"id" db:"id"`
	HostID               int             `json:"host_id" db:"host_id"`
	Name                 string          `json:"name" db:"name"`
	Body                 string          `json:"body" db:"body"`
	TeamSize             int             `json:"team_size" db:"team_size"`
	StartDate            time.Time       `json:"start_date" db:"start_date"`
	DurationHours        int             `json:"duration_hours" db:"duration_hours"`
	RegistrationDeadline time.Time       `json:"registration_deadline" db:"registration_deadline"`
	SupportEmail         string          `json:"support_email" db:"support_email"`
	IsRegistrationOpen   bool            `json:"is_registration_open" db:"is_registration_open"`
	Status               HackathonStatus `json:"status" db:"status"`
	ActualStartTime      *time.Time      `json:"actual_start_time,omitempty" db:"actual_start_time"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`

	LogoKey   *string `json:"-" db:"logo_key"`
	BannerKey *string `json:"-" db:"banner_key"`
	LogoURL   *string `json:"logo_url,omitempty" db:"-"`
	BannerURL *string `json:"banner_url,omitempty" db:"-"`
}
