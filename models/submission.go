package models

import "time"

// ProjectSubmission is a team's project entry. Submissions are produced by the
// participant-facing flow and only read here for export and winner selection.
type ProjectSubmission struct {
	ID         int       `json:"id" db:"id"`
	TeamID     int       `json:"team_id" db:"team_id"`
	Title      string    `json:"title" db:"title"`
	GithubURL  string    `json:"github_url" db:"github_url"`
	About      string    `json:"about" db:"about"`
	Problem    string    `json:"problem" db:"problem"`
	TechStacks []string  `json:"tech_stacks" db:"tech_stacks"`
	AIScore    *float64  `json:"ai_score,omitempty" db:"ai_score"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// SubmissionSummary is the slim view served to the winner-selection UI.
type SubmissionSummary struct {
	Title     string `json:"title"`
	TeamID    int    `json:"team_id"`
	TeamName  string `json:"team_name"`
	GithubURL string `json:"github_url"`
}
