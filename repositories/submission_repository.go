package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sketcher2345/hackathon-platform/models"
)

// SubmissionExportRow is one exported submission line with its joined team
// data, shaped for the CSV export.
type SubmissionExportRow struct {
	Title        string
	TeamName     string
	GithubURL    string
	About        string
	Problem      string
	TechStacks   []string
	AIScore      *float64
	MemberEmails []string
	CreatedAt    time.Time
}

type SubmissionRepository interface {
	// ListExportRowsByHackathon returns submission export rows for teams of
	// the given hackathon, provided it is owned by hostID.
	ListExportRowsByHackathon(ctx context.Context, hackathonID, hostID int) ([]SubmissionExportRow, error)
	ListSummariesByHackathon(ctx context.Context, hackathonID, hostID int) ([]models.SubmissionSummary, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) ListExportRowsByHackathon(ctx context.Context, hackathonID, hostID int) ([]SubmissionExportRow, error) {
	query := `
		SELECT
			s.title, t.name, s.github_url, s.about, s.problem, s.tech_stacks, s.ai_score,
			COALESCE(array_agg(u.email ORDER BY m.id) FILTER (WHERE u.id IS NOT NULL), '{}'),
			s.created_at
		FROM project_submissions s
		JOIN teams t ON s.team_id = t.id
		JOIN hackathons h ON t.hackathon_id = h.id
		LEFT JOIN team_members m ON m.team_id = t.id
		LEFT JOIN users u ON u.id = m.user_id
		WHERE h.id = $1 AND h.host_id = $2
		GROUP BY s.id, s.title, t.name, s.github_url, s.about, s.problem, s.tech_stacks, s.ai_score, s.created_at
		ORDER BY s.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, hackathonID, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission export rows: %w", err)
	}
	defer rows.Close()

	exports := make([]SubmissionExportRow, 0)
	for rows.Next() {
		var row SubmissionExportRow
		if scanErr := rows.Scan(
			&row.Title, &row.TeamName, &row.GithubURL, &row.About, &row.Problem,
			pq.Array(&row.TechStacks), &row.AIScore, pq.Array(&row.MemberEmails), &row.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan submission export row: %w", scanErr)
		}
		exports = append(exports, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return exports, nil
}

func (r *postgresSubmissionRepository) ListSummariesByHackathon(ctx context.Context, hackathonID, hostID int) ([]models.SubmissionSummary, error) {
	query := `
		SELECT s.title, t.id, t.name, s.github_url
		FROM project_submissions s
		JOIN teams t ON s.team_id = t.id
		JOIN hackathons h ON t.hackathon_id = h.id
		WHERE h.id = $1 AND h.host_id = $2
		ORDER BY s.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, hackathonID, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.SubmissionSummary, 0)
	for rows.Next() {
		var s models.SubmissionSummary
		if scanErr := rows.Scan(&s.Title, &s.TeamID, &s.TeamName, &s.GithubURL); scanErr != nil {
			return nil, fmt.Errorf("failed to scan submission summary row: %w", scanErr)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
