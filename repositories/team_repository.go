package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sketcher2345/hackathon-platform/models"
)

var (
	ErrTeamNotFound         = errors.New("team not found in this hackathon")
	ErrTeamInvalidHackathon = errors.New("invalid hackathon reference")
	ErrTeamMemberInvalid    = errors.New("invalid team member user reference")
)

// TeamRosterRow is one exported roster line: a team with its members'
// emails and names, in member insertion order.
type TeamRosterRow struct {
	TeamName     string
	MemberEmails []string
	MemberNames  []string
}

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	CreateMembers(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error
	ListRosterByHackathon(ctx context.Context, exec SQLExecutor, hackathonID int) ([]TeamRosterRow, error)
	ResetRanks(ctx context.Context, exec SQLExecutor, hackathonID int) error
	// SetRank updates a single team's rank, conditional on the team belonging
	// to the given hackathon; zero affected rows means a foreign or missing
	// team id and must abort the caller's transaction.
	SetRank(ctx context.Context, exec SQLExecutor, teamID, hackathonID, rank int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (hackathon_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, team.HackathonID, team.Name).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamInvalidHackathon
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) CreateMembers(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error {
	if len(userIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	valueClauses := make([]string, 0, len(userIDs))
	args := make([]interface{}, 0, len(userIDs)+1)
	args = append(args, teamID)
	for i, userID := range userIDs {
		valueClauses = append(valueClauses, fmt.Sprintf("($1, $%d)", i+2))
		args = append(args, userID)
	}

	query := `INSERT INTO team_members (team_id, user_id) VALUES ` + strings.Join(valueClauses, ", ")
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamMemberInvalid
		}
		return fmt.Errorf("failed to create team members: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ListRosterByHackathon(ctx context.Context, exec SQLExecutor, hackathonID int) ([]TeamRosterRow, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			t.name,
			COALESCE(array_agg(u.email ORDER BY m.id) FILTER (WHERE u.id IS NOT NULL), '{}'),
			COALESCE(array_agg(u.name ORDER BY m.id) FILTER (WHERE u.id IS NOT NULL), '{}')
		FROM teams t
		LEFT JOIN team_members m ON m.team_id = t.id
		LEFT JOIN users u ON u.id = m.user_id
		WHERE t.hackathon_id = $1
		GROUP BY t.id, t.name
		ORDER BY t.id ASC`

	rows, err := executor.QueryContext(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team roster: %w", err)
	}
	defer rows.Close()

	roster := make([]TeamRosterRow, 0)
	for rows.Next() {
		var row TeamRosterRow
		if scanErr := rows.Scan(&row.TeamName, pq.Array(&row.MemberEmails), pq.Array(&row.MemberNames)); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		roster = append(roster, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return roster, nil
}

func (r *postgresTeamRepository) ResetRanks(ctx context.Context, exec SQLExecutor, hackathonID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET rank = NULL WHERE hackathon_id = $1`
	if _, err := executor.ExecContext(ctx, query, hackathonID); err != nil {
		return fmt.Errorf("failed to reset team ranks: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) SetRank(ctx context.Context, exec SQLExecutor, teamID, hackathonID, rank int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET rank = $1 WHERE id = $2 AND hackathon_id = $3`
	result, err := executor.ExecContext(ctx, query, rank, teamID, hackathonID)
	if err != nil {
		return fmt.Errorf("failed to set team rank: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
