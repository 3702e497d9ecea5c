package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sketcher2345/hackathon-platform/models"
)

var (
	ErrRegistrationNotFound       = errors.New("registration not found or access denied")
	ErrRegistrationAlreadyDecided = errors.New("registration has already been decided")
)

type RegistrationRepository interface {
	// GetByIDForHost loads a registration with its participants and their
	// users, requiring the owning hackathon's host to match.
	GetByIDForHost(ctx context.Context, id, hostID int) (*models.Registration, error)
	ListPendingByHackathon(ctx context.Context, hackathonID int) ([]*models.Registration, error)
	// ListApprovedIndividuals returns approved individual registrations
	// (team_name IS NULL) with participants and users.
	ListApprovedIndividuals(ctx context.Context, exec SQLExecutor, hackathonID int) ([]*models.Registration, error)
	// UpdateStatusFromPending flips status only when the current status is
	// PENDING, so a registration can be decided at most once.
	UpdateStatusFromPending(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) GetByIDForHost(ctx context.Context, id, hostID int) (*models.Registration, error) {
	query := `
		SELECT r.id, r.hackathon_id, r.team_name, r.status, r.created_at
		FROM registrations r
		JOIN hackathons h ON r.hackathon_id = h.id
		WHERE r.id = $1 AND h.host_id = $2`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id, hostID).Scan(
		&reg.ID, &reg.HackathonID, &reg.TeamName, &reg.Status, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	participants, err := r.listParticipants(ctx, nil, []int{reg.ID})
	if err != nil {
		return nil, err
	}
	reg.Participants = participants[reg.ID]
	return reg, nil
}

func (r *postgresRegistrationRepository) ListPendingByHackathon(ctx context.Context, hackathonID int) ([]*models.Registration, error) {
	return r.listByStatus(ctx, nil, hackathonID, models.RegistrationPending, false)
}

func (r *postgresRegistrationRepository) ListApprovedIndividuals(ctx context.Context, exec SQLExecutor, hackathonID int) ([]*models.Registration, error) {
	return r.listByStatus(ctx, exec, hackathonID, models.RegistrationApproved, true)
}

func (r *postgresRegistrationRepository) listByStatus(ctx context.Context, exec SQLExecutor, hackathonID int, status models.RegistrationStatus, individualsOnly bool) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)

	query := `
		SELECT id, hackathon_id, team_name, status, created_at
		FROM registrations
		WHERE hackathon_id = $1 AND status = $2`
	if individualsOnly {
		query += ` AND team_name IS NULL`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := executor.QueryContext(ctx, query, hackathonID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(&reg.ID, &reg.HackathonID, &reg.TeamName, &reg.Status, &reg.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		registrations = append(registrations, &reg)
		ids = append(ids, reg.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return registrations, nil
	}

	participants, err := r.listParticipants(ctx, exec, ids)
	if err != nil {
		return nil, err
	}
	for _, reg := range registrations {
		reg.Participants = participants[reg.ID]
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) listParticipants(ctx context.Context, exec SQLExecutor, registrationIDs []int) (map[int][]models.Participant, error) {
	executor := r.getExecutor(exec)

	query := `
		SELECT
			p.id, p.registration_id, p.user_id, p.github_url, p.college, p.year, p.created_at,
			u.id, u.name, u.email, u.created_at
		FROM registration_participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.registration_id = ANY($1)
		ORDER BY p.created_at ASC`

	rows, err := executor.QueryContext(ctx, query, pq.Array(registrationIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list registration participants: %w", err)
	}
	defer rows.Close()

	result := make(map[int][]models.Participant)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if scanErr := rows.Scan(
			&p.ID, &p.RegistrationID, &p.UserID, &p.GithubURL, &p.College, &p.Year, &p.CreatedAt,
			&u.ID, &u.Name, &u.Email, &u.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		p.User = &u
		result[p.RegistrationID] = append(result[p.RegistrationID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRegistrationRepository) UpdateStatusFromPending(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE id = $2 AND status = $3`

	result, err := executor.ExecContext(ctx, query, status, id, models.RegistrationPending)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationAlreadyDecided)
}
