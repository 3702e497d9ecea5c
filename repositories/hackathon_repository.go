package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sketcher2345/hackathon-platform/models"
)

var (
	// ErrHackathonNotFound covers both a missing hackathon and one owned by
	// another host. The two cases are deliberately indistinguishable so that
	// existence of other hosts' events never leaks.
	ErrHackathonNotFound           = errors.New("hackathon not found or access denied")
	ErrHackathonNotUpcoming        = errors.New("hackathon is not in the upcoming state")
	ErrHackathonRegistrationClosed = errors.New("registration is already closed")
	ErrHackathonInvalidHost        = errors.New("invalid host reference")
)

// UpdateHackathonParams names exactly the fields a host may change after
// creation. A nil field is left untouched. Logo and banner keys move through
// their own methods.
type UpdateHackathonParams struct {
	Name                 *string
	Body                 *string
	TeamSize             *int
	StartDate            *time.Time
	DurationHours        *int
	RegistrationDeadline *time.Time
	SupportEmail         *string
}

type HackathonRepository interface {
	Create(ctx context.Context, h *models.Hackathon) error
	GetByIDForHost(ctx context.Context, exec SQLExecutor, id, hostID int) (*models.Hackathon, error)
	ListByHost(ctx context.Context, hostID int) ([]models.Hackathon, error)
	UpdateDetails(ctx context.Context, id, hostID int, params UpdateHackathonParams) error
	StartIfUpcoming(ctx context.Context, id, hostID int, startedAt time.Time) error
	CloseRegistration(ctx context.Context, exec SQLExecutor, id, hostID int) error
	SetStatus(ctx context.Context, exec SQLExecutor, id int, status models.HackathonStatus) error
	UpdateLogoKey(ctx context.Context, id int, key *string) error
	UpdateBannerKey(ctx context.Context, id int, key *string) error
}

type postgresHackathonRepository struct {
	db *sql.DB
}

func NewPostgresHackathonRepository(db *sql.DB) HackathonRepository {
	return &postgresHackathonRepository{db: db}
}

func (r *postgresHackathonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const hackathonColumns = `
	id, host_id, name, body, team_size, start_date, duration_hours,
	registration_deadline, support_email, is_registration_open, status,
	actual_start_time, logo_key, banner_key, created_at`

func scanHackathon(row interface{ Scan(dest ...interface{}) error }, h *models.Hackathon) error {
	return row.Scan(
		&h.ID, &h.HostID, &h.Name, &h.Body, &h.TeamSize, &h.StartDate, &h.DurationHours,
		&h.RegistrationDeadline, &h.SupportEmail, &h.IsRegistrationOpen, &h.Status,
		&h.ActualStartTime, &h.LogoKey, &h.BannerKey, &h.CreatedAt,
	)
}

func (r *postgresHackathonRepository) Create(ctx context.Context, h *models.Hackathon) error {
	query := `
		INSERT INTO hackathons (
			host_id, name, body, team_size, start_date, duration_hours,
			registration_deadline, support_email, is_registration_open, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.HostID, h.Name, h.Body, h.TeamSize, h.StartDate, h.DurationHours,
		h.RegistrationDeadline, h.SupportEmail, h.IsRegistrationOpen, h.Status,
	).Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "hackathons_host_id_fkey" {
				return ErrHackathonInvalidHost
			}
		}
		return fmt.Errorf("failed to create hackathon: %w", err)
	}
	return nil
}

func (r *postgresHackathonRepository) GetByIDForHost(ctx context.Context, exec SQLExecutor, id, hostID int) (*models.Hackathon, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + hackathonColumns + ` FROM hackathons WHERE id = $1 AND host_id = $2`

	h := &models.Hackathon{}
	if err := scanHackathon(executor.QueryRowContext(ctx, query, id, hostID), h); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon: %w", err)
	}
	return h, nil
}

func (r *postgresHackathonRepository) ListByHost(ctx context.Context, hostID int) ([]models.Hackathon, error) {
	query := `SELECT` + hackathonColumns + ` FROM hackathons WHERE host_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	defer rows.Close()

	hackathons := make([]models.Hackathon, 0)
	for rows.Next() {
		var h models.Hackathon
		if scanErr := scanHackathon(rows, &h); scanErr != nil {
			return nil, fmt.Errorf("failed to scan hackathon row: %w", scanErr)
		}
		hackathons = append(hackathons, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return hackathons, nil
}

func (r *postgresHackathonRepository) UpdateDetails(ctx context.Context, id, hostID int, params UpdateHackathonParams) error {
	setClauses := ""
	args := []interface{}{}
	argID := 1

	addSet := func(column string, value interface{}) {
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += fmt.Sprintf("%s = $%d", column, argID)
		args = append(args, value)
		argID++
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Body != nil {
		addSet("body", *params.Body)
	}
	if params.TeamSize != nil {
		addSet("team_size", *params.TeamSize)
	}
	if params.StartDate != nil {
		addSet("start_date", *params.StartDate)
	}
	if params.DurationHours != nil {
		addSet("duration_hours", *params.DurationHours)
	}
	if params.RegistrationDeadline != nil {
		addSet("registration_deadline", *params.RegistrationDeadline)
	}
	if params.SupportEmail != nil {
		addSet("support_email", *params.SupportEmail)
	}

	if setClauses == "" {
		// Nothing to change; still verify existence and ownership.
		_, err := r.GetByIDForHost(ctx, nil, id, hostID)
		return err
	}

	query := fmt.Sprintf("UPDATE hackathons SET %s WHERE id = $%d AND host_id = $%d", setClauses, argID, argID+1)
	args = append(args, id, hostID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update hackathon: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

// StartIfUpcoming performs the UPCOMING -> LIVE transition as a single
// conditional update, so two concurrent starts can only succeed once.
func (r *postgresHackathonRepository) StartIfUpcoming(ctx context.Context, id, hostID int, startedAt time.Time) error {
	query := `
		UPDATE hackathons
		SET status = $1, actual_start_time = $2
		WHERE id = $3 AND host_id = $4 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		models.StatusLive, startedAt, id, hostID, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to start hackathon: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonNotUpcoming)
}

// CloseRegistration flips is_registration_open conditionally; zero affected
// rows means the hackathon is missing, foreign, or already closed.
func (r *postgresHackathonRepository) CloseRegistration(ctx context.Context, exec SQLExecutor, id, hostID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE hackathons
		SET is_registration_open = FALSE
		WHERE id = $1 AND host_id = $2 AND is_registration_open = TRUE`

	result, err := executor.ExecContext(ctx, query, id, hostID)
	if err != nil {
		return fmt.Errorf("failed to close registration: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonRegistrationClosed)
}

func (r *postgresHackathonRepository) SetStatus(ctx context.Context, exec SQLExecutor, id int, status models.HackathonStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE hackathons SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update hackathon status: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) UpdateLogoKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE hackathons SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to update hackathon logo key: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) UpdateBannerKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE hackathons SET banner_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to update hackathon banner key: %w", err)
	}
	return checkAffectedRows(result, ErrHackathonNotFound)
}
