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
	ErrHostNotFound      = errors.New("host not found")
	ErrHostEmailConflict = errors.New("host email is already in use")
)

type HostRepository interface {
	Create(ctx context.Context, host *models.Host) error
	GetByEmail(ctx context.Context, email string) (*models.Host, error)
	GetByID(ctx context.Context, id int) (*models.Host, error)
}

type postgresHostRepository struct {
	db *sql.DB
}

func NewPostgresHostRepository(db *sql.DB) HostRepository {
	return &postgresHostRepository{db: db}
}

func (r *postgresHostRepository) Create(ctx context.Context, host *models.Host) error {
	query := `
		INSERT INTO hosts (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, host.Name, host.Email, host.PasswordHash).
		Scan(&host.ID, &host.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrHostEmailConflict
		}
		return fmt.Errorf("failed to create host: %w", err)
	}
	return nil
}

func (r *postgresHostRepository) GetByEmail(ctx context.Context, email string) (*models.Host, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM hosts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *postgresHostRepository) GetByID(ctx context.Context, id int) (*models.Host, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM hosts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresHostRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Host, error) {
	h := &models.Host{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&h.ID, &h.Name, &h.Email, &h.PasswordHash, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHostNotFound
		}
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return h, nil
}
