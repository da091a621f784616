package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"conreach/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) FindIDByPhone(ctx context.Context, phone string) (string, error) {
	query := `SELECT id FROM users WHERE phone = $1 ORDER BY created_at LIMIT 1`
	return r.findID(ctx, query, phone)
}

func (r *userRepository) FindIDByEmail(ctx context.Context, email string) (string, error) {
	query := `SELECT id FROM users WHERE lower(email) = $1 ORDER BY created_at LIMIT 1`
	return r.findID(ctx, query, email)
}

func (r *userRepository) findID(ctx context.Context, query, arg string) (string, error) {
	var id string
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
