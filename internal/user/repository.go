package user

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	PointsBalance(ctx context.Context, id string) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getWhere(ctx, "id", id)
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return r.getWhere(ctx, "phone", phone)
}

func (r *repository) getWhere(ctx context.Context, col, val string) (*User, error) {
	q := `
		SELECT id, name, phone, email, password_hash, points_balance, created_at
		FROM users
		WHERE ` + col + ` = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, q, val).Scan(
		&u.ID, &u.Name, &u.Phone, &u.Email, &u.PasswordHash, &u.PointsBalance, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) PointsBalance(ctx context.Context, id string) (int, error) {
	const q = `SELECT points_balance FROM users WHERE id = $1`

	var balance int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	return balance, nil
}
