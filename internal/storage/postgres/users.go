package postgres

import (
	"context"
	"fmt"

	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.CreateUser"

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, lower($3), $4, $5)
		RETURNING email, created_at`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
	).Scan(&user.Email, &user.CreatedAt)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("%s: %w", op, response.ErrExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	user, err := s.scanUser(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.GetUserByEmail"

	user, err := s.scanUser(ctx, `WHERE email = lower($1)`, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) scanUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	var role string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users `+where, arg).
		Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&role,
			&user.CreatedAt,
		)
	if err != nil {
		if notFound(err) {
			return nil, response.ErrNotFound
		}
		return nil, err
	}

	user.Role = models.Role(role)

	return &user, nil
}
