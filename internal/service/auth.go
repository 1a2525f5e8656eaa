package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"skyvision-booking/api"
	"skyvision-booking/internal/auth"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

func (s *Service) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	const op = "service.Register"

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))

	resp := toUserResponse(user)
	return &resp, nil
}

// Login checks credentials and opens a session. Attempts are throttled per email
// and client key; a successful login clears the counter.
func (s *Service) Login(ctx context.Context, req *api.LoginRequest, clientKey string) (*api.LoginResponse, error) {
	const op = "service.Login"

	email := strings.ToLower(strings.TrimSpace(req.Email))
	limitKey := email + "|" + clientKey

	allowed, err := s.limiter.Allow(ctx, limitKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		return nil, fmt.Errorf("%s: %w", op, response.ErrTooManyRequests)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, response.ErrInvalidCredentials) {
			s.log.Error("stored password hash is unusable", slog.String("user_id", user.ID), sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidCredentials)
	}

	if err := s.limiter.Reset(ctx, limitKey); err != nil {
		s.log.Warn("failed to reset login limiter", sl.Err(err))
	}

	token, expires, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_id", user.ID))

	return &api.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      toUserResponse(user),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.Logout"

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Authenticate resolves a session token to the caller. Sessions of deleted users
// are unauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	const op = "service.Authenticate"

	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return models.Principal{}, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
		}
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Admin:  user.Role == models.RoleAdmin,
	}, nil
}

func (s *Service) Me(ctx context.Context, p models.Principal) (*api.UserResponse, error) {
	const op = "service.Me"

	user, err := s.store.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	const op = "service.EnsureAdmin"

	if email == "" || password == "" {
		return nil
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, response.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.createUser(ctx, name, email, password, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, response.ErrExists) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("admin account created", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.opts.PasswordParams)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func toUserResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
