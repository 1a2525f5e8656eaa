// Package session keeps login sessions in Redis. Keys hold a hash of the
// token, never the token itself.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skyvision-booking/pkg/response"
)

const tokenBytes = 32

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}

// Create issues a fresh token for userID and returns it with its expiry.
func (s *Store) Create(ctx context.Context, userID string) (string, time.Time, error) {
	const op = "session.Store.Create"

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.client.Set(ctx, key(token), userID, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, time.Now().Add(s.ttl), nil
}

// Get resolves a token to its user id.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	const op = "session.Store.Get"

	if token == "" {
		return "", fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	userID, err := s.client.Get(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return userID, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	const op = "session.Store.Delete"

	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
