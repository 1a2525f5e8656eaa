package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyvision-booking/api"
	"skyvision-booking/pkg/response"
)

func TestRegisterLoginAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, &api.RegisterRequest{
		Name:     "Carol",
		Email:    "Carol@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, "user", user.Role)

	_, err = f.svc.Register(ctx, &api.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "other-pass"})
	require.ErrorIs(t, err, response.ErrExists)

	login, err := f.svc.Login(ctx, &api.LoginRequest{Email: "CAROL@example.com", Password: "s3cret-pass"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	p, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.False(t, p.Admin)

	me, err := f.svc.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Carol", me.Name)

	require.NoError(t, f.svc.Logout(ctx, login.Token))

	_, err = f.svc.Authenticate(ctx, login.Token)
	require.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &api.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "carol@example.com", Password: "wrong"}, "k")
	require.ErrorIs(t, err, response.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "nobody@example.com", Password: "wrong"}, "k")
	require.ErrorIs(t, err, response.ErrInvalidCredentials)
}

func TestLoginThrottling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &api.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	for range 3 {
		_, err := f.svc.Login(ctx, &api.LoginRequest{Email: "carol@example.com", Password: "wrong"}, "k")
		require.ErrorIs(t, err, response.ErrInvalidCredentials)
	}

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "carol@example.com", Password: "s3cret-pass"}, "k")
	require.ErrorIs(t, err, response.ErrTooManyRequests)

	_, err = f.svc.Login(ctx, &api.LoginRequest{Email: "carol@example.com", Password: "s3cret-pass"}, "other")
	require.NoError(t, err, "limits are per client key")
	assert.NotContains(t, f.limiter.attempts, "carol@example.com|other", "successful login resets the counter")
}

func TestAuthenticateDeletedUser(t *testing.T) {
	f := newFixture(t)
	f.sessions.tokens["ghost-token"] = "ghost"

	_, err := f.svc.Authenticate(context.Background(), "ghost-token")
	require.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureAdmin(ctx, "Ops", "ops@example.com", "bootstrap-pass"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "Ops", "ops@example.com", "bootstrap-pass"), "second run is a no-op")

	login, err := f.svc.Login(ctx, &api.LoginRequest{Email: "ops@example.com", Password: "bootstrap-pass"}, "k")
	require.NoError(t, err)
	assert.Equal(t, "admin", login.User.Role)

	require.NoError(t, f.svc.EnsureAdmin(ctx, "", "", ""), "unset admin config is skipped")
}
