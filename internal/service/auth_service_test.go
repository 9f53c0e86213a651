package service

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	return NewAuthService(newMemStore(), cfg)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "Ada@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "password1", user.Password)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	res, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	me, err := svc.CurrentUser(session.NewContext(ctx, session.FromClaims(claims)))
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, util.ErrNotAuthenticated)
}
