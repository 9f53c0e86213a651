// Package session holds the identity of the caller for the lifetime of a
// request. The auth middleware opens a Session, attaches it to the request
// context and closes it once the handler chain returns; services read the
// caller only through Require.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"course_backend/internal/model"
	"course_backend/internal/util"
)

type Session struct {
	userID    uint
	email     string
	role      model.UserRole
	startedAt time.Time
	closed    atomic.Bool
}

type ctxKey struct{}

func New(userID uint, email string, role model.UserRole) *Session {
	return &Session{
		userID:    userID,
		email:     email,
		role:      role,
		startedAt: time.Now(),
	}
}

// FromClaims opens a session for a verified token.
func FromClaims(c *util.Claims) *Session {
	return New(c.UserID, c.Email, c.Role)
}

func (s *Session) UserID() uint { return s.userID }
func (s *Session) Email() string { return s.email }
func (s *Session) Role() model.UserRole { return s.role }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) IsAdmin() bool { return s.role == model.Admin }
func (s *Session) Active() bool { return s != nil && !s.closed.Load() && s.userID != 0 }

// Close ends the session. Further Require calls against it fail.
func (s *Session) Close() {
	if s != nil {
		s.closed.Store(true)
	}
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Require returns the active session of ctx or ErrNotAuthenticated.
func Require(ctx context.Context) (*Session, error) {
	s := FromContext(ctx)
	if !s.Active() {
		return nil, util.ErrNotAuthenticated
	}
	return s, nil
}

// RequireAdmin is Require restricted to administrators.
func RequireAdmin(ctx context.Context) (*Session, error) {
	s, err := Require(ctx)
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, util.ErrForbidden
	}
	return s, nil
}
