package middleware

import (
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser map[string]*util.Claims

func (p stubParser) ParseToken(token string) (*util.Claims, error) {
	if c, ok := p[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func TestAuthMiddleware_SessionLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	parser := stubParser{
		"student": {UserID: 1, Role: model.Student},
		"admin":   {UserID: 2, Role: model.Admin},
	}

	var seen *session.Session
	r := gin.New()
	r.Use(AuthMiddleware(parser))
	r.GET("/me", func(c *gin.Context) {
		sess, err := session.Require(c.Request.Context())
		require.NoError(t, err)
		seen = sess
		c.Status(http.StatusOK)
	})
	r.GET("/admin", RoleMiddleware(model.Admin), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do("/me", ""))
	assert.Equal(t, http.StatusUnauthorized, do("/me", "forged"))

	assert.Equal(t, http.StatusOK, do("/me", "student"))
	require.NotNil(t, seen)
	assert.Equal(t, uint(1), seen.UserID())
	assert.False(t, seen.Active(), "session must be closed after the request")

	assert.Equal(t, http.StatusForbidden, do("/admin", "student"))
	assert.Equal(t, http.StatusOK, do("/admin", "admin"))
}
