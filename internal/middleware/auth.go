package middleware

import (
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseToken(token string) (*util.Claims, error)
}

// AuthMiddleware opens a session for a valid bearer token, attaches it to the
// request context and closes it once the handler chain returns.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			logger.Log.Debug("Rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		sess := session.FromClaims(claims)
		defer sess.Close()

		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

// RoleMiddleware admits sessions holding one of roles. Admins are always
// admitted.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c.Request.Context())
		if !sess.Active() {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := sess.IsAdmin()
		for _, role := range roles {
			if sess.Role() == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
