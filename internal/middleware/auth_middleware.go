package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "timesheet/backend/internal/errors"
	"timesheet/backend/internal/model"
	"timesheet/backend/internal/service"
)

const (
	UserIDContextKey = "userID"
	UserContextKey   = "user"
)

// Auth resolves the Bearer token to a stored user and puts both the user
// and its id into the request context.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			writeError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		user, apiErr := authService.Authenticate(c.Request.Context(), token)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}

		c.Set(UserIDContextKey, user.ID)
		c.Set(UserContextKey, *user)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			writeError(c, apperrors.Unauthorized(""))
			return
		}
		if !user.IsAdmin() {
			writeError(c, apperrors.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(UserIDContextKey)
}

func CurrentUser(c *gin.Context) (model.User, bool) {
	value, ok := c.Get(UserContextKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := value.(model.User)
	return user, ok
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}
