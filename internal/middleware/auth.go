package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/auth"
	"github.com/yukikurage/taskflow-api/internal/constants"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequireAuth identifies the caller from a bearer token or, when no
// Authorization header is sent, from the session cookie. A header that does
// not resolve is rejected without looking at the session. The caller's user
// record is loaded into the context.
func RequireAuth(resolver auth.IdentityResolver, users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c, resolver)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "")
				return
			}
			logger.Error("failed to load caller", zap.String("user_id", userID), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyCaller, user)
		c.Next()
	}
}

func callerID(c *gin.Context, resolver auth.IdentityResolver) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		return resolver.ResolveCallerID(strings.TrimSpace(token))
	}

	session := sessions.Default(c)
	userID, ok := session.Get(constants.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetCaller retrieves the authenticated user loaded by RequireAuth
func GetCaller(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
