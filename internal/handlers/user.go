package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/authz"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

// UserHandler serves the user directory and account deletion.
type UserHandler struct {
	userService *services.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers returns every registered user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	if _, ok := currentCaller(c); !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   dto.ToUserDTOs(users),
	})
}

// DeleteUser removes a user together with their memberships and the
// workspaces and projects they created.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) respondUserError(c *gin.Context, err error) {
	var cascade *services.CascadeError

	switch {
	case errors.Is(err, authz.ErrCannotDeleteSelf):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidOperation, "You cannot delete your own account", nil)
	case errors.Is(err, authz.ErrCannotDeleteAdmin):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidOperation, "Cannot delete another admin user", nil)
	case errors.As(err, &cascade):
		apierrors.OperationFailed(c, "Failed to delete user", gin.H{"failedSteps": cascade.Steps})
	default:
		respondCommonError(c, h.logger, err)
	}
}
