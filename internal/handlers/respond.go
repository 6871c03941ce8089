package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/authz"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

// UserDirectory loads the users referenced by a response.
type UserDirectory interface {
	Directory(ctx context.Context, ids []string) (map[string]models.User, error)
}

func currentCaller(c *gin.Context) (*models.User, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return nil, false
	}
	return caller, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

func lookupUsers(c *gin.Context, users UserDirectory, logger *zap.Logger, ids []string) (dto.Directory, bool) {
	dir, err := users.Directory(c.Request.Context(), ids)
	if err != nil {
		logger.Error("failed to resolve users", zap.Error(err))
		apierrors.InternalError(c, "")
		return nil, false
	}
	return dto.Directory(dir), true
}

// respondCommonError maps the errors shared by every handler. Anything it
// does not recognize is logged and reported as a 500 without its text.
func respondCommonError(c *gin.Context, logger *zap.Logger, err error) {
	var denial *authz.Denial
	var validation *services.ValidationError
	var assignees *services.AssigneeError

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.As(err, &denial):
		apierrors.Forbidden(c, denial.Reason)
	case errors.Is(err, authz.ErrForbidden):
		apierrors.Forbidden(c, "")
	case errors.As(err, &validation):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidInput, validation.Message, gin.H{"field": validation.Field})
	case errors.Is(err, services.ErrMissingFields):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeMissingField, "Please provide all required fields", nil)
	case errors.As(err, &assignees):
		apierrors.BadRequestWithCode(c, assigneeCode(assignees.Kind), assignees.Error(), gin.H{"values": assignees.Values})
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrWorkspaceNotFound):
		apierrors.NotFound(c, "Workspace not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

func assigneeCode(kind error) string {
	switch kind {
	case services.ErrUnknownEmails:
		return apierrors.ErrCodeUnknownEmails
	case services.ErrNotWorkspaceMembers:
		return apierrors.ErrCodeNotWorkspaceMembers
	}
	return apierrors.ErrCodeInvalidAssignees
}
