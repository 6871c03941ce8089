package constants

const (
	// ContextKeyUserID is the key under which the caller id is stored in
	// the session and in the gin context.
	ContextKeyUserID = "user_id"

	// ContextKeyCaller holds the loaded *models.User of the caller.
	ContextKeyCaller = "caller"

	SessionCookieName = "taskflow_session"

	MinPasswordLength = 6

	DefaultWorkspaceName        = "My Workspace"
	DefaultWorkspaceDescription = "Default workspace"
	DefaultProjectColor         = "#3b82f6"

	MaxUserNameLength             = 60
	MaxWorkspaceNameLength        = 100
	MaxWorkspaceDescriptionLength = 500
	MaxProjectNameLength          = 100
	MaxProjectDescriptionLength   = 1000
	MaxTaskTitleLength            = 200
	MaxTaskDescriptionLength      = 2000

	// MembershipWriteAttempts bounds the add-member write/verify cycle.
	MembershipWriteAttempts = 2
)
