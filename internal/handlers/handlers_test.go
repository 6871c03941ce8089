package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/auth"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/metrics"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db         *gorm.DB
	tokens     *auth.TokenManager
	users      repository.UserRepository
	workspaces repository.WorkspaceRepository
	projects   repository.ProjectRepository
	tasks      repository.TaskRepository

	authService      *services.AuthService
	userService      *services.UserService
	workspaceService *services.WorkspaceService
	projectService   *services.ProjectService
	taskService      *services.TaskService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	m := metrics.New()
	log := zap.NewNop()
	env := &handlerTestEnv{
		db:         db,
		tokens:     auth.NewTokenManager("test-secret", time.Hour),
		users:      repository.NewUserRepository(db),
		workspaces: repository.NewWorkspaceRepository(db),
		projects:   repository.NewProjectRepository(db),
		tasks:      repository.NewTaskRepository(db),
	}
	env.authService = services.NewAuthService(env.users, env.tokens, nil)
	env.userService = services.NewUserService(env.users, env.workspaces, env.projects, env.tasks, m, log)
	env.workspaceService = services.NewWorkspaceService(env.workspaces, env.users, m, log)
	env.projectService = services.NewProjectService(env.projects, env.workspaces, env.users)
	env.taskService = services.NewTaskService(env.tasks, env.projects, env.workspaces, services.NewAssignmentResolver(env.users))
	return env
}

func (env *handlerTestEnv) createUser(t *testing.T, name, email string, role models.SystemRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, env.users.Create(context.Background(), user))
	return user
}

// router returns an engine where every request runs as the given user,
// standing in for RequireAuth. A nil user leaves the request anonymous.
func (env *handlerTestEnv) router(as *models.User) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(func(c *gin.Context) {
		if as != nil {
			c.Set(constants.ContextKeyUserID, as.ID)
			c.Set(constants.ContextKeyCaller, as)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body
}
