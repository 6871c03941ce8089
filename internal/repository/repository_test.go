package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.Options(logger.Silent))
	require.NoError(t, err)
	return db, mock
}

func TestWorkspaceDelete_RemovesTasksThenProjectsThenWorkspace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tasks" WHERE workspace_id = $1`)).
		WithArgs("ws-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "projects" WHERE workspace_id = $1`)).
		WithArgs("ws-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "workspaces" WHERE id = $1`)).
		WithArgs("ws-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "ws-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceDelete_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tasks" WHERE workspace_id = $1`)).
		WithArgs("ws-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "projects" WHERE workspace_id = $1`)).
		WithArgs("ws-1").
		WillReturnError(gorm.ErrInvalidDB)
	mock.ExpectRollback()

	require.Error(t, repo.Delete(context.Background(), "ws-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectDelete_RemovesTasksFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tasks" WHERE project_id = $1`)).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "projects" WHERE id = $1`)).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "p-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceListForUser_OwnerAndMembers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewWorkspaceRepository(db)

	owner := "0b7e4c52-7a55-4c8b-9d1e-2a0f3c9d1e01"
	member := "0b7e4c52-7a55-4c8b-9d1e-2a0f3c9d1e02"
	outsider := "0b7e4c52-7a55-4c8b-9d1e-2a0f3c9d1e03"

	owned := &models.Workspace{Name: "Owned", OwnerID: owner}
	require.NoError(t, repo.Create(ctx, owned))

	shared := &models.Workspace{
		Name:    "Shared",
		OwnerID: outsider,
		Members: []models.WorkspaceMember{{User: models.RefTo(owner), Role: models.WorkspaceRoleMember, JoinedAt: time.Now()}},
	}
	require.NoError(t, repo.Create(ctx, shared))

	resolved := &models.Workspace{
		Name:    "Resolved",
		OwnerID: outsider,
		Members: []models.WorkspaceMember{{
			User: models.UserRef{ID: member, User: &models.UserSummary{ID: member, Name: "M"}},
			Role: models.WorkspaceRoleViewer,
		}},
	}
	require.NoError(t, repo.Create(ctx, resolved))

	got, err := repo.ListForUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = repo.ListForUser(ctx, member)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Resolved", got[0].Name)

	mentioning, err := repo.ListMentioning(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mentioning, 1)
	require.Equal(t, "Shared", mentioning[0].Name)
}

func TestWorkspaceUpdateMembers_PersistsList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewWorkspaceRepository(db)

	ws := &models.Workspace{Name: "WS", OwnerID: "owner"}
	require.NoError(t, repo.Create(ctx, ws))

	members := []models.WorkspaceMember{{User: models.RefTo("someone"), Role: models.WorkspaceRoleAdmin, JoinedAt: time.Now()}}
	require.NoError(t, repo.UpdateMembers(ctx, ws.ID, members))

	reloaded, err := repo.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Members, 1)
	require.Equal(t, "someone", reloaded.Members[0].User.RawID())
	require.Equal(t, models.WorkspaceRoleAdmin, reloaded.Members[0].Role)
}

func TestStaleUpdates_LeaveMemberListsAlone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	workspaces := NewWorkspaceRepository(db)
	projects := NewProjectRepository(db)

	ws := &models.Workspace{Name: "WS", OwnerID: "owner"}
	require.NoError(t, workspaces.Create(ctx, ws))
	project := &models.Project{
		Name: "P", WorkspaceID: ws.ID, CreatedByID: "owner",
		Status: models.ProjectStatusPlanning, Priority: models.PriorityMedium,
	}
	require.NoError(t, projects.Create(ctx, project))

	staleWS, err := workspaces.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	staleProject, err := projects.FindByID(ctx, project.ID)
	require.NoError(t, err)

	require.NoError(t, workspaces.UpdateMembers(ctx, ws.ID, []models.WorkspaceMember{{User: models.RefTo("late"), Role: models.WorkspaceRoleMember}}))
	require.NoError(t, projects.UpdateMembers(ctx, project.ID, []models.ProjectMember{{User: models.RefTo("late"), Role: models.ProjectRoleMember}}))

	staleWS.Name = "Renamed"
	require.NoError(t, workspaces.Update(ctx, staleWS))
	staleProject.Status = models.ProjectStatusActive
	require.NoError(t, projects.Update(ctx, staleProject))

	reloadedWS, err := workspaces.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", reloadedWS.Name)
	require.Len(t, reloadedWS.Members, 1)

	reloadedProject, err := projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusActive, reloadedProject.Status)
	require.Len(t, reloadedProject.Members, 1)
}

func TestTaskList_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewTaskRepository(db)

	create := func(title, ws, project string, status models.TaskStatus) {
		require.NoError(t, repo.Create(ctx, &models.Task{
			Title: title, WorkspaceID: ws, ProjectID: project,
			Status: status, Priority: models.PriorityMedium, CreatedByID: "u",
		}))
	}
	create("a", "ws1", "p1", models.TaskStatusTodo)
	create("b", "ws1", "p2", models.TaskStatusCompleted)
	create("c", "ws2", "p3", models.TaskStatusTodo)

	all, err := repo.List(ctx, TaskFilter{WorkspaceIDs: []string{"ws1"}})
	require.NoError(t, err)
	require.Len(t, all, 2)

	project := "p2"
	byProject, err := repo.List(ctx, TaskFilter{WorkspaceIDs: []string{"ws1", "ws2"}, ProjectID: &project})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	require.NotNil(t, byProject[0].CompletedAt)

	status := models.TaskStatusTodo
	byStatus, err := repo.List(ctx, TaskFilter{WorkspaceIDs: []string{"ws1", "ws2"}, Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	none, err := repo.List(ctx, TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestProjectDeleteCreatedBy(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	projects := NewProjectRepository(db)
	tasks := NewTaskRepository(db)

	mine := &models.Project{Name: "Mine", WorkspaceID: "ws", CreatedByID: "u1"}
	theirs := &models.Project{Name: "Theirs", WorkspaceID: "ws", CreatedByID: "u2"}
	require.NoError(t, projects.Create(ctx, mine))
	require.NoError(t, projects.Create(ctx, theirs))
	require.NoError(t, tasks.Create(ctx, &models.Task{Title: "t", ProjectID: mine.ID, WorkspaceID: "ws", CreatedByID: "u2"}))

	n, err := projects.DeleteCreatedBy(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	left, err := tasks.List(ctx, TaskFilter{WorkspaceIDs: []string{"ws"}})
	require.NoError(t, err)
	require.Empty(t, left)

	_, err = projects.FindByID(ctx, theirs.ID)
	require.NoError(t, err)
}
