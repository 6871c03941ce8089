package membership

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskflow-api/internal/models"
)

func TestProjectMembers(t *testing.T) {
	creator := uuid.NewString()
	other := uuid.NewString()
	p := &models.Project{ID: uuid.NewString()}

	assert.True(t, AddProjectMember(p, creator, models.ProjectRoleManager))
	assert.False(t, AddProjectMember(p, creator, models.ProjectRoleViewer))
	assert.True(t, AddProjectMember(p, other, ""))

	role, ok := ProjectRole(p, creator)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectRoleManager, role)

	role, ok = ProjectRole(p, other)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectRoleMember, role)

	assert.True(t, StripProjectMember(p, creator))
	assert.False(t, ProjectMemberIDs(p).Has(creator))
	assert.Len(t, p.Members, 1)
}

func TestStripAssignee(t *testing.T) {
	a := uuid.NewString()
	b := uuid.NewString()
	task := &models.Task{AssignedTo: []models.UserRef{
		models.RefTo(a),
		models.ResolvedRef(&models.User{ID: b}),
	}}

	assert.True(t, StripAssignee(task, b))
	assert.False(t, StripAssignee(task, b))
	assert.Len(t, task.AssignedTo, 1)
	assert.Equal(t, a, Canonical(task.AssignedTo[0]))
}
