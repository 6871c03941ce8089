package membership

import "github.com/yukikurage/taskflow-api/internal/models"

// ProjectMemberIDs returns the canonical ids listed in the project members.
func ProjectMemberIDs(p *models.Project) IDSet {
	set := make(IDSet, len(p.Members))
	for _, m := range p.Members {
		set.add(m.User.RawID())
	}
	return set
}

func ProjectRole(p *models.Project, userID string) (models.ProjectRole, bool) {
	c := CanonicalID(userID)
	for _, m := range p.Members {
		if Canonical(m.User) == c {
			return m.Role, true
		}
	}
	return "", false
}

// AddProjectMember adds the user with the given role unless already listed.
// It reports whether the list changed.
func AddProjectMember(p *models.Project, userID string, role models.ProjectRole) bool {
	if ProjectMemberIDs(p).Has(userID) {
		return false
	}
	if role == "" {
		role = models.ProjectRoleMember
	}
	p.Members = append(p.Members, models.ProjectMember{
		User: models.RefTo(CanonicalID(userID)),
		Role: role,
	})
	return true
}

// StripProjectMember removes the user from the project members.
func StripProjectMember(p *models.Project, userID string) bool {
	c := CanonicalID(userID)
	kept := p.Members[:0:0]
	for _, m := range p.Members {
		if Canonical(m.User) == c {
			continue
		}
		kept = append(kept, m)
	}
	changed := len(kept) != len(p.Members)
	p.Members = kept
	return changed
}

// StripAssignee removes the user from the task's assignees.
func StripAssignee(t *models.Task, userID string) bool {
	c := CanonicalID(userID)
	kept := t.AssignedTo[:0:0]
	for _, ref := range t.AssignedTo {
		if Canonical(ref) == c {
			continue
		}
		kept = append(kept, ref)
	}
	changed := len(kept) != len(t.AssignedTo)
	t.AssignedTo = kept
	return changed
}
