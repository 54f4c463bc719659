package models

// Team links chat-platform roles to a set of projects. RoleID and
// ManagerRoleID are opaque external identifiers patched in after creation,
// once the platform has created the matching roles; the empty string is the
// documented "not yet linked" state.
type Team struct {
	ID            int    `json:"id" validate:"min=1"`
	Name          string `json:"name" validate:"required"`
	RoleID        string `json:"roleId"`
	ManagerRoleID string `json:"managerRoleId"`
	ProjectIDs    []int  `json:"projectIds"`
}

func newTeam(id int, name, roleID, managerRoleID string) *Team {
	return &Team{
		ID:            id,
		Name:          name,
		RoleID:        roleID,
		ManagerRoleID: managerRoleID,
		ProjectIDs:    []int{},
	}
}

// AddProject links the team and project on both sides. Mirror of
// Project.AddTeam; the pair is the only sanctioned way to change the link.
func (t *Team) AddProject(project *Project) {
	t.ProjectIDs = addIntIfMissing(t.ProjectIDs, project.ID)
	project.TeamIDs = addIntIfMissing(project.TeamIDs, t.ID)
}

// DelProject unlinks the team and project on both sides.
func (t *Team) DelProject(project *Project) {
	t.ProjectIDs = removeInt(t.ProjectIDs, project.ID)
	project.TeamIDs = removeInt(project.TeamIDs, t.ID)
}

// ProjectsFromIDs resolves the linked project ids against the workflow.
// Unresolvable ids are skipped, matching Project.TeamsFromIDs.
func (t *Team) ProjectsFromIDs(w *Workflow) []*Project {
	projects := make([]*Project, 0, len(t.ProjectIDs))
	for _, id := range t.ProjectIDs {
		if project, ok := w.ProjectByID(id); ok {
			projects = append(projects, project)
		}
	}
	return projects
}
