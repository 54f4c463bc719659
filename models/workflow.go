package models

// Canned habit-tracker template content.
const (
	habitTrackerName        = "100 Days of Code"
	habitTrackerFirstTask   = "Complete 1 hour of coding each day for 100 days."
	habitTrackerDescription = "The aim of this project is to jump start your coding journey with " +
		"100 days of consistent programming. Be sure to share your progress with others also " +
		"embarking on the same journey."
)

// Workflow is the aggregate root for one guild: it owns all projects and
// teams and enforces referential integrity between them. ActiveChannelID
// and ActiveMessageID are opaque chat-platform handles the core stores but
// never interprets; empty means unset.
//
// Workflow methods never block or suspend, so a caller that serializes
// access per guild (see Registry.WithWorkflow) gets atomic mutations.
type Workflow struct {
	Projects []*Project
	Teams    []*Team

	ActiveChannelID string
	ActiveMessageID string
}

// NewWorkflow returns an empty workflow.
func NewWorkflow() *Workflow {
	return &Workflow{
		Projects: []*Project{},
		Teams:    []*Team{},
	}
}

// AddProject parses the deadline, assigns the next project id and appends
// a new standard project. Project names are unique within a workflow so
// that name lookups are unambiguous. No state changes on error.
func (w *Workflow) AddProject(name, deadline string) (*Project, error) {
	if _, ok := w.ProjectByName(name); ok {
		return nil, &DuplicateNameError{What: "project", Name: name}
	}
	d, err := ParseDeadline(deadline)
	if err != nil {
		return nil, err
	}
	project := newProject(nextProjectID(w.Projects), name, d)
	w.Projects = append(w.Projects, project)
	return project, nil
}

// AddHabitTrackerProject creates the habit-tracker template project with its
// seeded first task. A workflow holds at most one; if it already exists it
// is returned as-is. The template goes through the same name gate as every
// other creation path: a standard project already holding the template name
// is a DuplicateNameError, not a second project with that name.
func (w *Workflow) AddHabitTrackerProject() (*Project, error) {
	if existing, ok := w.HabitTracker(); ok {
		return existing, nil
	}
	if _, ok := w.ProjectByName(habitTrackerName); ok {
		return nil, &DuplicateNameError{What: "project", Name: habitTrackerName}
	}
	project := newProject(nextProjectID(w.Projects), habitTrackerName, nil)
	project.Kind = KindHabitTracker
	project.Description = habitTrackerDescription
	project.Members = []string{}
	project.Progress = map[string]string{}
	project.TimeChecked = map[string]int64{}
	task := newTask(1, habitTrackerFirstTask, nil)
	project.Tasks = append(project.Tasks, task)
	w.Projects = append(w.Projects, project)
	return project, nil
}

// HabitTracker returns the workflow's habit-tracker project, if any.
func (w *Workflow) HabitTracker() (*Project, bool) {
	for _, p := range w.Projects {
		if p.Kind == KindHabitTracker {
			return p, true
		}
	}
	return nil, false
}

// DelProject removes the project at the given 1-based position. Every team
// linked to the project is unlinked first, so no team retains a reference
// to the deleted project's id.
func (w *Workflow) DelProject(number int) error {
	if number < 1 || number > len(w.Projects) {
		return &IndexError{What: "project", Index: number, Length: len(w.Projects)}
	}
	project := w.Projects[number-1]
	for _, team := range project.TeamsFromIDs(w) {
		project.RemoveTeam(team)
	}
	w.Projects = append(w.Projects[:number-1], w.Projects[number:]...)
	return nil
}

// EditProject renames and reschedules the project at the given 1-based
// position. The deadline is validated and the new name checked for
// collisions before anything is mutated.
func (w *Workflow) EditProject(number int, name, deadline string) error {
	if number < 1 || number > len(w.Projects) {
		return &IndexError{What: "project", Index: number, Length: len(w.Projects)}
	}
	project := w.Projects[number-1]
	if other, ok := w.ProjectByName(name); ok && other != project {
		return &DuplicateNameError{What: "project", Name: name}
	}
	d, err := ParseDeadline(deadline)
	if err != nil {
		return err
	}
	project.Name = name
	project.Deadline = d
	return nil
}

// ProjectByID returns the project with the given id.
func (w *Workflow) ProjectByID(id int) (*Project, bool) {
	for _, p := range w.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ProjectByName returns the project with the given name. Names are unique
// per workflow, so the first match is the only match.
func (w *Workflow) ProjectByName(name string) (*Project, bool) {
	for _, p := range w.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ProjectTitles returns all project names in list order.
func (w *Workflow) ProjectTitles() []string {
	titles := make([]string, 0, len(w.Projects))
	for _, p := range w.Projects {
		titles = append(titles, p.Name)
	}
	return titles
}

// AddTeam appends a new team with the next team id. The role ids may be
// empty at creation and patched in once the chat platform has created the
// matching roles. Team names are unique within a workflow.
func (w *Workflow) AddTeam(name, roleID, managerRoleID string) (*Team, error) {
	if _, ok := w.TeamByName(name); ok {
		return nil, &DuplicateNameError{What: "team", Name: name}
	}
	team := newTeam(nextTeamID(w.Teams), name, roleID, managerRoleID)
	w.Teams = append(w.Teams, team)
	return team, nil
}

// DelTeam removes the team at the given 1-based position, unlinking it from
// every referenced project first. The removed team is returned so the
// caller can clean up its external roles.
func (w *Workflow) DelTeam(number int) (*Team, error) {
	if number < 1 || number > len(w.Teams) {
		return nil, &IndexError{What: "team", Index: number, Length: len(w.Teams)}
	}
	team := w.Teams[number-1]
	for _, project := range team.ProjectsFromIDs(w) {
		team.DelProject(project)
	}
	w.Teams = append(w.Teams[:number-1], w.Teams[number:]...)
	return team, nil
}

// TeamByID returns the team with the given id.
func (w *Workflow) TeamByID(id int) (*Team, bool) {
	for _, t := range w.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TeamByName returns the team with the given name.
func (w *Workflow) TeamByName(name string) (*Team, bool) {
	for _, t := range w.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TeamByRoleID returns the team backed by the given chat-platform role.
func (w *Workflow) TeamByRoleID(roleID string) (*Team, bool) {
	for _, t := range w.Teams {
		if t.RoleID != "" && t.RoleID == roleID {
			return t, true
		}
	}
	return nil, false
}

// TeamByManagerRoleID returns the team whose manager role matches.
func (w *Workflow) TeamByManagerRoleID(roleID string) (*Team, bool) {
	for _, t := range w.Teams {
		if t.ManagerRoleID != "" && t.ManagerRoleID == roleID {
			return t, true
		}
	}
	return nil, false
}

// nextProjectID is one past the highest live project id. The snapshot keys
// projects by id; reusing the id of a deleted project would make its record
// collide with a surviving one and lose it on save.
func nextProjectID(projects []*Project) int {
	next := 1
	for _, p := range projects {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

// nextTeamID is one past the highest live team id, for the same reason as
// nextProjectID.
func nextTeamID(teams []*Team) int {
	next := 1
	for _, t := range teams {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// ManagerRoleIDs projects the manager role id of every team that has one,
// for external permission checks.
func (w *Workflow) ManagerRoleIDs() []string {
	ids := make([]string, 0, len(w.Teams))
	for _, t := range w.Teams {
		if t.ManagerRoleID != "" {
			ids = append(ids, t.ManagerRoleID)
		}
	}
	return ids
}
