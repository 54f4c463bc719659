package models

// ProjectKind discriminates ordinary projects from template-driven ones.
// Template behaviour switches on this tag, never on a type or name check.
type ProjectKind string

const (
	KindStandard     ProjectKind = "standard"
	KindHabitTracker ProjectKind = "habit-tracker"
)

// Progress day markers for habit-tracker projects.
const (
	progressDone    = 'y'
	progressMissed  = 'n'
	progressPending = 'm'
)

// secondsPerDay is the habit-tracker roll-over interval.
const secondsPerDay = 24 * 60 * 60

// Project is an organizational unit owning an ordered collection of tasks
// and a set of linked team ids. The Members, Progress and TimeChecked fields
// are used only by habit-tracker projects.
type Project struct {
	ID          int          `json:"id" validate:"min=1"`
	Name        string       `json:"name" validate:"required"`
	Kind        ProjectKind  `json:"kind"`
	Deadline    *Deadline    `json:"deadline"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Description string       `json:"description,omitempty"`
	Tasks       []*Task      `json:"tasks"`
	TeamIDs     []int        `json:"teamIds"`

	Members     []string          `json:"memberIds,omitempty"`
	Progress    map[string]string `json:"progress,omitempty"`
	TimeChecked map[string]int64  `json:"timeChecked,omitempty"`
}

func newProject(id int, name string, deadline *Deadline) *Project {
	return &Project{
		ID:       id,
		Name:     name,
		Kind:     KindStandard,
		Deadline: deadline,
		Status:   StatusPending,
		Tasks:    []*Task{},
		TeamIDs:  []int{},
	}
}

// AddTask parses the deadline, assigns the next project-scoped id and
// appends the new task. A parse failure leaves the project untouched.
func (p *Project) AddTask(name, deadline string) (*Task, error) {
	d, err := ParseDeadline(deadline)
	if err != nil {
		return nil, err
	}
	task := newTask(nextTaskID(p.Tasks), name, d)
	p.Tasks = append(p.Tasks, task)
	return task, nil
}

// nextTaskID is one past the highest live task id. Ids are never reused
// after a positional delete, so TaskByID stays unambiguous for the life of
// the project.
func nextTaskID(tasks []*Task) int {
	next := 1
	for _, t := range tasks {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// DelTask removes the task at the given 1-based position. Position refers
// to the current list order, not the task id.
func (p *Project) DelTask(number int) error {
	if number < 1 || number > len(p.Tasks) {
		return &IndexError{What: "task", Index: number, Length: len(p.Tasks)}
	}
	p.Tasks = append(p.Tasks[:number-1], p.Tasks[number:]...)
	return nil
}

// TaskByID returns the task with the given id, if present.
func (p *Project) TaskByID(id int) (*Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// ActiveTasks returns the tasks not hidden by archiving, in list order.
func (p *Project) ActiveTasks() []*Task {
	active := make([]*Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if !t.Archived {
			active = append(active, t)
		}
	}
	return active
}

// ArchivedTasks returns the tasks hidden from normal views.
func (p *Project) ArchivedTasks() []*Task {
	archived := make([]*Task, 0)
	for _, t := range p.Tasks {
		if t.Archived {
			archived = append(archived, t)
		}
	}
	return archived
}

// EditDeadline re-parses and replaces the project deadline.
func (p *Project) EditDeadline(deadline string) error {
	d, err := ParseDeadline(deadline)
	if err != nil {
		return err
	}
	p.Deadline = d
	return nil
}

// UnixDeadline returns the deadline as a unix timestamp, or ErrNoDeadline
// when none is set.
func (p *Project) UnixDeadline() (int64, error) {
	if p.Deadline == nil {
		return 0, ErrNoDeadline
	}
	return p.Deadline.Unix(), nil
}

// AddTeam links the project and team in both directions. Together with
// RemoveTeam it is the only way to mutate the link; both sides always change
// together. Linking an already-linked pair is a no-op.
func (p *Project) AddTeam(team *Team) {
	p.TeamIDs = addIntIfMissing(p.TeamIDs, team.ID)
	team.ProjectIDs = addIntIfMissing(team.ProjectIDs, p.ID)
}

// RemoveTeam unlinks the project and team on both sides.
func (p *Project) RemoveTeam(team *Team) {
	p.TeamIDs = removeInt(p.TeamIDs, team.ID)
	team.ProjectIDs = removeInt(team.ProjectIDs, p.ID)
}

// TeamsFromIDs resolves the linked team ids against the workflow's team
// table. Ids with no matching team are skipped; the snapshot codec culls
// dangling references at load time, so a miss here means the caller raced a
// deletion and the stale id will disappear with the next symmetric update.
func (p *Project) TeamsFromIDs(w *Workflow) []*Team {
	teams := make([]*Team, 0, len(p.TeamIDs))
	for _, id := range p.TeamIDs {
		if team, ok := w.TeamByID(id); ok {
			teams = append(teams, team)
		}
	}
	return teams
}

// ChangeStatus sets the project status.
func (p *Project) ChangeStatus(status TaskStatus) {
	p.Status = status
}

// ChangePriority sets the project priority.
func (p *Project) ChangePriority(priority TaskPriority) {
	p.Priority = priority
}

// ChangeDescription sets the project description.
func (p *Project) ChangeDescription(description string) {
	p.Description = description
}

// AddMember enrols a member into a habit-tracker project, seeding an empty
// progress record and stamping the check clock. Enrolling twice is a no-op.
func (p *Project) AddMember(memberID string, now int64) {
	if p.Kind != KindHabitTracker {
		return
	}
	for _, id := range p.Members {
		if id == memberID {
			return
		}
	}
	p.Members = append(p.Members, memberID)
	p.Progress[memberID] = string(progressPending)
	p.TimeChecked[memberID] = now
}

// RemoveMember withdraws a member and drops their progress record.
func (p *Project) RemoveMember(memberID string) {
	for i, id := range p.Members {
		if id == memberID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			delete(p.Progress, memberID)
			delete(p.TimeChecked, memberID)
			return
		}
	}
}

// HasMember reports whether the member is enrolled.
func (p *Project) HasMember(memberID string) bool {
	for _, id := range p.Members {
		if id == memberID {
			return true
		}
	}
	return false
}

// MarkToday records the member's pending day as done.
func (p *Project) MarkToday(memberID string) {
	progress, ok := p.Progress[memberID]
	if !ok || len(progress) == 0 {
		return
	}
	if progress[len(progress)-1] == progressPending {
		p.Progress[memberID] = progress[:len(progress)-1] + string(progressDone)
	}
}

// ProgressSummary counts completed days against total tracked days for a
// member.
func (p *Project) ProgressSummary(memberID string) (done, total int) {
	for _, c := range p.Progress[memberID] {
		if c == progressDone {
			done++
		}
		total++
	}
	return done, total
}

// TickProgress rolls every member whose last check was more than a day ago:
// an unmarked pending day becomes missed and a fresh pending day is opened.
func (p *Project) TickProgress(now int64) {
	for memberID, checked := range p.TimeChecked {
		if now-checked <= secondsPerDay {
			continue
		}
		p.TimeChecked[memberID] = now
		progress := p.Progress[memberID]
		if len(progress) > 0 && progress[len(progress)-1] == progressPending {
			progress = progress[:len(progress)-1] + string(progressMissed)
		}
		p.Progress[memberID] = progress + string(progressPending)
	}
}

// addIntIfMissing adds an id to a slice if it's not already present.
func addIntIfMissing(slice []int, id int) []int {
	for _, v := range slice {
		if v == id {
			return slice
		}
	}
	return append(slice, id)
}

// removeInt removes all occurrences of an id from a slice.
func removeInt(slice []int, id int) []int {
	out := make([]int, 0, len(slice))
	for _, v := range slice {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
