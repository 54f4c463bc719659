package store

import (
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/harrynew/workflowbot/models"
)

// Document is the serialized form of a whole registry: one entry per guild
// id. Projects and teams are keyed by their decimal id so that stored ids
// survive round-trips exactly; reconstruction never re-derives ids from
// insertion order.
type Document map[string]GuildSnapshot

// GuildSnapshot captures one workflow. The active channel and message are
// opaque external handles; resolving them against the chat platform is the
// caller's business and may fail without affecting the load.
type GuildSnapshot struct {
	ActiveChannel string                   `json:"activeChannel,omitempty" yaml:"activeChannel,omitempty" toml:"activeChannel,omitempty"`
	ActiveMessage string                   `json:"activeMessage,omitempty" yaml:"activeMessage,omitempty" toml:"activeMessage,omitempty"`
	Projects      map[string]ProjectRecord `json:"projects" yaml:"projects" toml:"projects" validate:"dive"`
	Teams         map[string]TeamRecord    `json:"teams" yaml:"teams" toml:"teams" validate:"dive"`
}

// ProjectRecord is the stored form of a project and its tasks. Its id is
// the map key. Members, progress and the check clock only appear for
// habit-tracker projects.
type ProjectRecord struct {
	Name        string              `json:"name" yaml:"name" toml:"name" validate:"required"`
	Kind        models.ProjectKind  `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" validate:"omitempty,oneof=standard habit-tracker"`
	Deadline    *models.Deadline    `json:"deadline" yaml:"deadline" toml:"deadline"`
	Status      models.TaskStatus   `json:"status" yaml:"status" toml:"status" validate:"omitempty,oneof=PENDING COMPLETED 'APPROVAL PENDING'"`
	Priority    models.TaskPriority `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT EMERGENCY"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	TeamIDs     []int               `json:"teamIds" yaml:"teamIds" toml:"teamIds"`
	Tasks       []TaskRecord        `json:"tasks" yaml:"tasks" toml:"tasks" validate:"dive"`
	Members     []string            `json:"memberIds,omitempty" yaml:"memberIds,omitempty" toml:"memberIds,omitempty"`
	Progress    map[string]string   `json:"progress,omitempty" yaml:"progress,omitempty" toml:"progress,omitempty"`
	TimeChecked map[string]int64    `json:"timeChecked,omitempty" yaml:"timeChecked,omitempty" toml:"timeChecked,omitempty"`
}

// TaskRecord is the stored form of a task.
type TaskRecord struct {
	ID          int                 `json:"id" yaml:"id" toml:"id" validate:"min=1"`
	Name        string              `json:"name" yaml:"name" toml:"name" validate:"required"`
	Deadline    *models.Deadline    `json:"deadline" yaml:"deadline" toml:"deadline"`
	Status      models.TaskStatus   `json:"status" yaml:"status" toml:"status" validate:"omitempty,oneof=PENDING COMPLETED 'APPROVAL PENDING'"`
	Priority    models.TaskPriority `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT EMERGENCY"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Archive     bool                `json:"archive" yaml:"archive" toml:"archive"`
	MemberIDs   []string            `json:"memberIds" yaml:"memberIds" toml:"memberIds"`
	Logs        []models.LogEntry   `json:"logs" yaml:"logs" toml:"logs"`
}

// TeamRecord is the stored form of a team; its id is the map key.
type TeamRecord struct {
	Name          string `json:"name" yaml:"name" toml:"name" validate:"required"`
	RoleID        string `json:"roleId,omitempty" yaml:"roleId,omitempty" toml:"roleId,omitempty"`
	ManagerRoleID string `json:"managerRoleId,omitempty" yaml:"managerRoleId,omitempty" toml:"managerRoleId,omitempty"`
	ProjectIDs    []int  `json:"projectIds" yaml:"projectIds" toml:"projectIds"`
}

// Encode flattens a registry into its document form. Project↔Team links
// are emitted as id lists on both sides rather than nested objects, so the
// many-to-many relation is stored once per side and identity survives.
func Encode(registry *models.Registry) Document {
	doc := make(Document, registry.Len())
	for _, guildID := range registry.GuildIDs() {
		w, ok := registry.Workflow(guildID)
		if !ok {
			continue
		}
		doc[guildID] = encodeWorkflow(w)
	}
	return doc
}

func encodeWorkflow(w *models.Workflow) GuildSnapshot {
	snap := GuildSnapshot{
		ActiveChannel: w.ActiveChannelID,
		ActiveMessage: w.ActiveMessageID,
		Projects:      make(map[string]ProjectRecord, len(w.Projects)),
		Teams:         make(map[string]TeamRecord, len(w.Teams)),
	}
	for _, p := range w.Projects {
		tasks := make([]TaskRecord, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			tasks = append(tasks, TaskRecord{
				ID:          t.ID,
				Name:        t.Name,
				Deadline:    t.Deadline,
				Status:      t.Status,
				Priority:    t.Priority,
				Description: t.Description,
				Archive:     t.Archived,
				MemberIDs:   append([]string{}, t.MemberIDs...),
				Logs:        append([]models.LogEntry{}, t.Logs...),
			})
		}
		record := ProjectRecord{
			Name:        p.Name,
			Kind:        p.Kind,
			Deadline:    p.Deadline,
			Status:      p.Status,
			Priority:    p.Priority,
			Description: p.Description,
			TeamIDs:     append([]int{}, p.TeamIDs...),
			Tasks:       tasks,
		}
		if p.Kind == models.KindHabitTracker {
			record.Members = append([]string{}, p.Members...)
			record.Progress = copyStringMap(p.Progress)
			record.TimeChecked = copyInt64Map(p.TimeChecked)
		}
		snap.Projects[strconv.Itoa(p.ID)] = record
	}
	for _, t := range w.Teams {
		snap.Teams[strconv.Itoa(t.ID)] = TeamRecord{
			Name:          t.Name,
			RoleID:        t.RoleID,
			ManagerRoleID: t.ManagerRoleID,
			ProjectIDs:    append([]int{}, t.ProjectIDs...),
		}
	}
	return snap
}

// Decode reconstructs a registry from its document form. Reconstruction is
// two-phase per guild: first every project (with its tasks) and every team
// is recreated with its stored id, then a link pass re-establishes the
// Project↔Team relation through the symmetric add methods. Linking during
// creation would fail for whichever side is created second.
//
// A guild entry that fails validation is skipped and logged; other guilds
// still load. Dangling link ids are dropped with a warning and appear on
// neither side of the reconstructed relation.
func Decode(doc Document) *models.Registry {
	registry := models.NewRegistry()
	for guildID, snap := range doc {
		w, err := decodeWorkflow(guildID, snap)
		if err != nil {
			zap.L().Error("skipping guild with invalid snapshot",
				zap.String("guild", guildID), zap.Error(err))
			continue
		}
		registry.Put(guildID, w)
	}
	return registry
}

func decodeWorkflow(guildID string, snap GuildSnapshot) (*models.Workflow, error) {
	if err := models.ValidateStruct(snap); err != nil {
		return nil, err
	}

	w := models.NewWorkflow()
	w.ActiveChannelID = snap.ActiveChannel
	w.ActiveMessageID = snap.ActiveMessage

	projectKeys := make([]string, 0, len(snap.Projects))
	for k := range snap.Projects {
		projectKeys = append(projectKeys, k)
	}
	teamKeys := make([]string, 0, len(snap.Teams))
	for k := range snap.Teams {
		teamKeys = append(teamKeys, k)
	}

	// Phase one: recreate projects in ascending id order so the list order
	// is deterministic, restoring stored ids directly.
	for _, id := range sortedIDKeys(projectKeys) {
		record := snap.Projects[strconv.Itoa(id)]
		project := &models.Project{
			ID:          id,
			Name:        record.Name,
			Kind:        record.Kind,
			Deadline:    record.Deadline,
			Status:      record.Status,
			Priority:    record.Priority,
			Description: record.Description,
			Tasks:       make([]*models.Task, 0, len(record.Tasks)),
			TeamIDs:     []int{},
		}
		if project.Kind == "" {
			project.Kind = models.KindStandard
		}
		if project.Status == "" {
			project.Status = models.StatusPending
		}
		if project.Kind == models.KindHabitTracker {
			project.Members = append([]string{}, record.Members...)
			project.Progress = copyStringMap(record.Progress)
			project.TimeChecked = copyInt64Map(record.TimeChecked)
			if project.Progress == nil {
				project.Progress = map[string]string{}
			}
			if project.TimeChecked == nil {
				project.TimeChecked = map[string]int64{}
			}
		}
		for _, tr := range record.Tasks {
			task := &models.Task{
				ID:          tr.ID,
				Name:        tr.Name,
				Deadline:    tr.Deadline,
				Status:      tr.Status,
				Priority:    tr.Priority,
				Description: tr.Description,
				Archived:    tr.Archive,
				MemberIDs:   append([]string{}, tr.MemberIDs...),
				Logs:        append([]models.LogEntry{}, tr.Logs...),
			}
			if task.Status == "" {
				task.Status = models.StatusPending
			}
			project.Tasks = append(project.Tasks, task)
		}
		w.Projects = append(w.Projects, project)
	}

	for _, id := range sortedIDKeys(teamKeys) {
		record := snap.Teams[strconv.Itoa(id)]
		w.Teams = append(w.Teams, &models.Team{
			ID:            id,
			Name:          record.Name,
			RoleID:        record.RoleID,
			ManagerRoleID: record.ManagerRoleID,
			ProjectIDs:    []int{},
		})
	}

	// Phase two: re-link both stored sides of the relation. The add methods
	// are idempotent, so a link recorded on both sides is established once.
	for _, project := range w.Projects {
		record := snap.Projects[strconv.Itoa(project.ID)]
		for _, teamID := range record.TeamIDs {
			team, ok := w.TeamByID(teamID)
			if !ok {
				zap.L().Warn("dropping dangling team reference",
					zap.String("guild", guildID),
					zap.Int("project", project.ID),
					zap.Int("team", teamID))
				continue
			}
			project.AddTeam(team)
		}
	}
	for _, team := range w.Teams {
		record := snap.Teams[strconv.Itoa(team.ID)]
		for _, projectID := range record.ProjectIDs {
			project, ok := w.ProjectByID(projectID)
			if !ok {
				zap.L().Warn("dropping dangling project reference",
					zap.String("guild", guildID),
					zap.Int("team", team.ID),
					zap.Int("project", projectID))
				continue
			}
			team.AddProject(project)
		}
	}

	return w, nil
}

// sortedIDKeys parses decimal map keys into ids and returns them ascending.
// Non-numeric keys have no id to restore and are rejected up front.
func sortedIDKeys(keys []string) []int {
	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.Atoi(k)
		if err != nil || id < 1 {
			zap.L().Warn("ignoring entry with non-numeric id key", zap.String("key", k))
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyInt64Map(m map[string]int64) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Verify walks a document and reports every dangling link id without
// building a registry. Used by the snapshot check command.
func Verify(doc Document) []string {
	var problems []string
	for guildID, snap := range doc {
		teamIDs := make(map[int]struct{}, len(snap.Teams))
		for k := range snap.Teams {
			if id, err := strconv.Atoi(k); err == nil {
				teamIDs[id] = struct{}{}
			}
		}
		projectIDs := make(map[int]struct{}, len(snap.Projects))
		for k := range snap.Projects {
			if id, err := strconv.Atoi(k); err == nil {
				projectIDs[id] = struct{}{}
			}
		}
		for k, record := range snap.Projects {
			for _, teamID := range record.TeamIDs {
				if _, ok := teamIDs[teamID]; !ok {
					problems = append(problems,
						fmt.Sprintf("guild %s: project %s references missing team %d", guildID, k, teamID))
				}
			}
		}
		for k, record := range snap.Teams {
			for _, projectID := range record.ProjectIDs {
				if _, ok := projectIDs[projectID]; !ok {
					problems = append(problems,
						fmt.Sprintf("guild %s: team %s references missing project %d", guildID, k, projectID))
				}
			}
		}
	}
	sort.Strings(problems)
	return problems
}
