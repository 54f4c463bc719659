package store

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrynew/workflowbot/models"
)

// buildRegistry assembles a registry through the documented mutation
// operations only, covering projects, tasks, logs, teams, links and the
// habit-tracker template.
func buildRegistry(t *testing.T) *models.Registry {
	t.Helper()
	registry := models.NewRegistry()

	w := registry.Ensure("guild-1")
	w.ActiveChannelID = "chan-123"
	w.ActiveMessageID = "msg-456"

	launch, err := w.AddProject("Launch", "15 06 2025")
	require.NoError(t, err)
	launch.ChangePriority(models.PriorityHigh)
	launch.ChangeDescription("ship the thing")

	docs, err := launch.AddTask("Write docs", "01 06 2025")
	require.NoError(t, err)
	docs.AssignMember("member-1")
	docs.AssignMember("member-2")
	docs.AddLog("member-1", "drafted intro")
	docs.ChangePriority(models.PriorityUrgent)

	qa, err := launch.AddTask("QA pass", "")
	require.NoError(t, err)
	qa.ChangeStatus(models.StatusCompleted)
	qa.SetArchived(true)

	maintenance, err := w.AddProject("Maintenance", "")
	require.NoError(t, err)
	maintenance.ChangeStatus(models.StatusCompleted)

	habit, err := w.AddHabitTrackerProject()
	require.NoError(t, err)
	habit.AddMember("member-3", 1700000000)
	habit.MarkToday("member-3")

	core, err := w.AddTeam("Core", "role-1", "mgr-1")
	require.NoError(t, err)
	support, err := w.AddTeam("Support", "role-2", "")
	require.NoError(t, err)

	launch.AddTeam(core)
	launch.AddTeam(support)
	maintenance.AddTeam(core)

	w2 := registry.Ensure("guild-2")
	_, err = w2.AddProject("Solo", "")
	require.NoError(t, err)

	return registry
}

func TestSnapshotRoundTrip(t *testing.T) {
	registry := buildRegistry(t)

	decoded := Decode(Encode(registry))

	require.Equal(t, registry.GuildIDs(), decoded.GuildIDs())
	for _, guildID := range registry.GuildIDs() {
		original, ok := registry.Workflow(guildID)
		require.True(t, ok)
		restored, ok := decoded.Workflow(guildID)
		require.True(t, ok, "guild %s missing after round trip", guildID)

		assert.Equal(t, original.ActiveChannelID, restored.ActiveChannelID)
		assert.Equal(t, original.ActiveMessageID, restored.ActiveMessageID)
		require.Len(t, restored.Projects, len(original.Projects))
		require.Len(t, restored.Teams, len(original.Teams))

		for _, p := range original.Projects {
			rp, ok := restored.ProjectByID(p.ID)
			require.True(t, ok, "project %d missing", p.ID)
			assert.Equal(t, p, rp)
		}
		for _, team := range original.Teams {
			rt, ok := restored.TeamByID(team.ID)
			require.True(t, ok, "team %d missing", team.ID)
			assert.Equal(t, team, rt)
		}
	}
}

func TestSnapshotRoundTripAfterDeletes(t *testing.T) {
	// Positional deletes free list slots but never ids, so the id-keyed
	// document cannot collide and the round trip keeps every survivor.
	registry := models.NewRegistry()
	w := registry.Ensure("guild-1")
	_, err := w.AddProject("One", "")
	require.NoError(t, err)
	_, err = w.AddProject("Two", "")
	require.NoError(t, err)
	require.NoError(t, w.DelProject(1))
	_, err = w.AddProject("Three", "")
	require.NoError(t, err)

	_, err = w.AddTeam("Alpha", "", "")
	require.NoError(t, err)
	_, err = w.AddTeam("Beta", "", "")
	require.NoError(t, err)
	_, err = w.DelTeam(1)
	require.NoError(t, err)
	_, err = w.AddTeam("Gamma", "", "")
	require.NoError(t, err)

	decoded := Decode(Encode(registry))
	dw, ok := decoded.Workflow("guild-1")
	require.True(t, ok)

	require.Len(t, dw.Projects, 2)
	for _, name := range []string{"Two", "Three"} {
		_, ok := dw.ProjectByName(name)
		assert.True(t, ok, "project %s lost in round trip", name)
	}
	require.Len(t, dw.Teams, 2)
	for _, name := range []string{"Beta", "Gamma"} {
		_, ok := dw.TeamByName(name)
		assert.True(t, ok, "team %s lost in round trip", name)
	}
}

func TestSnapshotRoundTripTwice(t *testing.T) {
	// Encoding a decoded registry must produce an identical document.
	registry := buildRegistry(t)
	doc := Encode(registry)
	again := Encode(Decode(doc))
	assert.Equal(t, doc, again)
}

func TestDecodeRestoresStoredIDs(t *testing.T) {
	// Ids in the document are restored exactly, even when non-contiguous;
	// reconstruction must not re-derive them from insertion order.
	doc := Document{
		"guild-1": {
			Projects: map[string]ProjectRecord{
				"3": {Name: "Three", Status: models.StatusPending, TeamIDs: []int{}, Tasks: []TaskRecord{
					{ID: 7, Name: "Lucky", Status: models.StatusPending, MemberIDs: []string{}, Logs: []models.LogEntry{}},
				}},
				"8": {Name: "Eight", Status: models.StatusPending, TeamIDs: []int{}, Tasks: []TaskRecord{}},
			},
			Teams: map[string]TeamRecord{
				"5": {Name: "Five", ProjectIDs: []int{}},
			},
		},
	}

	registry := Decode(doc)
	w, ok := registry.Workflow("guild-1")
	require.True(t, ok)

	require.Len(t, w.Projects, 2)
	assert.Equal(t, 3, w.Projects[0].ID)
	assert.Equal(t, 8, w.Projects[1].ID)

	p, ok := w.ProjectByID(3)
	require.True(t, ok)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, 7, p.Tasks[0].ID)

	team, ok := w.TeamByID(5)
	require.True(t, ok)
	assert.Equal(t, "Five", team.Name)
}

func TestDecodeDropsDanglingReferences(t *testing.T) {
	doc := Document{
		"guild-1": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "Launch", Status: models.StatusPending, TeamIDs: []int{1, 99}, Tasks: []TaskRecord{}},
			},
			Teams: map[string]TeamRecord{
				"1": {Name: "Core", ProjectIDs: []int{1, 42}},
			},
		},
	}

	registry := Decode(doc)
	w, ok := registry.Workflow("guild-1")
	require.True(t, ok)

	p, ok := w.ProjectByID(1)
	require.True(t, ok)
	team, ok := w.TeamByID(1)
	require.True(t, ok)

	// The dangling ids appear on neither side; the valid link survives on
	// both.
	assert.Equal(t, []int{1}, p.TeamIDs)
	assert.Equal(t, []int{1}, team.ProjectIDs)
}

func TestDecodeLinksRecordedOnOneSideOnly(t *testing.T) {
	// A link stored on only one side (legacy snapshots) is still
	// established on both after reconstruction.
	doc := Document{
		"guild-1": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "Launch", Status: models.StatusPending, TeamIDs: []int{1}, Tasks: []TaskRecord{}},
			},
			Teams: map[string]TeamRecord{
				"1": {Name: "Core", ProjectIDs: []int{}},
			},
		},
	}

	registry := Decode(doc)
	w, _ := registry.Workflow("guild-1")
	p, _ := w.ProjectByID(1)
	team, _ := w.TeamByID(1)

	assert.Equal(t, []int{1}, p.TeamIDs)
	assert.Equal(t, []int{1}, team.ProjectIDs)
}

func TestDecodeSkipsInvalidGuild(t *testing.T) {
	doc := Document{
		"bad-guild": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "", Status: models.StatusPending, Tasks: []TaskRecord{}}, // empty name fails validation
			},
			Teams: map[string]TeamRecord{},
		},
		"good-guild": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "Fine", Status: models.StatusPending, TeamIDs: []int{}, Tasks: []TaskRecord{}},
			},
			Teams: map[string]TeamRecord{},
		},
	}

	registry := Decode(doc)
	_, ok := registry.Workflow("bad-guild")
	assert.False(t, ok, "invalid guild must be skipped")
	_, ok = registry.Workflow("good-guild")
	assert.True(t, ok, "other guilds must still load")
}

func TestDecodeDefaultsMissingEnumValues(t *testing.T) {
	doc := Document{
		"guild-1": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "Launch", TeamIDs: []int{}, Tasks: []TaskRecord{
					{ID: 1, Name: "Task", MemberIDs: []string{}, Logs: []models.LogEntry{}},
				}},
			},
			Teams: map[string]TeamRecord{},
		},
	}

	registry := Decode(doc)
	w, _ := registry.Workflow("guild-1")
	p, ok := w.ProjectByID(1)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, p.Status)
	assert.Equal(t, models.KindStandard, p.Kind)
	assert.Equal(t, models.StatusPending, p.Tasks[0].Status)
}

func TestEncodeUsesDecimalIDKeys(t *testing.T) {
	registry := buildRegistry(t)
	doc := Encode(registry)

	snap := doc["guild-1"]
	w, _ := registry.Workflow("guild-1")
	for _, p := range w.Projects {
		_, ok := snap.Projects[strconv.Itoa(p.ID)]
		assert.True(t, ok, "project %d not keyed by id", p.ID)
	}
	for _, team := range w.Teams {
		_, ok := snap.Teams[strconv.Itoa(team.ID)]
		assert.True(t, ok, "team %d not keyed by id", team.ID)
	}
}

func TestVerifyReportsDanglingReferences(t *testing.T) {
	doc := Document{
		"guild-1": {
			Projects: map[string]ProjectRecord{
				"1": {Name: "Launch", TeamIDs: []int{9}, Tasks: []TaskRecord{}},
			},
			Teams: map[string]TeamRecord{
				"1": {Name: "Core", ProjectIDs: []int{7}},
			},
		},
	}

	problems := Verify(doc)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "missing team 9")
	assert.Contains(t, problems[1], "missing project 7")
}

func TestVerifyCleanDocument(t *testing.T) {
	registry := buildRegistry(t)
	assert.Empty(t, Verify(Encode(registry)))
}
