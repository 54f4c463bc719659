package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskStatus represents the possible statuses of a task or project.
type TaskStatus string

const (
	StatusPending         TaskStatus = "PENDING"
	StatusCompleted       TaskStatus = "COMPLETED"
	StatusApprovalPending TaskStatus = "APPROVAL PENDING"
)

// TaskPriority represents the priority levels of a task or project.
// The zero value means no priority has been assigned.
type TaskPriority string

const (
	PriorityNone      TaskPriority = ""
	PriorityLow       TaskPriority = "LOW"
	PriorityMedium    TaskPriority = "MEDIUM"
	PriorityHigh      TaskPriority = "HIGH"
	PriorityUrgent    TaskPriority = "URGENT"
	PriorityEmergency TaskPriority = "EMERGENCY"
)

// LogEntry is one record in a task's append-only audit trail. Entries are
// held in insertion order, which is also chronological order. Key is unique
// per entry regardless of how quickly entries are added.
type LogEntry struct {
	Key      string    `json:"key" yaml:"key" toml:"key" validate:"required"`
	At       time.Time `json:"at" yaml:"at" toml:"at"`
	AuthorID string    `json:"authorId" yaml:"authorId" toml:"authorId"`
	Comment  string    `json:"comment" yaml:"comment" toml:"comment"`
}

// Task is the smallest unit of trackable work. It belongs to exactly one
// Project and its ID is scoped to that project, not globally unique.
type Task struct {
	ID          int          `json:"id" validate:"min=1"`
	Name        string       `json:"name" validate:"required"`
	Deadline    *Deadline    `json:"deadline"`
	Status      TaskStatus   `json:"status" validate:"oneof=PENDING COMPLETED 'APPROVAL PENDING'"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT EMERGENCY"`
	Description string       `json:"description,omitempty"`
	Archived    bool         `json:"archive"`
	MemberIDs   []string     `json:"memberIds"`
	Logs        []LogEntry   `json:"logs"`
}

// newTask builds a task with the given project-scoped id. The deadline has
// already been parsed by the caller.
func newTask(id int, name string, deadline *Deadline) *Task {
	return &Task{
		ID:        id,
		Name:      name,
		Deadline:  deadline,
		Status:    StatusPending,
		MemberIDs: []string{},
		Logs:      []LogEntry{},
	}
}

// newLogKey produces a collision-safe key for a log entry: a UTC timestamp
// at nanosecond resolution plus a random nonce. Two entries written within
// the same instant still get distinct keys.
func newLogKey(at time.Time) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return at.UTC().Format("20060102T150405.000000000Z") + "-" + nonce
}

// AddLog appends an entry to the task's audit trail and returns it.
func (t *Task) AddLog(authorID, comment string) LogEntry {
	now := time.Now().UTC()
	entry := LogEntry{
		Key:      newLogKey(now),
		At:       now,
		AuthorID: authorID,
		Comment:  comment,
	}
	t.Logs = append(t.Logs, entry)
	return entry
}

// RemoveLog deletes the entry with the given key. Removing a key that does
// not exist is an error, so callers surface stale UI selections instead of
// silently ignoring them.
func (t *Task) RemoveLog(key string) error {
	for i, entry := range t.Logs {
		if entry.Key == key {
			t.Logs = append(t.Logs[:i], t.Logs[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{What: "log entry", Key: key}
}

// LogByKey returns the entry with the given key.
func (t *Task) LogByKey(key string) (*LogEntry, bool) {
	for i := range t.Logs {
		if t.Logs[i].Key == key {
			return &t.Logs[i], true
		}
	}
	return nil, false
}

// AssignMember adds a member id to the task. Assigning an id that is
// already present leaves the list unchanged.
func (t *Task) AssignMember(memberID string) {
	for _, id := range t.MemberIDs {
		if id == memberID {
			return
		}
	}
	t.MemberIDs = append(t.MemberIDs, memberID)
}

// UnassignMember removes a member id from the task. Removing an id that is
// not present is a no-op.
func (t *Task) UnassignMember(memberID string) {
	for i, id := range t.MemberIDs {
		if id == memberID {
			t.MemberIDs = append(t.MemberIDs[:i], t.MemberIDs[i+1:]...)
			return
		}
	}
}

// HasMember reports whether the member id is assigned to the task.
func (t *Task) HasMember(memberID string) bool {
	for _, id := range t.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// ChangeStatus sets the task status.
func (t *Task) ChangeStatus(status TaskStatus) {
	t.Status = status
}

// ChangePriority sets the task priority.
func (t *Task) ChangePriority(priority TaskPriority) {
	t.Priority = priority
}

// ChangeDescription sets the task description.
func (t *Task) ChangeDescription(description string) {
	t.Description = description
}

// SetArchived hides or unhides the task from normal views. Archived tasks
// are retained, not deleted.
func (t *Task) SetArchived(archived bool) {
	t.Archived = archived
}

// UnixDeadline returns the deadline as a unix timestamp. Callers must check
// for a deadline first; a task without one returns ErrNoDeadline.
func (t *Task) UnixDeadline() (int64, error) {
	if t.Deadline == nil {
		return 0, ErrNoDeadline
	}
	return t.Deadline.Unix(), nil
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		// Non-struct input yields an InvalidValidationError, not a
		// ValidationErrors list; pass it through as-is.
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("field %s failed rule %q (value %v)", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return nil
}
