package models

import (
	"errors"
	"strings"
	"testing"
)

func TestTaskAddLog(t *testing.T) {
	task := newTask(1, "Write docs", nil)

	first := task.AddLog("user-1", "started drafting")
	second := task.AddLog("user-2", "reviewed outline")

	if len(task.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(task.Logs))
	}
	if task.Logs[0].Key != first.Key || task.Logs[1].Key != second.Key {
		t.Error("log entries not in insertion order")
	}
	if task.Logs[0].AuthorID != "user-1" || task.Logs[0].Comment != "started drafting" {
		t.Errorf("unexpected first entry: %+v", task.Logs[0])
	}
}

func TestTaskLogKeysUniqueSameInstant(t *testing.T) {
	// Entries added back-to-back land within the same wall-clock second;
	// keys must still never collide.
	task := newTask(1, "Hot path", nil)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		entry := task.AddLog("user-1", "tick")
		if seen[entry.Key] {
			t.Fatalf("duplicate log key after %d inserts: %s", i, entry.Key)
		}
		seen[entry.Key] = true
	}
}

func TestTaskRemoveLog(t *testing.T) {
	task := newTask(1, "Write docs", nil)
	entry := task.AddLog("user-1", "note")
	keep := task.AddLog("user-1", "keep me")

	if err := task.RemoveLog(entry.Key); err != nil {
		t.Fatalf("RemoveLog failed: %v", err)
	}
	if len(task.Logs) != 1 || task.Logs[0].Key != keep.Key {
		t.Fatalf("unexpected logs after removal: %+v", task.Logs)
	}

	err := task.RemoveLog(entry.Key)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("removing absent key: error = %v, want *NotFoundError", err)
	}
}

func TestTaskLogByKey(t *testing.T) {
	task := newTask(1, "Write docs", nil)
	entry := task.AddLog("user-9", "findable")

	got, ok := task.LogByKey(entry.Key)
	if !ok || got.Comment != "findable" {
		t.Fatalf("LogByKey(%q) = %+v, %v", entry.Key, got, ok)
	}
	if _, ok := task.LogByKey("missing"); ok {
		t.Error("LogByKey should miss on unknown key")
	}
}

func TestTaskAssignMemberNoDuplicates(t *testing.T) {
	task := newTask(1, "Write docs", nil)

	task.AssignMember("member-1")
	task.AssignMember("member-1")
	task.AssignMember("member-2")
	task.AssignMember("member-1")

	if len(task.MemberIDs) != 2 {
		t.Fatalf("expected 2 members, got %v", task.MemberIDs)
	}
	if !task.HasMember("member-1") || !task.HasMember("member-2") {
		t.Errorf("membership check failed: %v", task.MemberIDs)
	}
}

func TestTaskUnassignMemberIdempotent(t *testing.T) {
	task := newTask(1, "Write docs", nil)
	task.AssignMember("member-1")

	task.UnassignMember("member-1")
	task.UnassignMember("member-1") // absent, must not panic or error

	if len(task.MemberIDs) != 0 {
		t.Errorf("expected no members, got %v", task.MemberIDs)
	}
}

func TestTaskFieldSetters(t *testing.T) {
	task := newTask(1, "Write docs", nil)

	if task.Status != StatusPending {
		t.Errorf("default status = %q, want %q", task.Status, StatusPending)
	}
	task.ChangeStatus(StatusApprovalPending)
	task.ChangePriority(PriorityUrgent)
	task.ChangeDescription("waiting on review")
	task.SetArchived(true)

	if task.Status != StatusApprovalPending || task.Priority != PriorityUrgent {
		t.Errorf("setters not applied: %+v", task)
	}
	if task.Description != "waiting on review" || !task.Archived {
		t.Errorf("setters not applied: %+v", task)
	}
}

func TestTaskUnixDeadline(t *testing.T) {
	task := newTask(1, "No deadline", nil)
	if _, err := task.UnixDeadline(); !errors.Is(err, ErrNoDeadline) {
		t.Fatalf("expected ErrNoDeadline, got %v", err)
	}

	d, err := ParseDeadline("01 01 2025")
	if err != nil {
		t.Fatalf("ParseDeadline failed: %v", err)
	}
	task.Deadline = d
	unix, err := task.UnixDeadline()
	if err != nil {
		t.Fatalf("UnixDeadline failed: %v", err)
	}
	if unix != d.Unix() {
		t.Errorf("UnixDeadline = %d, want %d", unix, d.Unix())
	}
}

func TestValidateStructNonStructInput(t *testing.T) {
	// Non-struct input must come back as an error, not a panic.
	if err := ValidateStruct(42); err == nil {
		t.Fatal("expected an error for non-struct input")
	}
	if err := ValidateStruct(nil); err == nil {
		t.Fatal("expected an error for nil input")
	}
}

func TestValidateStructReportsFieldFailures(t *testing.T) {
	task := newTask(1, "", nil)
	err := ValidateStruct(*task)
	if err == nil {
		t.Fatal("expected a validation error for an empty name")
	}
	if !strings.Contains(err.Error(), "Name") {
		t.Errorf("error %q does not mention the failing field", err)
	}
}
