package domain

import (
	"strings"
	"time"
)

// Step is a sub-unit of an action. A nil Tasks slice means the step has no task list.
type Step struct {
	ID          string
	Description string
	Completed   bool
	Tasks       []Task
}

// Task is the smallest completable unit, optionally deadlined.
type Task struct {
	ID          string
	Description string
	Completed   bool
	Deadline    *time.Time
}

// NewStep validates input and constructs an incomplete step without a task list.
func NewStep(id, description string) (Step, error) {
	id = strings.TrimSpace(id)
	description = strings.TrimSpace(description)
	if id == "" {
		return Step{}, ErrInvalidID
	}
	if description == "" {
		return Step{}, ErrInvalidDescription
	}
	return Step{ID: id, Description: description}, nil
}

// TaskInput holds write-time values for NewTask.
type TaskInput struct {
	ID          string
	Description string
	Deadline    *time.Time
}

// NewTask validates input and constructs an incomplete task.
func NewTask(in TaskInput) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Description = strings.TrimSpace(in.Description)
	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Description == "" {
		return Task{}, ErrInvalidDescription
	}
	return Task{
		ID:          in.ID,
		Description: in.Description,
		Deadline:    normalizeDeadline(in.Deadline),
	}, nil
}

// TaskPatch carries partial task edits. Nil fields are left unchanged; ClearDeadline removes the deadline.
type TaskPatch struct {
	Description   *string
	Completed     *bool
	Deadline      *time.Time
	ClearDeadline bool
}

// Apply merges the patch over t.
func (p TaskPatch) Apply(t Task) Task {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	switch {
	case p.ClearDeadline:
		t.Deadline = nil
	case p.Deadline != nil:
		t.Deadline = normalizeDeadline(p.Deadline)
	}
	return t
}

// HasTasks reports whether the step owns a non-empty task list.
func (s Step) HasTasks() bool {
	return len(s.Tasks) > 0
}

// normalizeDeadline copies the deadline so callers cannot alias stored values.
func normalizeDeadline(deadline *time.Time) *time.Time {
	if deadline == nil {
		return nil
	}
	ts := deadline.UTC()
	return &ts
}
