package app

import (
	"strings"
	"time"

	"github.com/evanschultz/achiever/internal/domain"
)

// AddStep appends a step to an action.
func (s *Store) AddStep(targetID, actionID string, step domain.Step) error {
	if err := checkStep(step); err != nil {
		return err
	}
	return s.mutateAction("add_step", targetID, actionID, func(a domain.Action) (domain.Action, error) {
		if containsID(a.Steps, step.ID, stepKey) {
			return a, alreadyExists("step", targetID, actionID, step.ID)
		}
		a.Steps = appendCopy(a.Steps, step)
		return a, nil
	})
}

// UpdateStep replaces the step with the same ID.
func (s *Store) UpdateStep(targetID, actionID string, step domain.Step) error {
	if err := checkStep(step); err != nil {
		return err
	}
	return s.mutateStep("update_step", targetID, actionID, step.ID, func(domain.Step) (domain.Step, error) {
		return step, nil
	})
}

// DeleteStep removes a step and its tasks.
func (s *Store) DeleteStep(targetID, actionID, stepID string) error {
	return s.mutateAction("delete_step", targetID, actionID, func(a domain.Action) (domain.Action, error) {
		steps, ok := removeByID(a.Steps, stepID, stepKey)
		if !ok {
			return a, notFound("step", targetID, actionID, stepID)
		}
		a.Steps = steps
		return a, nil
	})
}

// AddTask appends a task to a step, creating its task list if it has none.
func (s *Store) AddTask(targetID, actionID, stepID string, task domain.Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return domain.ErrInvalidID
	}
	return s.mutateStep("add_task", targetID, actionID, stepID, func(st domain.Step) (domain.Step, error) {
		if containsID(st.Tasks, task.ID, taskKey) {
			return st, alreadyExists("task", targetID, actionID, stepID, task.ID)
		}
		st.Tasks = appendCopy(st.Tasks, task)
		return st, nil
	})
}

// UpdateTask merges a partial edit into a task.
func (s *Store) UpdateTask(targetID, actionID, stepID, taskID string, patch domain.TaskPatch) error {
	return s.mutateTask("update_task", targetID, actionID, stepID, taskID, func(t domain.Task) domain.Task {
		return patch.Apply(t)
	})
}

// UpdateTaskDeadline sets a task's deadline; nil clears it.
func (s *Store) UpdateTaskDeadline(targetID, actionID, stepID, taskID string, deadline *time.Time) error {
	patch := domain.TaskPatch{Deadline: deadline, ClearDeadline: deadline == nil}
	return s.mutateTask("update_task_deadline", targetID, actionID, stepID, taskID, func(t domain.Task) domain.Task {
		return patch.Apply(t)
	})
}

// ToggleTask flips a task's completion. Toggling twice restores the original state.
func (s *Store) ToggleTask(targetID, actionID, stepID, taskID string) error {
	return s.mutateTask("toggle_task", targetID, actionID, stepID, taskID, func(t domain.Task) domain.Task {
		t.Completed = !t.Completed
		return t
	})
}

// DeleteTask removes a task from a step.
func (s *Store) DeleteTask(targetID, actionID, stepID, taskID string) error {
	return s.mutateStep("delete_task", targetID, actionID, stepID, func(st domain.Step) (domain.Step, error) {
		tasks, ok := removeByID(st.Tasks, taskID, taskKey)
		if !ok {
			return st, notFound("task", targetID, actionID, stepID, taskID)
		}
		st.Tasks = tasks
		return st, nil
	})
}

// mutateStep replaces one step with fn's result.
func (s *Store) mutateStep(op, targetID, actionID, stepID string, fn func(domain.Step) (domain.Step, error)) error {
	return s.mutateAction(op, targetID, actionID, func(a domain.Action) (domain.Action, error) {
		steps, ok, err := replaceByID(a.Steps, stepID, stepKey, fn)
		if err != nil {
			return a, err
		}
		if !ok {
			return a, notFound("step", targetID, actionID, stepID)
		}
		a.Steps = steps
		return a, nil
	})
}

// mutateTask replaces one task with fn's result. A step without a task list has no tasks to edit.
func (s *Store) mutateTask(op, targetID, actionID, stepID, taskID string, fn func(domain.Task) domain.Task) error {
	return s.mutateStep(op, targetID, actionID, stepID, func(st domain.Step) (domain.Step, error) {
		tasks, ok, err := replaceByID(st.Tasks, taskID, taskKey, func(t domain.Task) (domain.Task, error) {
			return fn(t), nil
		})
		if err != nil {
			return st, err
		}
		if !ok {
			return st, notFound("task", targetID, actionID, stepID, taskID)
		}
		st.Tasks = tasks
		return st, nil
	})
}
