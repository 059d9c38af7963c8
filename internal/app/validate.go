package app

import (
	"fmt"
	"strings"

	"github.com/evanschultz/achiever/internal/domain"
)

// checkTargets rejects a target collection that could not be loaded back from a snapshot.
func checkTargets(targets []domain.Target) error {
	seen := map[string]struct{}{}
	for _, target := range targets {
		if err := checkUnique(seen, "target", target.ID); err != nil {
			return err
		}
		if err := checkTarget(target); err != nil {
			return err
		}
	}
	return nil
}

// checkTarget validates a target and everything below it.
func checkTarget(t domain.Target) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: target", domain.ErrInvalidID)
	}
	seen := map[string]struct{}{}
	for _, action := range t.Actions {
		if err := checkUnique(seen, "action", action.ID); err != nil {
			return fmt.Errorf("target %s: %w", t.ID, err)
		}
		if err := checkAction(action); err != nil {
			return fmt.Errorf("target %s: %w", t.ID, err)
		}
	}
	return nil
}

// checkAction validates an action's levels and its steps, tasks and obstacles.
func checkAction(a domain.Action) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: action", domain.ErrInvalidID)
	}
	if !domain.IsValidLevel(a.Urgency) {
		return fmt.Errorf("%w: action %s urgency %q", domain.ErrInvalidLevel, a.ID, a.Urgency)
	}
	if !domain.IsValidLevel(a.Impact) {
		return fmt.Errorf("%w: action %s impact %q", domain.ErrInvalidLevel, a.ID, a.Impact)
	}
	steps := map[string]struct{}{}
	for _, step := range a.Steps {
		if err := checkUnique(steps, "step", step.ID); err != nil {
			return fmt.Errorf("action %s: %w", a.ID, err)
		}
		if err := checkStep(step); err != nil {
			return fmt.Errorf("action %s: %w", a.ID, err)
		}
	}
	obstacles := map[string]struct{}{}
	for _, obstacle := range a.Obstacles {
		if err := checkUnique(obstacles, "obstacle", obstacle.ID); err != nil {
			return fmt.Errorf("action %s: %w", a.ID, err)
		}
	}
	return nil
}

// checkStep validates a step and its task ids.
func checkStep(s domain.Step) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: step", domain.ErrInvalidID)
	}
	tasks := map[string]struct{}{}
	for _, task := range s.Tasks {
		if err := checkUnique(tasks, "task", task.ID); err != nil {
			return fmt.Errorf("step %s: %w", s.ID, err)
		}
	}
	return nil
}

// checkUnique records id in seen and rejects empty or repeated values.
func checkUnique(seen map[string]struct{}, kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidID, kind)
	}
	if _, ok := seen[id]; ok {
		return alreadyExists(kind, id)
	}
	seen[id] = struct{}{}
	return nil
}
