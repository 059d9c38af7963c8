package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/achiever/internal/app"
	"github.com/evanschultz/achiever/internal/domain"
)

var errSignedOut = errors.New("no user signed in; run `achiever user signin` first")

// findByRef matches ref against item ids: an exact id wins, otherwise a unique prefix.
func findByRef[T any](kind string, items []T, ref string, id func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%s id is required", kind)
	}
	var (
		match   T
		matches int
	)
	for _, item := range items {
		itemID := id(item)
		if itemID == ref {
			return item, nil
		}
		if strings.HasPrefix(itemID, ref) {
			match = item
			matches++
		}
	}
	switch matches {
	case 0:
		return zero, fmt.Errorf("%w: %s %s", app.ErrNotFound, kind, ref)
	case 1:
		return match, nil
	default:
		return zero, fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, matches)
	}
}

// currentUser returns the signed-in user or errSignedOut.
func currentUser(store *app.Store) (domain.User, error) {
	user, ok := store.CurrentUser()
	if !ok {
		return domain.User{}, errSignedOut
	}
	return user, nil
}

// resolveTarget finds one of the current user's targets.
func resolveTarget(store *app.Store, ref string) (domain.Target, error) {
	user, err := currentUser(store)
	if err != nil {
		return domain.Target{}, err
	}
	return findByRef("target", store.TargetsForUser(user.ID), ref, func(t domain.Target) string { return t.ID })
}

func resolveAction(target domain.Target, ref string) (domain.Action, error) {
	return findByRef("action", target.Actions, ref, func(a domain.Action) string { return a.ID })
}

func resolveStep(action domain.Action, ref string) (domain.Step, error) {
	return findByRef("step", action.Steps, ref, func(s domain.Step) string { return s.ID })
}

func resolveTask(step domain.Step, ref string) (domain.Task, error) {
	return findByRef("task", step.Tasks, ref, func(t domain.Task) string { return t.ID })
}

func resolveObstacle(action domain.Action, ref string) (domain.Obstacle, error) {
	return findByRef("obstacle", action.Obstacles, ref, func(o domain.Obstacle) string { return o.ID })
}

// actionPath resolves target and action refs in one go.
func actionPath(store *app.Store, targetRef, actionRef string) (domain.Target, domain.Action, error) {
	target, err := resolveTarget(store, targetRef)
	if err != nil {
		return domain.Target{}, domain.Action{}, err
	}
	action, err := resolveAction(target, actionRef)
	if err != nil {
		return domain.Target{}, domain.Action{}, err
	}
	return target, action, nil
}

// stepPath resolves target, action and step refs.
func stepPath(store *app.Store, targetRef, actionRef, stepRef string) (domain.Target, domain.Action, domain.Step, error) {
	target, action, err := actionPath(store, targetRef, actionRef)
	if err != nil {
		return domain.Target{}, domain.Action{}, domain.Step{}, err
	}
	step, err := resolveStep(action, stepRef)
	if err != nil {
		return domain.Target{}, domain.Action{}, domain.Step{}, err
	}
	return target, action, step, nil
}

// parseDeadline accepts a calendar date or a full RFC3339 timestamp.
func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.DateOnly, raw); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: use YYYY-MM-DD or RFC3339", raw)
	}
	return ts, nil
}
