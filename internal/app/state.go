package app

import (
	"slices"

	"github.com/evanschultz/achiever/internal/domain"
)

// State is an immutable snapshot of the store. Later mutations never change a State that
// was already handed out; callers must not modify the slices they receive.
type State struct {
	CurrentUser *domain.User
	Users       []domain.User
	Targets     []domain.Target
	Version     uint64
}

// emptyState returns the state of a store with nothing persisted.
func emptyState() State {
	return State{
		Users:   []domain.User{},
		Targets: []domain.Target{},
	}
}

// TargetsForUser returns the targets owned by userID in collection order.
func (s State) TargetsForUser(userID string) []domain.Target {
	out := make([]domain.Target, 0)
	for _, target := range s.Targets {
		if target.UserID == userID {
			out = append(out, target)
		}
	}
	return out
}

// FindTarget returns the target with id.
func (s State) FindTarget(id string) (domain.Target, bool) {
	idx := slices.IndexFunc(s.Targets, func(t domain.Target) bool { return t.ID == id })
	if idx < 0 {
		return domain.Target{}, false
	}
	return s.Targets[idx], true
}

func targetKey(t domain.Target) string     { return t.ID }
func actionKey(a domain.Action) string     { return a.ID }
func stepKey(s domain.Step) string         { return s.ID }
func taskKey(t domain.Task) string         { return t.ID }
func obstacleKey(o domain.Obstacle) string { return o.ID }

// containsID reports whether any item has id.
func containsID[T any](items []T, id string, key func(T) string) bool {
	return slices.IndexFunc(items, func(item T) bool { return key(item) == id }) >= 0
}

// replaceByID applies fn to the item with id and returns a new slice holding the result.
// The input slice is never written, so older snapshots keep their values.
func replaceByID[T any](items []T, id string, key func(T) string, fn func(T) (T, error)) ([]T, bool, error) {
	idx := slices.IndexFunc(items, func(item T) bool { return key(item) == id })
	if idx < 0 {
		return items, false, nil
	}
	next, err := fn(items[idx])
	if err != nil {
		return items, true, err
	}
	out := slices.Clone(items)
	out[idx] = next
	return out, true, nil
}

// removeByID returns a new slice without the items matching id.
func removeByID[T any](items []T, id string, key func(T) string) ([]T, bool) {
	if !containsID(items, id, key) {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out, true
}

// appendCopy returns a new slice with item appended; items is left untouched.
func appendCopy[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}
