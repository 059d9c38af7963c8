package app

import (
	"github.com/evanschultz/achiever/internal/domain"
)

// AddTarget appends a target. Its progress is derived from whatever actions it carries.
func (s *Store) AddTarget(target domain.Target) error {
	target = normalizeTarget(target)
	if err := checkTarget(target); err != nil {
		return err
	}
	return s.apply("add_target", func(st State) (State, error) {
		if containsID(st.Targets, target.ID, targetKey) {
			return st, alreadyExists("target", target.ID)
		}
		st.Targets = appendCopy(st.Targets, target)
		return st, nil
	})
}

// UpdateTarget shallow-merges metadata edits. Progress is not recomputed.
func (s *Store) UpdateTarget(targetID string, patch domain.TargetPatch) error {
	return s.mutateTarget("update_target", targetID, false, func(t domain.Target) (domain.Target, error) {
		return patch.Apply(t), nil
	})
}

// DeleteTarget removes a target and everything below it.
func (s *Store) DeleteTarget(targetID string) error {
	return s.apply("delete_target", func(st State) (State, error) {
		targets, ok := removeByID(st.Targets, targetID, targetKey)
		if !ok {
			return st, notFound("target", targetID)
		}
		st.Targets = targets
		return st, nil
	})
}

// AddAction appends an action to a target.
func (s *Store) AddAction(targetID string, action domain.Action) error {
	action = action.Normalized()
	if err := checkAction(action); err != nil {
		return err
	}
	return s.mutateTarget("add_action", targetID, true, func(t domain.Target) (domain.Target, error) {
		if containsID(t.Actions, action.ID, actionKey) {
			return t, alreadyExists("action", targetID, action.ID)
		}
		t.Actions = appendCopy(t.Actions, action)
		return t, nil
	})
}

// UpdateAction replaces the action with the same ID.
func (s *Store) UpdateAction(targetID string, action domain.Action) error {
	action = action.Normalized()
	if err := checkAction(action); err != nil {
		return err
	}
	return s.mutateAction("update_action", targetID, action.ID, func(domain.Action) (domain.Action, error) {
		return action, nil
	})
}

// DeleteAction removes an action with its steps, tasks and obstacles.
func (s *Store) DeleteAction(targetID, actionID string) error {
	return s.mutateTarget("delete_action", targetID, true, func(t domain.Target) (domain.Target, error) {
		actions, ok := removeByID(t.Actions, actionID, actionKey)
		if !ok {
			return t, notFound("action", targetID, actionID)
		}
		t.Actions = actions
		return t, nil
	})
}

// mutateTarget replaces one target with fn's result, recomputing its progress when asked.
func (s *Store) mutateTarget(op, targetID string, recompute bool, fn func(domain.Target) (domain.Target, error)) error {
	return s.apply(op, func(st State) (State, error) {
		targets, ok, err := replaceByID(st.Targets, targetID, targetKey, func(t domain.Target) (domain.Target, error) {
			next, err := fn(t)
			if err != nil {
				return t, err
			}
			if recompute {
				next = next.WithRecomputedProgress()
			}
			return next, nil
		})
		if err != nil {
			return st, err
		}
		if !ok {
			return st, notFound("target", targetID)
		}
		st.Targets = targets
		return st, nil
	})
}

// mutateAction replaces one action with fn's result and recomputes the target's progress.
func (s *Store) mutateAction(op, targetID, actionID string, fn func(domain.Action) (domain.Action, error)) error {
	return s.mutateTarget(op, targetID, true, func(t domain.Target) (domain.Target, error) {
		actions, ok, err := replaceByID(t.Actions, actionID, actionKey, fn)
		if err != nil {
			return t, err
		}
		if !ok {
			return t, notFound("action", targetID, actionID)
		}
		t.Actions = actions
		return t, nil
	})
}
