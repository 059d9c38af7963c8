package app

import (
	"strings"
	"time"

	"github.com/evanschultz/achiever/internal/domain"
)

// AddObstacle appends an obstacle to an action.
func (s *Store) AddObstacle(targetID, actionID string, obstacle domain.Obstacle) error {
	if strings.TrimSpace(obstacle.ID) == "" {
		return domain.ErrInvalidID
	}
	return s.mutateAction("add_obstacle", targetID, actionID, func(a domain.Action) (domain.Action, error) {
		if containsID(a.Obstacles, obstacle.ID, obstacleKey) {
			return a, alreadyExists("obstacle", targetID, actionID, obstacle.ID)
		}
		a.Obstacles = appendCopy(a.Obstacles, obstacle.Normalized())
		return a, nil
	})
}

// UpdateObstacle merges a partial edit into an obstacle.
func (s *Store) UpdateObstacle(targetID, actionID, obstacleID string, patch domain.ObstaclePatch) error {
	return s.mutateObstacle("update_obstacle", targetID, actionID, obstacleID, patch.Apply)
}

// ResolveObstacle marks an obstacle resolved with a resolution note and date.
func (s *Store) ResolveObstacle(targetID, actionID, obstacleID, resolution string, at time.Time) error {
	return s.mutateObstacle("resolve_obstacle", targetID, actionID, obstacleID, func(o domain.Obstacle) domain.Obstacle {
		return o.Resolve(resolution, at)
	})
}

// UnresolveObstacle reopens an obstacle and clears its resolution fields.
func (s *Store) UnresolveObstacle(targetID, actionID, obstacleID string) error {
	return s.mutateObstacle("unresolve_obstacle", targetID, actionID, obstacleID, domain.Obstacle.Unresolve)
}

// DeleteObstacle removes an obstacle from an action.
func (s *Store) DeleteObstacle(targetID, actionID, obstacleID string) error {
	return s.mutateAction("delete_obstacle", targetID, actionID, func(a domain.Action) (domain.Action, error) {
		obstacles, ok := removeByID(a.Obstacles, obstacleID, obstacleKey)
		if !ok {
			return a, notFound("obstacle", targetID, actionID, obstacleID)
		}
		a.Obstacles = obstacles
		return a, nil
	})
}

// mutateObstacle replaces one obstacle with fn's result.
func (s *Store) mutateObstacle(op, targetID, actionID, obstacleID string, fn func(domain.Obstacle) domain.Obstacle) error {
	return s.mutateAction(op, targetID, actionID, func(a domain.Action) (domain.Action, error) {
		obstacles, ok, err := replaceByID(a.Obstacles, obstacleID, obstacleKey, func(o domain.Obstacle) (domain.Obstacle, error) {
			return fn(o), nil
		})
		if err != nil {
			return a, err
		}
		if !ok {
			return a, notFound("obstacle", targetID, actionID, obstacleID)
		}
		a.Obstacles = obstacles
		return a, nil
	})
}
