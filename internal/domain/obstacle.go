package domain

import (
	"strings"
	"time"
)

// Obstacle is a blocker on an action. Resolution fields are set only while Resolved.
type Obstacle struct {
	ID             string
	Description    string
	Resolved       bool
	Resolution     string
	ResolutionDate *time.Time
}

// NewObstacle validates input and constructs an unresolved obstacle.
func NewObstacle(id, description string) (Obstacle, error) {
	id = strings.TrimSpace(id)
	description = strings.TrimSpace(description)
	if id == "" {
		return Obstacle{}, ErrInvalidID
	}
	if description == "" {
		return Obstacle{}, ErrInvalidDescription
	}
	return Obstacle{ID: id, Description: description}, nil
}

// ObstaclePatch carries partial obstacle edits. Resolution state changes go through Resolve/Unresolve.
type ObstaclePatch struct {
	Description *string
}

// Apply merges the patch over o.
func (p ObstaclePatch) Apply(o Obstacle) Obstacle {
	if p.Description != nil {
		o.Description = *p.Description
	}
	return o
}

// Resolve returns a resolved copy of o.
func (o Obstacle) Resolve(resolution string, at time.Time) Obstacle {
	ts := at.UTC()
	o.Resolved = true
	o.Resolution = resolution
	o.ResolutionDate = &ts
	return o
}

// Unresolve returns an unresolved copy of o with both resolution fields cleared.
func (o Obstacle) Unresolve() Obstacle {
	o.Resolved = false
	o.Resolution = ""
	o.ResolutionDate = nil
	return o
}

// Normalized clears resolution fields on an unresolved obstacle.
func (o Obstacle) Normalized() Obstacle {
	if o.Resolved {
		return o
	}
	return o.Unresolve()
}
