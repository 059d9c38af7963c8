package domain

import (
	"strings"
	"time"
)

// Target is a top-level user goal. Progress is derived from its actions.
type Target struct {
	ID            string
	UserID        string
	Title         string
	Description   string
	CategoryID    string
	SubcategoryID string
	Progress      int
	Actions       []Action
	CreatedAt     time.Time
}

// TargetInput holds write-time values for NewTarget.
type TargetInput struct {
	ID            string
	UserID        string
	Title         string
	Description   string
	CategoryID    string
	SubcategoryID string
}

// NewTarget validates input and constructs a target with zero progress and no actions.
func NewTarget(in TargetInput, now time.Time) (Target, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.UserID = strings.TrimSpace(in.UserID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" || in.UserID == "" {
		return Target{}, ErrInvalidID
	}
	if in.Title == "" {
		return Target{}, ErrInvalidTitle
	}
	return Target{
		ID:            in.ID,
		UserID:        in.UserID,
		Title:         in.Title,
		Description:   strings.TrimSpace(in.Description),
		CategoryID:    strings.TrimSpace(in.CategoryID),
		SubcategoryID: strings.TrimSpace(in.SubcategoryID),
		Progress:      0,
		Actions:       []Action{},
		CreatedAt:     now.UTC(),
	}, nil
}

// TargetPatch carries caller-driven metadata edits. Nil fields are left unchanged.
type TargetPatch struct {
	Title         *string
	Description   *string
	CategoryID    *string
	SubcategoryID *string
}

// Apply shallow-merges the patch over t. Progress and actions are untouched.
func (p TargetPatch) Apply(t Target) Target {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		t.SubcategoryID = *p.SubcategoryID
	}
	return t
}

// Empty reports whether the patch changes nothing.
func (p TargetPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.CategoryID == nil && p.SubcategoryID == nil
}

// WithRecomputedProgress returns a copy of t whose Progress matches its actions.
func (t Target) WithRecomputedProgress() Target {
	t.Progress = TargetProgress(t.Actions)
	return t
}
