package domain

import "strings"

// Action is a concrete initiative toward a target. It has no stored progress field.
type Action struct {
	ID        string
	Title     string
	Urgency   Level
	Impact    Level
	Steps     []Step
	Obstacles []Obstacle
}

// ActionInput holds write-time values for NewAction.
type ActionInput struct {
	ID      string
	Title   string
	Urgency Level
	Impact  Level
}

// NewAction validates input and constructs an action. Empty levels default to medium.
func NewAction(in ActionInput) (Action, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Action{}, ErrInvalidID
	}
	if in.Title == "" {
		return Action{}, ErrInvalidTitle
	}
	urgency, err := levelOrDefault(in.Urgency)
	if err != nil {
		return Action{}, err
	}
	impact, err := levelOrDefault(in.Impact)
	if err != nil {
		return Action{}, err
	}
	return Action{
		ID:        in.ID,
		Title:     in.Title,
		Urgency:   urgency,
		Impact:    impact,
		Steps:     []Step{},
		Obstacles: []Obstacle{},
	}, nil
}

// Priority returns the bucket this action's tasks fall into.
func (a Action) Priority() Level {
	return PriorityFor(a.Urgency, a.Impact)
}

// Progress returns the derived completion percentage.
func (a Action) Progress() int {
	return ActionProgress(a)
}

// Normalized returns a copy with lowercased levels, empty levels set to medium, and every
// obstacle's resolution fields made consistent. Unknown levels are kept for the caller to reject.
func (a Action) Normalized() Action {
	if level := NormalizeLevel(a.Urgency); level == "" {
		a.Urgency = LevelMedium
	} else if IsValidLevel(level) {
		a.Urgency = level
	}
	if level := NormalizeLevel(a.Impact); level == "" {
		a.Impact = LevelMedium
	} else if IsValidLevel(level) {
		a.Impact = level
	}
	if len(a.Obstacles) == 0 {
		return a
	}
	obstacles := make([]Obstacle, len(a.Obstacles))
	for i, o := range a.Obstacles {
		obstacles[i] = o.Normalized()
	}
	a.Obstacles = obstacles
	return a
}

func levelOrDefault(level Level) (Level, error) {
	level = NormalizeLevel(level)
	if level == "" {
		return LevelMedium, nil
	}
	if !IsValidLevel(level) {
		return "", ErrInvalidLevel
	}
	return level, nil
}
