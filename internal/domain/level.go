package domain

import (
	"slices"
	"strings"
)

// Level grades an action's urgency or impact, and names a priority bucket.
type Level string

// Level values.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// validLevels stores all supported level values in descending priority order.
var validLevels = []Level{LevelHigh, LevelMedium, LevelLow}

// Levels returns every level from highest to lowest.
func Levels() []Level {
	return slices.Clone(validLevels)
}

// NormalizeLevel trims and lowercases a level value.
func NormalizeLevel(level Level) Level {
	return Level(strings.TrimSpace(strings.ToLower(string(level))))
}

// IsValidLevel reports whether level is one of the supported values.
func IsValidLevel(level Level) bool {
	return slices.Contains(validLevels, NormalizeLevel(level))
}

// ParseLevel normalizes and validates a raw level string.
func ParseLevel(raw string) (Level, error) {
	level := NormalizeLevel(Level(raw))
	if !slices.Contains(validLevels, level) {
		return "", ErrInvalidLevel
	}
	return level, nil
}

// PriorityFor buckets an urgency/impact pair. High wins over medium, medium over low.
func PriorityFor(urgency, impact Level) Level {
	urgency = NormalizeLevel(urgency)
	impact = NormalizeLevel(impact)
	switch {
	case urgency == LevelHigh || impact == LevelHigh:
		return LevelHigh
	case urgency == LevelMedium || impact == LevelMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}
