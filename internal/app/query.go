package app

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/evanschultz/achiever/internal/domain"
)

// TargetSort names a target list ordering.
type TargetSort string

// TargetSort values.
const (
	SortRecent   TargetSort = "recent"
	SortProgress TargetSort = "progress"
	SortActions  TargetSort = "actions"
)

// ParseTargetSort validates a sort name. Empty means recent.
func ParseTargetSort(raw string) (TargetSort, error) {
	switch sort := TargetSort(strings.TrimSpace(strings.ToLower(raw))); sort {
	case "":
		return SortRecent, nil
	case SortRecent, SortProgress, SortActions:
		return sort, nil
	default:
		return "", fmt.Errorf("unknown target sort %q", raw)
	}
}

// TargetQuery filters and orders a target listing. Zero values match everything.
type TargetQuery struct {
	UserID     string
	Search     string
	CategoryID string
	Sort       TargetSort
}

// QueryTargets lists targets matching q.
func (s *Store) QueryTargets(q TargetQuery) []domain.Target {
	return FilterTargets(s.Targets(), q)
}

// FilterTargets applies q to targets and returns a new, sorted slice.
func FilterTargets(targets []domain.Target, q TargetQuery) []domain.Target {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Target, 0, len(targets))
	for _, target := range targets {
		if q.UserID != "" && target.UserID != q.UserID {
			continue
		}
		if q.CategoryID != "" && target.CategoryID != q.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(target.Title), search) &&
			!strings.Contains(strings.ToLower(target.Description), search) {
			continue
		}
		out = append(out, target)
	}

	switch q.Sort {
	case SortProgress:
		slices.SortStableFunc(out, func(a, b domain.Target) int {
			return cmp.Compare(b.Progress, a.Progress)
		})
	case SortActions:
		slices.SortStableFunc(out, func(a, b domain.Target) int {
			return cmp.Compare(len(b.Actions), len(a.Actions))
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Target) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}
