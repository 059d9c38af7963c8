package app

import (
	"math"
	"slices"
	"time"

	"github.com/evanschultz/achiever/internal/domain"
)

// DefaultUpcomingLimit caps the upcoming task list when no limit is configured.
const DefaultUpcomingLimit = 10

// TaskRef is a task annotated with the step, action and target that own it.
type TaskRef struct {
	Task   domain.Task
	Step   domain.Step
	Action domain.Action
	Target domain.Target
}

// Priority returns the bucket of the owning action.
func (r TaskRef) Priority() domain.Level {
	return r.Action.Priority()
}

// Statistics is a read-only aggregate over one user's targets.
type Statistics struct {
	UserID         string
	TargetCount    int
	TotalProgress  int
	Tasks          []TaskRef
	CompletedTasks int
	OpenObstacles  int
	ByPriority     map[domain.Level][]TaskRef
	Upcoming       []TaskRef
}

// ComputeStatistics derives statistics for userID from targets. A limit <= 0 uses
// DefaultUpcomingLimit.
func ComputeStatistics(targets []domain.Target, userID string, upcomingLimit int) Statistics {
	owned := make([]domain.Target, 0, len(targets))
	for _, target := range targets {
		if target.UserID == userID {
			owned = append(owned, target)
		}
	}

	stats := Statistics{
		UserID:      userID,
		TargetCount: len(owned),
		Tasks:       FlattenTasks(owned),
	}
	sum := 0
	for _, target := range owned {
		sum += target.Progress
		for _, action := range target.Actions {
			for _, obstacle := range action.Obstacles {
				if !obstacle.Resolved {
					stats.OpenObstacles++
				}
			}
		}
	}
	stats.TotalProgress = domain.RoundedMean(sum, len(owned))
	for _, ref := range stats.Tasks {
		if ref.Task.Completed {
			stats.CompletedTasks++
		}
	}
	stats.ByPriority = BucketByPriority(stats.Tasks)
	stats.Upcoming = UpcomingTasks(stats.Tasks, upcomingLimit)
	return stats
}

// Statistics computes statistics for the signed-in user. It is empty when nobody is signed in.
func (s *Store) Statistics(upcomingLimit int) Statistics {
	st := s.Snapshot()
	if st.CurrentUser == nil {
		return ComputeStatistics(nil, "", upcomingLimit)
	}
	return ComputeStatistics(st.Targets, st.CurrentUser.ID, upcomingLimit)
}

// FlattenTasks lists every task in tree order: target, action, step, task.
func FlattenTasks(targets []domain.Target) []TaskRef {
	out := make([]TaskRef, 0)
	for _, target := range targets {
		for _, action := range target.Actions {
			for _, step := range action.Steps {
				for _, task := range step.Tasks {
					out = append(out, TaskRef{Task: task, Step: step, Action: action, Target: target})
				}
			}
		}
	}
	return out
}

// BucketByPriority groups refs into high, medium and low. Every bucket key is present.
func BucketByPriority(refs []TaskRef) map[domain.Level][]TaskRef {
	out := make(map[domain.Level][]TaskRef, 3)
	for _, level := range domain.Levels() {
		out[level] = []TaskRef{}
	}
	for _, ref := range refs {
		level := ref.Priority()
		out[level] = append(out[level], ref)
	}
	return out
}

// DaysUntil returns the whole days from now until deadline, rounded up. Overdue deadlines are negative.
func DaysUntil(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// UpcomingTasks keeps incomplete tasks, dated ones first by ascending deadline and undated
// ones after in their original order, truncated to limit.
func UpcomingTasks(refs []TaskRef, limit int) []TaskRef {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	dated := make([]TaskRef, 0)
	undated := make([]TaskRef, 0)
	for _, ref := range refs {
		if ref.Task.Completed {
			continue
		}
		if ref.Task.Deadline == nil {
			undated = append(undated, ref)
			continue
		}
		dated = append(dated, ref)
	}
	slices.SortStableFunc(dated, func(a, b TaskRef) int {
		return a.Task.Deadline.Compare(*b.Task.Deadline)
	})
	out := append(dated, undated...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
