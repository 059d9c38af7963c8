package domain

import "math"

// StepComplete reports whether a step counts as done. A step with tasks is done iff every
// task is done; its own flag is ignored then. Otherwise the flag decides.
func StepComplete(s Step) bool {
	if len(s.Tasks) == 0 {
		return s.Completed
	}
	for _, task := range s.Tasks {
		if !task.Completed {
			return false
		}
	}
	return true
}

// ActionProgress returns round(100 * completed items / items), where items are the
// action's steps and obstacles. An action with neither is at 0.
func ActionProgress(a Action) int {
	total := len(a.Steps) + len(a.Obstacles)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, step := range a.Steps {
		if StepComplete(step) {
			completed++
		}
	}
	for _, obstacle := range a.Obstacles {
		if obstacle.Resolved {
			completed++
		}
	}
	return percent(completed, total)
}

// TargetProgress returns the rounded mean of each action's derived progress, 0 without actions.
func TargetProgress(actions []Action) int {
	if len(actions) == 0 {
		return 0
	}
	sum := 0
	for _, action := range actions {
		sum += ActionProgress(action)
	}
	return RoundedMean(sum, len(actions))
}

// RoundedMean returns round(sum / n) for non-negative inputs, 0 when n is 0.
func RoundedMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func percent(part, total int) int {
	return int(math.Round(float64(part) * 100 / float64(total)))
}
