package pipeline

// Typed is anything carrying a task type, so callers can filter their own
// task structs without converting them.
type Typed interface {
	GetTaskType() string
}

// FilterTasks keeps tasks of unknown type plus tasks that belong to the
// current or the next stage.
func FilterTasks[T Typed](tasks []T, current Stage) []T {
	next, hasNext := NextStage(current)

	out := make([]T, 0, len(tasks))
	for _, t := range tasks {
		st, known := StageForTaskType(t.GetTaskType())
		if !known {
			out = append(out, t)
			continue
		}
		if st == current || (hasNext && st == next) {
			out = append(out, t)
		}
	}
	return out
}

// GroupTasks buckets tasks by stage. Unknown types land under Other.
func GroupTasks[T Typed](tasks []T) map[Stage][]T {
	grouped := make(map[Stage][]T)
	for _, t := range tasks {
		st, known := StageForTaskType(t.GetTaskType())
		if !known {
			st = Other
		}
		grouped[st] = append(grouped[st], t)
	}
	return grouped
}

// TasksForStage returns tasks whose type maps exactly to stage.
func TasksForStage[T Typed](tasks []T, stage Stage) []T {
	out := make([]T, 0)
	for _, t := range tasks {
		st, known := StageForTaskType(t.GetTaskType())
		if known && st == stage {
			out = append(out, t)
		}
	}
	return out
}
