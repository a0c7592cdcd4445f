package engine

import (
	"time"

	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"
)

// Outcome is the terminal result of one task in a run.
type Outcome struct {
	TaskID   string        `json:"task_id"`
	Level    int           `json:"level"`
	Status   task.Status   `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Summary aggregates one full run. Callers always receive a complete
// summary after Run returns, regardless of how many tasks failed.
type Summary struct {
	RunID      string    `json:"run_id"`
	TotalTasks int       `json:"total_tasks"`
	Levels     int       `json:"levels"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Blocked    int       `json:"blocked,omitempty"`
	Cancelled  int       `json:"cancelled,omitempty"`
	FailedIDs  []string  `json:"failed_ids,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`

	// Duration sums completed_at - started_at over every completed task.
	Duration time.Duration `json:"duration"`

	// CheckpointErrors records persistence failures; snapshots are still
	// kept in memory when the saver misbehaves.
	CheckpointErrors []string `json:"checkpoint_errors,omitempty"`
}

// finalize derives counts from the recorded outcomes and task states.
func (s *Summary) finalize(g *graph.Graph) {
	var failedIDs []string
	for _, o := range s.Outcomes {
		switch o.Status {
		case task.StatusCompleted:
			s.Completed++
		case task.StatusFailed:
			s.Failed++
			failedIDs = append(failedIDs, o.TaskID)
		case task.StatusBlocked:
			s.Blocked++
		case task.StatusCancelled:
			s.Cancelled++
		}
	}
	s.FailedIDs = sortIDs(failedIDs)

	g.Each(func(t *task.Task) {
		if t.Status == task.StatusCompleted && !t.CompletedAt.IsZero() && !t.StartedAt.IsZero() {
			s.Duration += t.CompletedAt.Sub(t.StartedAt)
		}
	})
}
