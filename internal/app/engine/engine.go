// Package engine orchestrates full runs over a task graph: level-by-level
// concurrent fan-out with a join barrier per level, checkpointing at level
// boundaries, and partial-failure isolation.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/plan"
	"github.com/taskflow/taskflow/internal/core/task"
	imetrics "github.com/taskflow/taskflow/internal/infrastructure/metrics"
)

// Runner executes one opaque task body. Implementations receive the shared
// execution context read-only and return the task's outputs or an error.
type Runner interface {
	Run(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (task.Values, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (task.Values, error)

func (f RunnerFunc) Run(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (task.Values, error) {
	return f(ctx, t, execCtx)
}

// Config holds engine configuration. The zero value selects the baseline
// behavior: unbounded-by-CPU parallelism inside a level, no task timeout, no
// abort policy, and failed dependencies NOT blocking dependents.
type Config struct {
	// Parallelism caps concurrent task bodies within a level.
	// Defaults to the CPU count when <= 0.
	Parallelism int

	// TaskTimeout bounds each task body; an overrun marks the task failed
	// with a timeout cause. Zero disables the deadline.
	TaskTimeout time.Duration

	// MaxFailures aborts remaining levels once this many tasks have failed;
	// not-yet-started tasks are marked cancelled. Zero disables the policy.
	MaxFailures int

	// BlockDependentsOnFailure marks a task blocked instead of running it
	// when any of its dependencies did not complete. Off by default, which
	// preserves the baseline eligibility check (completed-set membership
	// only).
	BlockDependentsOnFailure bool

	// Saver, when set, persists every level-boundary checkpoint.
	Saver checkpoint.Saver
}

// Engine drives task graph execution.
type Engine struct {
	runner Runner
	config Config

	levelsRun int64
	tasksRun  int64
	failures  int64
}

// New creates an engine with the given task runner and configuration.
func New(runner Runner, config Config) *Engine {
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.NumCPU()
		if config.Parallelism < 1 {
			config.Parallelism = 1
		}
	}
	return &Engine{runner: runner, config: config}
}

// Run executes the full level plan of the graph and always returns a
// complete summary once execution has started; the error return is reserved
// for structural failures (no runner, cyclic graph) surfaced before any task
// runs.
func (e *Engine) Run(ctx context.Context, g *graph.Graph) (*Summary, error) {
	return e.RunWith(ctx, g, task.NewExecutionContext(), nil)
}

// RunWith executes against a caller-supplied execution context and
// checkpoint store, so callers can take on-demand snapshots of the same run
// state between levels. A nil store creates one internally.
func (e *Engine) RunWith(ctx context.Context, g *graph.Graph, execCtx *task.ExecutionContext, store *checkpoint.Store) (*Summary, error) {
	if e.runner == nil {
		return nil, ErrNilRunner
	}
	levels, err := plan.Levels(g)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	if store == nil {
		store = checkpoint.NewStore(g, execCtx).WithRunID(runID)
		if e.config.Saver != nil {
			store = store.WithSaver(e.config.Saver)
		}
	}

	summary := &Summary{
		RunID:      runID,
		TotalTasks: g.Len(),
		Levels:     len(levels),
	}

	failed := 0
	aborted := false
	for i, level := range levels {
		if aborted {
			e.cancelLevel(g, i, level, summary)
			continue
		}

		// Snapshot before the level so a restore rewinds to this boundary.
		if _, cerr := store.Create(ctx, fmt.Sprintf("level_%d_start", i)); cerr != nil {
			summary.CheckpointErrors = append(summary.CheckpointErrors, cerr.Error())
		}
		imetrics.IncCheckpoints()

		runnable := level
		if e.config.BlockDependentsOnFailure {
			runnable = plan.Ready(g, level)
			e.blockUnready(g, i, level, runnable, summary)
		}

		failed += e.runLevel(ctx, g, i, runnable, execCtx, summary)
		atomic.AddInt64(&e.levelsRun, 1)
		imetrics.IncLevels()

		if e.config.MaxFailures > 0 && failed >= e.config.MaxFailures {
			aborted = true
		}
	}

	summary.finalize(g)
	return summary, nil
}

// runLevel launches every runnable task concurrently, waits for the join
// barrier, then merges completed outputs into the execution context. It
// returns the number of failures in the level.
func (e *Engine) runLevel(ctx context.Context, g *graph.Graph, levelIdx int, runnable []string, execCtx *task.ExecutionContext, summary *Summary) int {
	if len(runnable) == 0 {
		return 0
	}

	results := make(chan taskResult, len(runnable))
	sem := make(chan struct{}, e.config.Parallelism)
	for _, id := range runnable {
		t, _ := g.Task(id)
		go func(t *task.Task) {
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- e.executeTask(ctx, t, execCtx)
		}(t)
	}

	// Join barrier: every task in the level reaches a terminal state before
	// anything else happens.
	collected := make(map[string]taskResult, len(runnable))
	for range runnable {
		r := <-results
		collected[r.id] = r
	}

	failures := 0
	for _, id := range runnable {
		r := collected[id]
		t, _ := g.Task(id)
		outcome := Outcome{TaskID: id, Level: levelIdx, Duration: r.finished.Sub(t.StartedAt)}

		if r.err != nil {
			t.Status = task.StatusFailed
			t.Err = &task.ExecutionError{TaskID: id, Err: r.err}
			outcome.Status = task.StatusFailed
			outcome.Error = t.Err.Error()
			failures++
			atomic.AddInt64(&e.failures, 1)
			imetrics.AddTaskFailures(1)
		} else {
			t.Outputs = r.outputs.Clone()
			t.CompletedAt = r.finished
			t.Status = task.StatusCompleted
			outcome.Status = task.StatusCompleted
			if rerr := execCtx.Record(id, t.Outputs); rerr != nil {
				outcome.Error = rerr.Error()
			}
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return failures
}

// executeTask runs one task body with timeout and panic containment. The
// task's own goroutine is the sole writer of its mutable fields until the
// join barrier.
func (e *Engine) executeTask(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) taskResult {
	t.Status = task.StatusRunning
	t.StartedAt = time.Now()
	atomic.AddInt64(&e.tasksRun, 1)
	imetrics.AddTaskExecs(1)

	outputs, err := e.invoke(ctx, t, execCtx)
	return taskResult{id: t.ID, outputs: outputs, err: err, finished: time.Now()}
}

// invoke applies the per-task deadline. A body that overruns is abandoned
// and its task marked failed with a timeout cause.
func (e *Engine) invoke(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (task.Values, error) {
	if e.config.TaskTimeout <= 0 {
		return e.safeRun(ctx, t, execCtx)
	}

	tctx, cancel := context.WithTimeout(ctx, e.config.TaskTimeout)
	defer cancel()

	type bodyResult struct {
		outputs task.Values
		err     error
	}
	done := make(chan bodyResult, 1)
	go func() {
		outputs, err := e.safeRun(tctx, t, execCtx)
		done <- bodyResult{outputs, err}
	}()

	select {
	case r := <-done:
		return r.outputs, r.err
	case <-tctx.Done():
		return nil, fmt.Errorf("%w after %s", task.ErrTaskTimeout, e.config.TaskTimeout)
	}
}

// safeRun converts a panicking task body into an ordinary error so a single
// task can never tear down the level's join barrier.
func (e *Engine) safeRun(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (outputs task.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs, err = nil, fmt.Errorf("task body panicked: %v", r)
		}
	}()
	return e.runner.Run(ctx, t, execCtx)
}

// blockUnready marks every level task excluded from the runnable set as
// blocked and records the outcome.
func (e *Engine) blockUnready(g *graph.Graph, levelIdx int, level, runnable []string, summary *Summary) {
	ready := make(map[string]struct{}, len(runnable))
	for _, id := range runnable {
		ready[id] = struct{}{}
	}
	for _, id := range level {
		if _, ok := ready[id]; ok {
			continue
		}
		t, _ := g.Task(id)
		t.Status = task.StatusBlocked
		summary.Outcomes = append(summary.Outcomes, Outcome{
			TaskID: id,
			Level:  levelIdx,
			Status: task.StatusBlocked,
		})
	}
}

// cancelLevel marks every pending task of an aborted level as cancelled.
func (e *Engine) cancelLevel(g *graph.Graph, levelIdx int, level []string, summary *Summary) {
	for _, id := range level {
		t, _ := g.Task(id)
		if t.Status != task.StatusPending {
			continue
		}
		t.Status = task.StatusCancelled
		summary.Outcomes = append(summary.Outcomes, Outcome{
			TaskID: id,
			Level:  levelIdx,
			Status: task.StatusCancelled,
		})
	}
}

// Stats is a snapshot of engine counters across runs.
type Stats struct {
	LevelsRun int64
	TasksRun  int64
	Failures  int64
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		LevelsRun: atomic.LoadInt64(&e.levelsRun),
		TasksRun:  atomic.LoadInt64(&e.tasksRun),
		Failures:  atomic.LoadInt64(&e.failures),
	}
}

// taskResult carries one task's terminal result to the join barrier.
type taskResult struct {
	id       string
	outputs  task.Values
	err      error
	finished time.Time
}

// sortIDs returns a sorted copy.
func sortIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
