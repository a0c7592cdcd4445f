// Package metrics publishes engine counters via expvar.
package metrics

import (
	"expvar"
)

var (
	levelsTotal       = new(expvar.Int)
	taskExecsTotal    = new(expvar.Int)
	taskFailuresTotal = new(expvar.Int)
	checkpointsTotal  = new(expvar.Int)
	restoresTotal     = new(expvar.Int)
)

func init() {
	expvar.Publish("taskflow_levels_total", levelsTotal)
	expvar.Publish("taskflow_task_executions_total", taskExecsTotal)
	expvar.Publish("taskflow_task_failures_total", taskFailuresTotal)
	expvar.Publish("taskflow_checkpoints_total", checkpointsTotal)
	expvar.Publish("taskflow_restores_total", restoresTotal)
}

// IncLevels counts one executed level.
func IncLevels() { levelsTotal.Add(1) }

// AddTaskExecs counts launched task bodies.
func AddTaskExecs(n int64) { taskExecsTotal.Add(n) }

// AddTaskFailures counts terminal task failures.
func AddTaskFailures(n int64) { taskFailuresTotal.Add(n) }

// IncCheckpoints counts snapshots taken.
func IncCheckpoints() { checkpointsTotal.Add(1) }

// IncRestores counts checkpoint restores.
func IncRestores() { restoresTotal.Add(1) }
