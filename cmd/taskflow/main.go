// Package main provides the taskflow CLI: plan, analyze, and execute
// dependency-graph task sets defined in a JSON file.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskflow/taskflow/internal/adapters/repository/sqlite"
	"github.com/taskflow/taskflow/internal/app/dto"
	"github.com/taskflow/taskflow/internal/app/engine"
	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/internal/core/cpm"
	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/plan"
	"github.com/taskflow/taskflow/internal/core/task"
	"github.com/taskflow/taskflow/internal/core/timeline"
	"github.com/taskflow/taskflow/pkg/validation"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	if cmd == "version" {
		fmt.Printf("taskflow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	file := fs.String("f", "tasks.json", "path to the JSON task file")
	project := fs.String("project", "taskflow", "project name for reports")
	parallelism := fs.Int("parallelism", 0, "max concurrent tasks per level (0 = CPU count)")
	timeout := fs.Duration("task-timeout", 0, "per-task deadline (0 = none)")
	maxFailures := fs.Int("max-failures", 0, "cancel remaining levels after N failures (0 = never)")
	block := fs.Bool("block-on-failure", false, "mark dependents of failed tasks blocked")
	_ = fs.Parse(os.Args[2:])

	g, err := loadGraph(*file)
	if err != nil {
		log.Fatalf("taskflow: %v", err)
	}

	switch cmd {
	case "plan":
		levels, err := plan.Levels(g)
		exitOn(err)
		for i, level := range levels {
			fmt.Printf("level %d: %v\n", i, level)
		}
	case "critical-path":
		result, err := cpm.Analyze(g)
		exitOn(err)
		fmt.Printf("critical path: %v (%.1fh)\n", result.Path, result.TotalHours)
	case "timeline":
		report, err := timeline.Estimator{}.Timeline(g)
		exitOn(err)
		printJSON(report)
	case "report":
		report, err := dto.BuildReport(*project, g)
		exitOn(err)
		data, err := report.Marshal()
		exitOn(err)
		fmt.Println(string(data))
	case "run":
		cfg := engine.Config{
			Parallelism:              *parallelism,
			TaskTimeout:              *timeout,
			MaxFailures:              *maxFailures,
			BlockDependentsOnFailure: *block,
		}
		saver, cleanup, err := saverFromEnv()
		exitOn(err)
		defer cleanup()
		cfg.Saver = saver

		summary, err := engine.New(simulatedRunner(), cfg).Run(context.Background(), g)
		exitOn(err)
		printJSON(summary)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: taskflow <plan|critical-path|timeline|report|run|version> [-f tasks.json] [flags]")
}

func exitOn(err error) {
	if err != nil {
		log.Fatalf("taskflow: %v", err)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	exitOn(err)
	fmt.Println(string(data))
}

// taskEntry is the on-disk shape of one task definition.
type taskEntry struct {
	ID             string   `json:"id" validate:"required,task_id"`
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	EstimatedHours float64  `json:"estimated_hours" validate:"gte=0"`
	Dependencies   []string `json:"dependencies"`
}

// loadGraph reads a JSON array of task definitions and builds the graph.
func loadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []taskEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	tasks := make([]*task.Task, 0, len(entries))
	for _, entry := range entries {
		if err := validation.Struct(entry); err != nil {
			return nil, fmt.Errorf("task %s: %w", entry.ID, err)
		}
		t, err := task.New(entry.ID, entry.Name, entry.EstimatedHours, entry.Dependencies...)
		if err != nil {
			return nil, err
		}
		t.Description = entry.Description
		t.Category = entry.Category
		if entry.Priority != "" {
			if err := t.Priority.UnmarshalText([]byte(entry.Priority)); err != nil {
				return nil, err
			}
		}
		tasks = append(tasks, t)
	}
	return graph.Build(tasks)
}

// saverFromEnv wires checkpoint persistence when TASKFLOW_DB points at a
// SQLite file. Without it, checkpoints stay in memory for the run.
func saverFromEnv() (checkpoint.Saver, func(), error) {
	path := os.Getenv("TASKFLOW_DB")
	if path == "" {
		return nil, func() {}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, func() {}, err
	}
	saver := sqlite.New(db, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := saver.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	return saver, func() { db.Close() }, nil
}

// simulatedRunner stands in for real task bodies: it reports the simulated
// duration as the only output.
func simulatedRunner() engine.Runner {
	return engine.RunnerFunc(func(ctx context.Context, t *task.Task, execCtx *task.ExecutionContext) (task.Values, error) {
		return task.Values{
			"simulated":       task.Bool(true),
			"estimated_hours": task.Number(t.EstimatedHours),
		}, nil
	})
}
