// Package taskrun plans and executes registered tasks through the dependency
// graph with fail-fast semantics.
package taskrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/devkitlabs/taskmill/internal/taskgraph"
	"github.com/devkitlabs/taskmill/internal/tasks"
)

const (
	noTasksRegisteredMessageConstant = "no tasks registered"
	bannerLineTemplateConstant       = "%s\n"
	taskFailureMessageTemplate       = "task %s failed"
	taskStartingMessageConstant      = "task starting"
	taskCompletedMessageConstant     = "task completed"
	taskFailedLogMessageConstant     = "task failed"
	taskNameFieldNameConstant        = "task"
	durationFieldNameConstant        = "duration"
)

// ErrNoTasksRegistered indicates the runner was built without tasks.
var ErrNoTasksRegistered = errors.New(noTasksRegisteredMessageConstant)

// TaskFailedError reports which task aborted the run.
type TaskFailedError struct {
	TaskName string
	Cause    error
}

// Error describes the failed task.
func (taskError TaskFailedError) Error() string {
	return fmt.Sprintf(taskFailureMessageTemplate, taskError.TaskName)
}

// Unwrap exposes the underlying failure.
func (taskError TaskFailedError) Unwrap() error {
	return taskError.Cause
}

// Outcome summarizes a completed run.
type Outcome struct {
	ExecutedTasks []string
	Duration      time.Duration
}

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	Tasks         []tasks.Task
	ConsoleWriter io.Writer
	Logger        *zap.Logger
	Clock         func() time.Time
}

// Runner executes a task and its transitive prerequisites in dependency order.
type Runner struct {
	graph         *taskgraph.Graph
	tasksByName   map[string]tasks.Task
	consoleWriter io.Writer
	logger        *zap.Logger
	clock         func() time.Time
}

// NewRunner validates the task set into a graph and constructs a Runner.
func NewRunner(options RunnerOptions) (*Runner, error) {
	if len(options.Tasks) == 0 {
		return nil, ErrNoTasksRegistered
	}

	nodes := make([]taskgraph.Node, 0, len(options.Tasks))
	tasksByName := make(map[string]tasks.Task, len(options.Tasks))
	for _, task := range options.Tasks {
		nodes = append(nodes, taskgraph.Node{
			Name:          task.Name(),
			Banner:        task.Banner(),
			Prerequisites: task.Prerequisites(),
		})
		tasksByName[task.Name()] = task
	}

	graph, graphError := taskgraph.NewGraph(nodes)
	if graphError != nil {
		return nil, graphError
	}

	consoleWriter := options.ConsoleWriter
	if consoleWriter == nil {
		consoleWriter = io.Discard
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Runner{
		graph:         graph,
		tasksByName:   tasksByName,
		consoleWriter: consoleWriter,
		logger:        logger,
		clock:         clock,
	}, nil
}

// Tasks returns the registered nodes in topological order.
func (runner *Runner) Tasks() []taskgraph.Node {
	return runner.graph.Nodes()
}

// Run executes the target task after its transitive prerequisites, aborting
// at the first failure.
func (runner *Runner) Run(executionContext context.Context, targetName string) (Outcome, error) {
	plannedNodes, planError := runner.graph.Plan(targetName)
	if planError != nil {
		return Outcome{}, planError
	}

	startedAt := runner.clock()
	outcome := Outcome{ExecutedTasks: make([]string, 0, len(plannedNodes))}

	for _, plannedNode := range plannedNodes {
		if contextError := executionContext.Err(); contextError != nil {
			outcome.Duration = runner.clock().Sub(startedAt)
			return outcome, contextError
		}

		task := runner.tasksByName[plannedNode.Name]
		if banner := task.Banner(); len(banner) > 0 {
			fmt.Fprintf(runner.consoleWriter, bannerLineTemplateConstant, banner)
		}

		runner.logger.Debug(taskStartingMessageConstant, zap.String(taskNameFieldNameConstant, plannedNode.Name))
		taskStartedAt := runner.clock()

		if executionError := task.Execute(executionContext); executionError != nil {
			runner.logger.Error(taskFailedLogMessageConstant,
				zap.String(taskNameFieldNameConstant, plannedNode.Name),
				zap.Error(executionError),
			)
			outcome.Duration = runner.clock().Sub(startedAt)
			return outcome, TaskFailedError{TaskName: plannedNode.Name, Cause: executionError}
		}

		runner.logger.Debug(taskCompletedMessageConstant,
			zap.String(taskNameFieldNameConstant, plannedNode.Name),
			zap.Duration(durationFieldNameConstant, runner.clock().Sub(taskStartedAt)),
		)
		outcome.ExecutedTasks = append(outcome.ExecutedTasks, plannedNode.Name)
	}

	outcome.Duration = runner.clock().Sub(startedAt)
	return outcome, nil
}
