package tasks

import (
	"context"
	"os"
	"strings"
)

const reportDirectoryPermissionConstant = 0o755

// CommandTaskOptions configure a CommandTask.
type CommandTaskOptions struct {
	TaskName         string
	Banner           string
	Prerequisites    []string
	WorkingDirectory string
	Commands         []CommandSpec
	ReportDirectory  string
	Executor         ToolExecutor
}

// CommandTask runs a fixed sequence of configured tool commands, optionally
// regenerating a report directory before the first command.
type CommandTask struct {
	taskName         string
	banner           string
	prerequisites    []string
	workingDirectory string
	commands         []CommandSpec
	reportDirectory  string
	executor         ToolExecutor
}

// NewCommandTask constructs a CommandTask.
func NewCommandTask(options CommandTaskOptions) (*CommandTask, error) {
	taskName := strings.TrimSpace(options.TaskName)
	if len(taskName) == 0 {
		return nil, ErrTaskNameRequired
	}
	if options.Executor == nil {
		return nil, ErrToolExecutorNotConfigured
	}

	return &CommandTask{
		taskName:         taskName,
		banner:           options.Banner,
		prerequisites:    append([]string{}, options.Prerequisites...),
		workingDirectory: options.WorkingDirectory,
		commands:         append([]CommandSpec{}, options.Commands...),
		reportDirectory:  strings.TrimSpace(options.ReportDirectory),
		executor:         options.Executor,
	}, nil
}

// Name returns the registered task name.
func (task *CommandTask) Name() string {
	return task.taskName
}

// Banner returns the banner printed before execution.
func (task *CommandTask) Banner() string {
	return task.banner
}

// Prerequisites returns the declared prerequisite names.
func (task *CommandTask) Prerequisites() []string {
	return append([]string{}, task.prerequisites...)
}

// Execute regenerates the report directory when configured, then runs each
// command in order, stopping at the first failure.
func (task *CommandTask) Execute(executionContext context.Context) error {
	if len(task.reportDirectory) > 0 {
		if recreateError := recreateDirectory(task.reportDirectory); recreateError != nil {
			return recreateError
		}
	}
	return runCommands(executionContext, task.executor, task.workingDirectory, task.commands)
}

func recreateDirectory(directoryPath string) error {
	if removeError := os.RemoveAll(directoryPath); removeError != nil {
		return removeError
	}
	return os.MkdirAll(directoryPath, reportDirectoryPermissionConstant)
}
