// Package tasks provides the concrete developer-workflow tasks executed by the
// task runner: environment materialization, formatting, linting, type
// checking, coverage, and version bumping.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devkitlabs/taskmill/internal/execshell"
)

const (
	taskNameRequiredMessageConstant     = "task name must be provided"
	toolExecutorMissingMessageConstant  = "tool executor not configured"
	commandToolRequiredMessageConstant  = "task command tool must be provided"
	environmentMarkerMissingMessageText = "environment marker not configured"
	toolOutputFailureTemplateConstant   = "%s reported findings:\n%s"
)

var (
	// ErrTaskNameRequired indicates the task name option was empty.
	ErrTaskNameRequired = errors.New(taskNameRequiredMessageConstant)
	// ErrToolExecutorNotConfigured indicates the tool executor dependency was missing.
	ErrToolExecutorNotConfigured = errors.New(toolExecutorMissingMessageConstant)
	// ErrCommandToolRequired indicates a command spec lacked an executable name.
	ErrCommandToolRequired = errors.New(commandToolRequiredMessageConstant)
	// ErrEnvironmentMarkerNotConfigured indicates the environment marker dependency was missing.
	ErrEnvironmentMarkerNotConfigured = errors.New(environmentMarkerMissingMessageText)
)

// ToolExecutor runs configured developer tools.
type ToolExecutor interface {
	ExecuteTool(executionContext context.Context, toolName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandSpec names an executable and its arguments for a task step.
// FailOnOutput marks tools such as gofmt -l that report findings on standard
// output while still exiting zero.
type CommandSpec struct {
	Tool         string
	Arguments    []string
	FailOnOutput bool
}

// ToolOutputError reports a tool that signalled findings through its output
// rather than its exit code.
type ToolOutputError struct {
	Tool   string
	Output string
}

// Error implements the error interface.
func (outputError ToolOutputError) Error() string {
	return fmt.Sprintf(toolOutputFailureTemplateConstant, outputError.Tool, outputError.Output)
}

// Task is a runnable unit registered in the task graph.
type Task interface {
	Name() string
	Banner() string
	Prerequisites() []string
	Execute(executionContext context.Context) error
}

func runCommands(executionContext context.Context, executor ToolExecutor, workingDirectory string, commands []CommandSpec) error {
	for _, command := range commands {
		if len(command.Tool) == 0 {
			return ErrCommandToolRequired
		}
		executionResult, executionError := executor.ExecuteTool(executionContext, command.Tool, execshell.CommandDetails{
			Arguments:        command.Arguments,
			WorkingDirectory: workingDirectory,
		})
		if executionError != nil {
			return executionError
		}
		if command.FailOnOutput {
			if findings := strings.TrimSpace(executionResult.StandardOutput); len(findings) > 0 {
				return ToolOutputError{Tool: command.Tool, Output: findings}
			}
		}
	}
	return nil
}
