package tasks

import (
	"context"
	"strings"
)

// CompositeTask aggregates prerequisite tasks without work of its own.
type CompositeTask struct {
	taskName      string
	banner        string
	prerequisites []string
}

// NewCompositeTask constructs a CompositeTask.
func NewCompositeTask(taskName string, banner string, prerequisites []string) (*CompositeTask, error) {
	trimmedName := strings.TrimSpace(taskName)
	if len(trimmedName) == 0 {
		return nil, ErrTaskNameRequired
	}
	return &CompositeTask{
		taskName:      trimmedName,
		banner:        banner,
		prerequisites: append([]string{}, prerequisites...),
	}, nil
}

// Name returns the registered task name.
func (task *CompositeTask) Name() string {
	return task.taskName
}

// Banner returns the banner printed before execution.
func (task *CompositeTask) Banner() string {
	return task.banner
}

// Prerequisites returns the declared prerequisite names.
func (task *CompositeTask) Prerequisites() []string {
	return append([]string{}, task.prerequisites...)
}

// Execute performs no work; the prerequisites carry the behavior.
func (task *CompositeTask) Execute(context.Context) error {
	return nil
}
