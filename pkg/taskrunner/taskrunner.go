package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/devkitlabs/taskmill/internal/taskrun"
)

// Executor runs a registered task together with its prerequisites.
type Executor interface {
	Run(ctx context.Context, targetName string) (taskrun.Outcome, error)
}

// Factory constructs an Executor from runner options.
type Factory func(taskrun.RunnerOptions) (Executor, error)

// Resolve returns either the provided factory result or a default task runner,
// wrapped so multi-task runs print a summary line.
func Resolve(factory Factory, options taskrun.RunnerOptions, summaryWriter io.Writer) (Executor, error) {
	var base Executor
	if factory != nil {
		factoryExecutor, factoryError := factory(options)
		if factoryError != nil {
			return nil, factoryError
		}
		base = factoryExecutor
	}
	if base == nil {
		runner, runnerError := taskrun.NewRunner(options)
		if runnerError != nil {
			return nil, runnerError
		}
		base = runner
	}
	return summaryExecutor{delegate: base, summaryWriter: summaryWriter}, nil
}

type summaryExecutor struct {
	delegate      Executor
	summaryWriter io.Writer
}

func (executor summaryExecutor) Run(ctx context.Context, targetName string) (taskrun.Outcome, error) {
	outcome, runError := executor.delegate.Run(ctx, targetName)
	executor.printSummary(outcome)
	return outcome, runError
}

func (executor summaryExecutor) printSummary(outcome taskrun.Outcome) {
	if executor.summaryWriter == nil {
		return
	}
	summary := RenderSummaryLine(outcome)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(executor.summaryWriter, summary)
}
