package taskrunner_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devkitlabs/taskmill/internal/taskrun"
	"github.com/devkitlabs/taskmill/internal/tasks"
	"github.com/devkitlabs/taskmill/pkg/taskrunner"
)

const (
	testPrimaryTaskNameConstant      = "check"
	testPrerequisiteTaskNameConstant = "env"
)

type stubTask struct {
	name          string
	prerequisites []string
	executed      *[]string
}

func (task stubTask) Name() string {
	return task.name
}

func (task stubTask) Banner() string {
	return ""
}

func (task stubTask) Prerequisites() []string {
	return append([]string{}, task.prerequisites...)
}

func (task stubTask) Execute(context.Context) error {
	*task.executed = append(*task.executed, task.name)
	return nil
}

type stubExecutor struct {
	targets []string
	outcome taskrun.Outcome
	failure error
}

func (executor *stubExecutor) Run(_ context.Context, targetName string) (taskrun.Outcome, error) {
	executor.targets = append(executor.targets, targetName)
	return executor.outcome, executor.failure
}

func fixtureRunnerOptions(executed *[]string) taskrun.RunnerOptions {
	return taskrun.RunnerOptions{
		Tasks: []tasks.Task{
			stubTask{name: testPrerequisiteTaskNameConstant, executed: executed},
			stubTask{name: testPrimaryTaskNameConstant, prerequisites: []string{testPrerequisiteTaskNameConstant}, executed: executed},
		},
	}
}

func TestResolveUsesFactoryExecutor(testInstance *testing.T) {
	provided := &stubExecutor{outcome: taskrun.Outcome{ExecutedTasks: []string{testPrimaryTaskNameConstant}}}
	factory := func(taskrun.RunnerOptions) (taskrunner.Executor, error) {
		return provided, nil
	}

	executor, resolveError := taskrunner.Resolve(factory, taskrun.RunnerOptions{}, nil)
	require.NoError(testInstance, resolveError)

	_, runError := executor.Run(context.Background(), testPrimaryTaskNameConstant)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{testPrimaryTaskNameConstant}, provided.targets)
}

func TestResolveBuildsDefaultRunner(testInstance *testing.T) {
	executed := []string{}
	executor, resolveError := taskrunner.Resolve(nil, fixtureRunnerOptions(&executed), nil)
	require.NoError(testInstance, resolveError)

	outcome, runError := executor.Run(context.Background(), testPrimaryTaskNameConstant)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{testPrerequisiteTaskNameConstant, testPrimaryTaskNameConstant}, executed)
	require.Equal(testInstance, executed, outcome.ExecutedTasks)
}

func TestResolvePrintsSummaryForMultiTaskRuns(testInstance *testing.T) {
	summaryBuffer := &bytes.Buffer{}
	executed := []string{}
	executor, resolveError := taskrunner.Resolve(nil, fixtureRunnerOptions(&executed), summaryBuffer)
	require.NoError(testInstance, resolveError)

	_, runError := executor.Run(context.Background(), testPrimaryTaskNameConstant)
	require.NoError(testInstance, runError)
	require.Contains(testInstance, summaryBuffer.String(), "total.tasks=2")
}

func TestResolveSuppressesSummaryForSingleTaskRuns(testInstance *testing.T) {
	summaryBuffer := &bytes.Buffer{}
	executed := []string{}
	executor, resolveError := taskrunner.Resolve(nil, fixtureRunnerOptions(&executed), summaryBuffer)
	require.NoError(testInstance, resolveError)

	_, runError := executor.Run(context.Background(), testPrerequisiteTaskNameConstant)
	require.NoError(testInstance, runError)
	require.Empty(testInstance, summaryBuffer.String())
}

func TestResolvePropagatesRunFailures(testInstance *testing.T) {
	runFailure := errors.New("task failed")
	provided := &stubExecutor{failure: runFailure}
	factory := func(taskrun.RunnerOptions) (taskrunner.Executor, error) {
		return provided, nil
	}

	executor, resolveError := taskrunner.Resolve(factory, taskrun.RunnerOptions{}, nil)
	require.NoError(testInstance, resolveError)

	_, runError := executor.Run(context.Background(), testPrimaryTaskNameConstant)
	require.ErrorIs(testInstance, runError, runFailure)
}

func TestRenderSummaryLine(testInstance *testing.T) {
	testCases := []struct {
		name            string
		outcome         taskrun.Outcome
		expectedEmpty   bool
		expectedContent []string
	}{
		{
			name:          "empty_outcome_renders_nothing",
			outcome:       taskrun.Outcome{},
			expectedEmpty: true,
		},
		{
			name:          "single_task_renders_nothing",
			outcome:       taskrun.Outcome{ExecutedTasks: []string{testPrimaryTaskNameConstant}},
			expectedEmpty: true,
		},
		{
			name: "multi_task_renders_counts_and_duration",
			outcome: taskrun.Outcome{
				ExecutedTasks: []string{testPrerequisiteTaskNameConstant, testPrimaryTaskNameConstant},
				Duration:      1500 * time.Millisecond,
			},
			expectedContent: []string{"total.tasks=2", "duration_human=1.5s", "duration_ms=1500"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			summary := taskrunner.RenderSummaryLine(testCase.outcome)
			if testCase.expectedEmpty {
				require.Empty(subtest, summary)
				return
			}
			for _, expected := range testCase.expectedContent {
				require.Contains(subtest, summary, expected)
			}
		})
	}
}
