package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devkitlabs/taskmill/internal/execshell"
)

const (
	testCommandArgumentConstant       = "./..."
	testStandardOutputConstant        = "checked"
	testStandardErrorConstant         = "declared and not used: leftover"
	testRunnerFailureMessageConstant  = "runner exploded"
	testMissingRunnerSubtestConstant  = "missing_runner"
	testMissingLoggerSubtestConstant  = "missing_logger"
	testSuccessfulRunSubtestConstant  = "successful_run"
	testNonZeroExitSubtestConstant    = "non_zero_exit"
	testRunnerFailureSubtestConstant  = "runner_failure"
	testMissingCommandSubtestConstant = "missing_command_name"
)

type stubCommandRunner struct {
	result   execshell.ExecutionResult
	err      error
	commands []execshell.ShellCommand
}

func (runner *stubCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	return runner.result, runner.err
}

func TestNewShellExecutorValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectedError error
	}{
		{name: testMissingLoggerSubtestConstant, logger: nil, runner: &stubCommandRunner{}, expectedError: execshell.ErrLoggerNotConfigured},
		{name: testMissingRunnerSubtestConstant, logger: zap.NewNop(), runner: nil, expectedError: execshell.ErrCommandRunnerNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner, false)
			require.Nil(subtest, executor)
			require.ErrorIs(subtest, creationError, testCase.expectedError)
		})
	}
}

func TestShellExecutorExecute(testInstance *testing.T) {
	testCases := []struct {
		name           string
		command        execshell.ShellCommand
		runnerResult   execshell.ExecutionResult
		runnerError    error
		expectedResult execshell.ExecutionResult
		expectFailed   bool
		expectRunner   bool
		expectMissing  bool
	}{
		{
			name:           testSuccessfulRunSubtestConstant,
			command:        execshell.ShellCommand{Name: execshell.CommandGo, Details: execshell.CommandDetails{Arguments: []string{"vet", testCommandArgumentConstant}}},
			runnerResult:   execshell.ExecutionResult{StandardOutput: testStandardOutputConstant},
			expectedResult: execshell.ExecutionResult{StandardOutput: testStandardOutputConstant},
		},
		{
			name:         testNonZeroExitSubtestConstant,
			command:      execshell.ShellCommand{Name: execshell.CommandGo, Details: execshell.CommandDetails{Arguments: []string{"vet", testCommandArgumentConstant}}},
			runnerResult: execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorConstant},
			expectFailed: true,
		},
		{
			name:         testRunnerFailureSubtestConstant,
			command:      execshell.ShellCommand{Name: execshell.CommandGofmt},
			runnerError:  errors.New(testRunnerFailureMessageConstant),
			expectRunner: true,
		},
		{
			name:          testMissingCommandSubtestConstant,
			command:       execshell.ShellCommand{},
			expectMissing: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			runner := &stubCommandRunner{result: testCase.runnerResult, err: testCase.runnerError}
			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), runner, false)
			require.NoError(subtest, creationError)

			executionResult, executionError := executor.Execute(context.Background(), testCase.command)

			switch {
			case testCase.expectMissing:
				require.ErrorIs(subtest, executionError, execshell.ErrCommandNameMissing)
				require.Empty(subtest, runner.commands)
			case testCase.expectFailed:
				var failedError execshell.CommandFailedError
				require.ErrorAs(subtest, executionError, &failedError)
				require.Equal(subtest, testCase.runnerResult.ExitCode, failedError.Result.ExitCode)
				require.Contains(subtest, failedError.Error(), testStandardErrorConstant)
			case testCase.expectRunner:
				var runnerFailure execshell.CommandExecutionError
				require.ErrorAs(subtest, executionError, &runnerFailure)
				require.ErrorContains(subtest, runnerFailure.Unwrap(), testRunnerFailureMessageConstant)
			default:
				require.NoError(subtest, executionError)
				require.Equal(subtest, testCase.expectedResult, executionResult)
				require.Len(subtest, runner.commands, 1)
			}
		})
	}
}

func TestCommandFailedErrorTruncatesDiagnostics(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{
			Name:    execshell.CommandGolangciLint,
			Details: execshell.CommandDetails{Arguments: []string{"run"}},
		},
		Result: execshell.ExecutionResult{
			ExitCode:      2,
			StandardError: "line one\nline two\nline three\nline four",
		},
	}

	message := failure.Error()
	require.Contains(testInstance, message, "golangci-lint command exited with code 2")
	require.Contains(testInstance, message, "line three")
	require.NotContains(testInstance, message, "line four")
}

func TestOSCommandRunnerReportsExitCodes(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name:    execshell.CommandName("sh"),
		Details: execshell.CommandDetails{Arguments: []string{"-c", "echo out; echo err >&2; exit 3"}},
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Contains(testInstance, result.StandardOutput, "out")
	require.Contains(testInstance, result.StandardError, "err")
}
