package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
)

// OSCommandRunner executes shell commands against the host operating system.
type OSCommandRunner struct {
	standardOutput io.Writer
	standardError  io.Writer
}

// NewOSCommandRunner constructs a runner that captures command output silently.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// NewStreamingOSCommandRunner constructs a runner that mirrors command output to the provided writers while capturing it.
func NewStreamingOSCommandRunner(standardOutput io.Writer, standardError io.Writer) *OSCommandRunner {
	return &OSCommandRunner{standardOutput: standardOutput, standardError: standardError}
}

// Run executes the command and reports its captured output and exit code.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executableCommand := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executableCommand.Dir = command.Details.WorkingDirectory
	executableCommand.Env = mergeEnvironment(command.Details.EnvironmentVariables)

	if len(command.Details.StandardInput) > 0 {
		executableCommand.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executableCommand.Stdout = runner.outputWriter(&standardOutputBuffer, runner.standardOutput)
	executableCommand.Stderr = runner.outputWriter(&standardErrorBuffer, runner.standardError)

	runError := executableCommand.Run()

	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			executionResult.ExitCode = exitError.ExitCode()
			return executionResult, nil
		}
		return ExecutionResult{}, runError
	}

	return executionResult, nil
}

func (runner *OSCommandRunner) outputWriter(captureBuffer *bytes.Buffer, mirrorWriter io.Writer) io.Writer {
	if mirrorWriter == nil {
		return captureBuffer
	}
	return io.MultiWriter(captureBuffer, mirrorWriter)
}

func mergeEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return os.Environ()
	}

	merged := os.Environ()
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)
	for _, overrideKey := range overrideKeys {
		merged = append(merged, overrideKey+"="+overrides[overrideKey])
	}
	return merged
}
