package taskrunner

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkitlabs/taskmill/internal/execshell"
	"github.com/devkitlabs/taskmill/internal/release"
	"github.com/devkitlabs/taskmill/internal/tasks"
)

// DependenciesConfig captures providers required to build task collaborators.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	ToolExecutor                 tasks.ToolExecutor
}

// DependenciesOptions allows per-command overrides when resolving collaborators.
type DependenciesOptions struct {
	Command *cobra.Command
	Output  io.Writer
	Errors  io.Writer
}

// DependenciesResult exposes resolved collaborators for task construction.
type DependenciesResult struct {
	Logger       *zap.Logger
	ToolExecutor tasks.ToolExecutor
	GitExecutor  release.GitExecutor
	Output       io.Writer
	Errors       io.Writer
}

// BuildDependencies resolves the logger, tool executor, and output writers
// used to construct tasks. Tool output streams to the resolved writers so
// tool diagnostics reach the operator verbatim.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (DependenciesResult, error) {
	logger := resolveLogger(config.LoggerProvider)
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	outputWriter := resolveWriter(options.Output, options.Command, true)
	errorWriter := resolveWriter(options.Errors, options.Command, false)

	toolExecutor := config.ToolExecutor
	if toolExecutor == nil {
		commandRunner := execshell.NewStreamingOSCommandRunner(outputWriter, errorWriter)
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadable)
		if executorError != nil {
			return DependenciesResult{}, executorError
		}
		toolExecutor = shellExecutor
	}

	gitExecutor, _ := toolExecutor.(release.GitExecutor)

	return DependenciesResult{
		Logger:       logger,
		ToolExecutor: toolExecutor,
		GitExecutor:  gitExecutor,
		Output:       outputWriter,
		Errors:       errorWriter,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
