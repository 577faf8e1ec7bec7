// Package version resolves the release identifier reported by the version
// command: the module version stamped into the build when present, otherwise
// the nearest git tag description.
package version

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/devkitlabs/taskmill/internal/execshell"
)

const (
	fallbackVersionConstant                   = "unknown"
	develBuildVersionConstant                 = "devel"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
)

var describeArguments = []string{"describe", "--tags", "--always", "--dirty"}

// GitRunner runs git commands for tag lookup.
type GitRunner interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Options select the sources consulted while resolving the version. A nil
// ReadBuildInfo falls back to the runtime build info; a nil Git skips the
// tag lookup.
type Options struct {
	ReadBuildInfo    func() (*debug.BuildInfo, bool)
	Git              GitRunner
	WorkingDirectory string
}

// Resolve returns the release identifier, or "unknown" when no source yields
// one.
func Resolve(executionContext context.Context, options Options) string {
	if stamped := stampedVersion(options.ReadBuildInfo); len(stamped) > 0 {
		return stamped
	}
	if described := describedVersion(executionContext, options); len(described) > 0 {
		return described
	}
	return fallbackVersionConstant
}

func stampedVersion(readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if readBuildInfo == nil {
		readBuildInfo = debug.ReadBuildInfo
	}

	buildInfo, available := readBuildInfo()
	if !available || buildInfo == nil {
		return ""
	}

	stamped := strings.TrimSpace(buildInfo.Main.Version)
	if strings.EqualFold(stamped, develBuildVersionConstant) {
		return ""
	}
	return stamped
}

func describedVersion(executionContext context.Context, options Options) string {
	if options.Git == nil {
		return ""
	}

	executionResult, executionError := options.Git.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        describeArguments,
		WorkingDirectory: options.WorkingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant,
		},
	})
	if executionError != nil {
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}
