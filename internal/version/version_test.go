package version_test

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devkitlabs/taskmill/internal/execshell"
	"github.com/devkitlabs/taskmill/internal/version"
)

type recordingGitRunner struct {
	details []execshell.CommandDetails
	output  string
	failure error
}

func (runner *recordingGitRunner) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	runner.details = append(runner.details, details)
	if runner.failure != nil {
		return execshell.ExecutionResult{}, runner.failure
	}
	return execshell.ExecutionResult{StandardOutput: runner.output}, nil
}

func buildInfoReader(moduleVersion string) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: moduleVersion}}, true
	}
}

func TestResolvePrefersStampedBuildVersion(testInstance *testing.T) {
	gitRunner := &recordingGitRunner{output: "v0.9.0"}

	resolved := version.Resolve(context.Background(), version.Options{
		ReadBuildInfo: buildInfoReader("v1.2.3"),
		Git:           gitRunner,
	})

	require.Equal(testInstance, "v1.2.3", resolved)
	require.Empty(testInstance, gitRunner.details)
}

func TestResolveFallsBackToGitDescribe(testInstance *testing.T) {
	gitRunner := &recordingGitRunner{output: "v0.9.0-3-gabcdef\n"}

	resolved := version.Resolve(context.Background(), version.Options{
		ReadBuildInfo:    buildInfoReader("devel"),
		Git:              gitRunner,
		WorkingDirectory: "/workspace",
	})

	require.Equal(testInstance, "v0.9.0-3-gabcdef", resolved)
	require.Len(testInstance, gitRunner.details, 1)
	require.Equal(testInstance, []string{"describe", "--tags", "--always", "--dirty"}, gitRunner.details[0].Arguments)
	require.Equal(testInstance, "/workspace", gitRunner.details[0].WorkingDirectory)
}

func TestResolveReturnsUnknownWhenSourcesFail(testInstance *testing.T) {
	gitRunner := &recordingGitRunner{failure: errors.New("not a repository")}

	resolved := version.Resolve(context.Background(), version.Options{
		ReadBuildInfo: buildInfoReader("devel"),
		Git:           gitRunner,
	})
	require.Equal(testInstance, "unknown", resolved)

	resolved = version.Resolve(context.Background(), version.Options{
		ReadBuildInfo: buildInfoReader("devel"),
	})
	require.Equal(testInstance, "unknown", resolved)
}
