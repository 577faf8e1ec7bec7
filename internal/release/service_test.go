package release

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devkitlabs/taskmill/internal/execshell"
)

type recordingGitExecutor struct {
	commands []execshell.CommandDetails
	errors   []error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, details)
	if len(executor.errors) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	value := executor.errors[0]
	executor.errors = executor.errors[1:]
	if value != nil {
		return execshell.ExecutionResult{}, value
	}
	return execshell.ExecutionResult{}, nil
}

func TestReleaseStagesCommitsAndTags(t *testing.T) {
	executor := &recordingGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, releaseError := service.Release(context.Background(), Options{
		RepositoryPath:  "/tmp/project",
		MetadataPath:    "project.yaml",
		PreviousVersion: "0.5.2",
		NewVersion:      "0.5.3",
	})
	require.NoError(t, releaseError)
	require.Equal(t, Result{RepositoryPath: "/tmp/project", TagName: "v0.5.3"}, result)
	require.Len(t, executor.commands, 3)

	require.Equal(t, []string{"add", "project.yaml"}, executor.commands[0].Arguments)
	require.Equal(t, "commit", executor.commands[1].Arguments[0])
	require.Contains(t, strings.Join(executor.commands[1].Arguments, " "), "Bump version: 0.5.2 -> 0.5.3")
	require.Equal(t, []string{"tag", "-a", "v0.5.3", "-m", "Bump version: 0.5.2 -> 0.5.3"}, executor.commands[2].Arguments)
}

func TestReleasePushesWhenConfigured(t *testing.T) {
	executor := &recordingGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, releaseError := service.Release(context.Background(), Options{
		RepositoryPath: "/tmp/project",
		NewVersion:     "1.0.0",
		PushTag:        true,
		RemoteName:     "upstream",
	})
	require.NoError(t, releaseError)
	require.Equal(t, "v1.0.0", result.TagName)
	require.Len(t, executor.commands, 3)
	require.Equal(t, []string{"push", "upstream", "v1.0.0"}, executor.commands[2].Arguments)
}

func TestReleaseDryRunSkipsGitCommands(t *testing.T) {
	executor := &recordingGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	result, releaseError := service.Release(context.Background(), Options{
		RepositoryPath: "/tmp/project",
		NewVersion:     "0.6.0",
		DryRun:         true,
	})
	require.NoError(t, releaseError)
	require.Equal(t, "v0.6.0", result.TagName)
	require.Empty(t, executor.commands)
}

func TestReleaseValidatesInputs(t *testing.T) {
	service, err := NewService(ServiceDependencies{GitExecutor: &recordingGitExecutor{}})
	require.NoError(t, err)

	_, releaseError := service.Release(context.Background(), Options{NewVersion: "1.0.0"})
	require.ErrorIs(t, releaseError, ErrRepositoryPathRequired)

	_, releaseError = service.Release(context.Background(), Options{RepositoryPath: "/tmp/project"})
	require.ErrorIs(t, releaseError, ErrVersionRequired)

	_, creationError := NewService(ServiceDependencies{})
	require.ErrorIs(t, creationError, ErrGitExecutorNotConfigured)
}

func TestReleasePropagatesCommitFailure(t *testing.T) {
	commitFailure := errors.New("nothing to commit")
	executor := &recordingGitExecutor{errors: []error{nil, commitFailure}}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(t, err)

	_, releaseError := service.Release(context.Background(), Options{
		RepositoryPath: "/tmp/project",
		MetadataPath:   "project.yaml",
		NewVersion:     "0.5.3",
	})
	require.ErrorIs(t, releaseError, commitFailure)
	require.Contains(t, releaseError.Error(), "failed to commit version 0.5.3")
}
