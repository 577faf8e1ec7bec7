package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devkitlabs/taskmill/internal/execshell"
)

const (
	repositoryPathRequiredMessageConstant       = "repository path must be provided"
	versionRequiredMessageConstant              = "version must be provided"
	gitExecutorMissingMessageConstant           = "git executor not configured"
	stageFailureTemplateConstant                = "failed to stage %s: %w"
	commitFailureTemplateConstant               = "failed to commit version %s: %w"
	annotateTagFailureTemplateConstant          = "failed to create tag %q: %w"
	pushTagFailureTemplateConstant              = "failed to push tag %q to %s: %w"
	defaultRemoteNameConstant                   = "origin"
	defaultTagPrefixConstant                    = "v"
	commitMessageTemplateConstant               = "Bump version: %s -> %s"
	gitAddSubcommandConstant                    = "add"
	gitCommitSubcommandConstant                 = "commit"
	gitCommitMessageFlagConstant                = "-m"
	gitTagSubcommandConstant                    = "tag"
	gitTagAnnotatedFlagConstant                 = "-a"
	gitTagMessageFlagConstant                   = "-m"
	gitPushSubcommandConstant                   = "push"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrVersionRequired indicates the version option was empty.
var ErrVersionRequired = errors.New(versionRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServiceDependencies enumerates collaborators required by the release service.
type ServiceDependencies struct {
	GitExecutor GitExecutor
}

// Options configure a version release operation.
type Options struct {
	RepositoryPath  string
	MetadataPath    string
	PreviousVersion string
	NewVersion      string
	TagPrefix       string
	RemoteName      string
	PushTag         bool
	DryRun          bool
}

// Result captures the outcome of a release.
type Result struct {
	RepositoryPath string
	TagName        string
}

// Service records version bumps as a commit plus an annotated tag.
type Service struct {
	executor GitExecutor
}

// NewService constructs a Service from dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Service{executor: dependencies.GitExecutor}, nil
}

// Release stages the metadata file, commits the bump, annotates the version
// tag, and optionally pushes it to the selected remote.
func (service *Service) Release(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	newVersion := strings.TrimSpace(options.NewVersion)
	if len(newVersion) == 0 {
		return Result{}, ErrVersionRequired
	}

	tagPrefix := strings.TrimSpace(options.TagPrefix)
	if len(tagPrefix) == 0 {
		tagPrefix = defaultTagPrefixConstant
	}
	tagName := tagPrefix + newVersion

	if options.DryRun {
		return Result{RepositoryPath: repositoryPath, TagName: tagName}, nil
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, strings.TrimSpace(options.PreviousVersion), newVersion)
	environment := map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant}

	metadataPath := strings.TrimSpace(options.MetadataPath)
	if len(metadataPath) > 0 {
		if _, err := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{gitAddSubcommandConstant, metadataPath},
			WorkingDirectory:     repositoryPath,
			EnvironmentVariables: environment,
		}); err != nil {
			return Result{}, fmt.Errorf(stageFailureTemplateConstant, metadataPath, err)
		}
	}

	if _, err := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCommitSubcommandConstant, gitCommitMessageFlagConstant, commitMessage},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: environment,
	}); err != nil {
		return Result{}, fmt.Errorf(commitFailureTemplateConstant, newVersion, err)
	}

	if _, err := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitTagSubcommandConstant, gitTagAnnotatedFlagConstant, tagName, gitTagMessageFlagConstant, commitMessage},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: environment,
	}); err != nil {
		return Result{}, fmt.Errorf(annotateTagFailureTemplateConstant, tagName, err)
	}

	if options.PushTag {
		remoteName := strings.TrimSpace(options.RemoteName)
		if len(remoteName) == 0 {
			remoteName = defaultRemoteNameConstant
		}

		if _, err := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{gitPushSubcommandConstant, remoteName, tagName},
			WorkingDirectory:     repositoryPath,
			EnvironmentVariables: environment,
		}); err != nil {
			return Result{}, fmt.Errorf(pushTagFailureTemplateConstant, tagName, remoteName, err)
		}
	}

	return Result{RepositoryPath: repositoryPath, TagName: tagName}, nil
}
