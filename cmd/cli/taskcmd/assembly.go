package taskcmd

import (
	"path/filepath"

	"github.com/devkitlabs/taskmill/internal/envstate"
	"github.com/devkitlabs/taskmill/internal/release"
	"github.com/devkitlabs/taskmill/internal/tasks"
	"github.com/devkitlabs/taskmill/internal/versionfile"
	"github.com/devkitlabs/taskmill/pkg/taskrunner"
)

// Registered task names.
const (
	EnvironmentTaskName = "env"
	FormatTaskName      = "fmt"
	LintTaskName        = "lint"
	TypecheckTaskName   = "typecheck"
	CoverageTaskName    = "coverage"
	CheckTaskName       = "check"
	BumpTaskName        = "bump"
)

type bumpParameters struct {
	part   versionfile.Part
	dryRun bool
}

func toCommandSpecs(configurations []CommandSpecConfiguration) []tasks.CommandSpec {
	specs := make([]tasks.CommandSpec, 0, len(configurations))
	for _, configuration := range configurations {
		specs = append(specs, tasks.CommandSpec{
			Tool:         configuration.Tool,
			Arguments:    append([]string{}, configuration.Arguments...),
			FailOnOutput: configuration.FailOnOutput,
		})
	}
	return specs
}

func (configuration CommandConfiguration) resolveProjectPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configuration.Project.WorkingDirectory, path)
}

func buildTaskSet(configuration CommandConfiguration, dependencies taskrunner.DependenciesResult, bump *bumpParameters) ([]tasks.Task, error) {
	marker, markerError := envstate.NewMarker(envstate.Options{
		MarkerPath:   configuration.resolveProjectPath(configuration.Project.MarkerPath),
		ManifestPath: configuration.resolveProjectPath(configuration.Project.ManifestPath),
	})
	if markerError != nil {
		return nil, markerError
	}

	environmentTask, environmentError := tasks.NewEnvironmentTask(tasks.EnvironmentTaskOptions{
		TaskName:         EnvironmentTaskName,
		Banner:           configuration.Tasks.Environment.Banner,
		WorkingDirectory: configuration.Project.WorkingDirectory,
		SyncCommands:     toCommandSpecs(configuration.Tasks.Environment.Commands),
		Marker:           marker,
		Executor:         dependencies.ToolExecutor,
		Logger:           dependencies.Logger,
	})
	if environmentError != nil {
		return nil, environmentError
	}

	formatTask, formatError := tasks.NewCommandTask(tasks.CommandTaskOptions{
		TaskName:         FormatTaskName,
		Banner:           configuration.Tasks.Format.Banner,
		Prerequisites:    []string{EnvironmentTaskName},
		WorkingDirectory: configuration.Project.WorkingDirectory,
		Commands:         toCommandSpecs(configuration.Tasks.Format.Commands),
		ReportDirectory:  reportDirectoryPath(configuration, configuration.Tasks.Format.ReportDirectory),
		Executor:         dependencies.ToolExecutor,
	})
	if formatError != nil {
		return nil, formatError
	}

	lintTask, lintError := tasks.NewCommandTask(tasks.CommandTaskOptions{
		TaskName:         LintTaskName,
		Banner:           configuration.Tasks.Lint.Banner,
		Prerequisites:    []string{EnvironmentTaskName},
		WorkingDirectory: configuration.Project.WorkingDirectory,
		Commands:         toCommandSpecs(configuration.Tasks.Lint.Commands),
		ReportDirectory:  reportDirectoryPath(configuration, configuration.Tasks.Lint.ReportDirectory),
		Executor:         dependencies.ToolExecutor,
	})
	if lintError != nil {
		return nil, lintError
	}

	typecheckTask, typecheckError := tasks.NewCommandTask(tasks.CommandTaskOptions{
		TaskName:         TypecheckTaskName,
		Banner:           configuration.Tasks.Typecheck.Banner,
		Prerequisites:    []string{EnvironmentTaskName},
		WorkingDirectory: configuration.Project.WorkingDirectory,
		Commands:         toCommandSpecs(configuration.Tasks.Typecheck.Commands),
		Executor:         dependencies.ToolExecutor,
	})
	if typecheckError != nil {
		return nil, typecheckError
	}

	coverageTask, coverageError := tasks.NewCoverageTask(tasks.CoverageTaskOptions{
		TaskName:         CoverageTaskName,
		Banner:           configuration.Tasks.Coverage.Banner,
		Prerequisites:    []string{EnvironmentTaskName},
		WorkingDirectory: configuration.Project.WorkingDirectory,
		TestCommands:     toCommandSpecs(configuration.Tasks.Coverage.TestCommands),
		ReportCommands:   toCommandSpecs(configuration.Tasks.Coverage.ReportCommands),
		ProfilePath:      configuration.resolveProjectPath(configuration.Tasks.Coverage.ProfilePath),
		ReportDirectory:  reportDirectoryPath(configuration, configuration.Tasks.Coverage.ReportDirectory),
		ConsoleWriter:    dependencies.Output,
		Executor:         dependencies.ToolExecutor,
	})
	if coverageError != nil {
		return nil, coverageError
	}

	checkTask, checkError := tasks.NewCompositeTask(CheckTaskName, "", []string{
		FormatTaskName,
		LintTaskName,
		TypecheckTaskName,
		CoverageTaskName,
	})
	if checkError != nil {
		return nil, checkError
	}

	taskSet := []tasks.Task{environmentTask, formatTask, lintTask, typecheckTask, coverageTask, checkTask}

	if bump != nil {
		record, recordError := versionfile.NewRecord(configuration.resolveProjectPath(configuration.Project.MetadataPath))
		if recordError != nil {
			return nil, recordError
		}

		releaser, releaserError := release.NewService(release.ServiceDependencies{GitExecutor: dependencies.GitExecutor})
		if releaserError != nil {
			return nil, releaserError
		}

		bumpTask, bumpError := tasks.NewBumpTask(tasks.BumpTaskOptions{
			TaskName:       BumpTaskName,
			Prerequisites:  []string{EnvironmentTaskName},
			Part:           bump.part,
			RepositoryPath: configuration.Project.WorkingDirectory,
			TagPrefix:      configuration.Bump.TagPrefix,
			RemoteName:     configuration.Bump.Remote,
			PushTag:        configuration.Bump.PushTag,
			DryRun:         bump.dryRun,
			Record:         record,
			Releaser:       releaser,
			ConsoleWriter:  dependencies.Output,
		})
		if bumpError != nil {
			return nil, bumpError
		}
		taskSet = append(taskSet, bumpTask)
	}

	return taskSet, nil
}

func reportDirectoryPath(configuration CommandConfiguration, directory string) string {
	if len(directory) == 0 {
		return ""
	}
	return configuration.resolveProjectPath(directory)
}
