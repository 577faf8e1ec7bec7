// Package taskcmd builds the Cobra commands that expose taskmill's
// developer-workflow tasks.
package taskcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkitlabs/taskmill/internal/taskrun"
	"github.com/devkitlabs/taskmill/internal/versionfile"
	"github.com/devkitlabs/taskmill/internal/watch"
	"github.com/devkitlabs/taskmill/pkg/taskrunner"
)

const (
	environmentCommandShortDescriptionConstant = "Materialize the dependency environment"
	formatCommandShortDescriptionConstant      = "Check source formatting"
	lintCommandShortDescriptionConstant        = "Run the configured linter"
	typecheckCommandShortDescriptionConstant   = "Run the configured static checker"
	coverageCommandShortDescriptionConstant    = "Run tests with coverage and regenerate reports"
	checkCommandShortDescriptionConstant       = "Run fmt, lint, typecheck, and coverage"
	watchCommandUseNameConstant                = "watch"
	watchCommandShortDescriptionConstant       = "Re-run the check sequence on filesystem changes"
	bumpCommandUseTemplateConstant             = "bump <part>"
	bumpCommandShortDescriptionConstant        = "Bump the project version and tag the release"
	bumpCommandLongDescriptionConstant         = "bump advances the persisted project version (major, minor, or patch), writes the metadata file atomically, then records a commit and an annotated tag."
	bumpDryRunFlagNameConstant                 = "dry-run"
	bumpDryRunFlagUsageConstant                = "Compute the bump without mutating the metadata file or repository."
	bumpPushFlagNameConstant                   = "push"
	bumpPushFlagUsageConstant                  = "Push the created tag to the configured remote."
	listCommandUseNameConstant                 = "tasks"
	listCommandShortDescriptionConstant        = "List registered tasks in execution order"
	listLineWithPrerequisitesTemplateConstant  = "%s <- %v\n"
	listLineTemplateConstant                   = "%s\n"
	terminalClearSequenceConstant              = "\033[2J\033[H"
)

// CommandBuilder assembles the task subcommands.
type CommandBuilder struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ExecutorFactory              taskrunner.Factory
}

func (builder CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder CommandBuilder) resolveDependencies(command *cobra.Command) (taskrunner.DependenciesResult, error) {
	return taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               builder.LoggerProvider,
			HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		},
		taskrunner.DependenciesOptions{Command: command},
	)
}

func (builder CommandBuilder) resolveExecutor(command *cobra.Command, configuration CommandConfiguration, bump *bumpParameters) (taskrunner.Executor, taskrunner.DependenciesResult, error) {
	dependencies, dependenciesError := builder.resolveDependencies(command)
	if dependenciesError != nil {
		return nil, taskrunner.DependenciesResult{}, dependenciesError
	}

	taskSet, taskSetError := buildTaskSet(configuration, dependencies, bump)
	if taskSetError != nil {
		return nil, taskrunner.DependenciesResult{}, taskSetError
	}

	executor, resolveError := taskrunner.Resolve(builder.ExecutorFactory, taskrun.RunnerOptions{
		Tasks:         taskSet,
		ConsoleWriter: dependencies.Output,
		Logger:        dependencies.Logger,
	}, dependencies.Errors)
	if resolveError != nil {
		return nil, taskrunner.DependenciesResult{}, resolveError
	}

	return executor, dependencies, nil
}

func (builder CommandBuilder) runTarget(command *cobra.Command, targetName string) error {
	executor, _, resolveError := builder.resolveExecutor(command, builder.resolveConfiguration(), nil)
	if resolveError != nil {
		return resolveError
	}

	_, runError := executor.Run(command.Context(), targetName)
	return runError
}

// BuildTaskCommands returns the single-task commands plus the composite check.
func (builder CommandBuilder) BuildTaskCommands() []*cobra.Command {
	definitions := []struct {
		targetName       string
		shortDescription string
	}{
		{targetName: EnvironmentTaskName, shortDescription: environmentCommandShortDescriptionConstant},
		{targetName: FormatTaskName, shortDescription: formatCommandShortDescriptionConstant},
		{targetName: LintTaskName, shortDescription: lintCommandShortDescriptionConstant},
		{targetName: TypecheckTaskName, shortDescription: typecheckCommandShortDescriptionConstant},
		{targetName: CoverageTaskName, shortDescription: coverageCommandShortDescriptionConstant},
		{targetName: CheckTaskName, shortDescription: checkCommandShortDescriptionConstant},
	}

	commands := make([]*cobra.Command, 0, len(definitions))
	for _, definition := range definitions {
		targetName := definition.targetName
		commands = append(commands, &cobra.Command{
			Use:           targetName,
			Short:         definition.shortDescription,
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(command *cobra.Command, _ []string) error {
				return builder.runTarget(command, targetName)
			},
		})
	}
	return commands
}

// BuildListCommand returns the command listing registered tasks.
func (builder CommandBuilder) BuildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:           listCommandUseNameConstant,
		Short:         listCommandShortDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, _ []string) error {
			configuration := builder.resolveConfiguration()

			dependencies, dependenciesError := builder.resolveDependencies(command)
			if dependenciesError != nil {
				return dependenciesError
			}

			taskSet, taskSetError := buildTaskSet(configuration, dependencies, nil)
			if taskSetError != nil {
				return taskSetError
			}

			runner, runnerError := taskrun.NewRunner(taskrun.RunnerOptions{Tasks: taskSet})
			if runnerError != nil {
				return runnerError
			}

			for _, node := range runner.Tasks() {
				if len(node.Prerequisites) > 0 {
					fmt.Fprintf(dependencies.Output, listLineWithPrerequisitesTemplateConstant, node.Name, node.Prerequisites)
					continue
				}
				fmt.Fprintf(dependencies.Output, listLineTemplateConstant, node.Name)
			}
			return nil
		},
	}
}

// BuildBumpCommand returns the version bump command.
func (builder CommandBuilder) BuildBumpCommand() *cobra.Command {
	var dryRunFlagValue bool
	var pushFlagValue bool

	bumpCommand := &cobra.Command{
		Use:           bumpCommandUseTemplateConstant,
		Short:         bumpCommandShortDescriptionConstant,
		Long:          bumpCommandLongDescriptionConstant,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			part, partError := versionfile.ParsePart(arguments[0])
			if partError != nil {
				return partError
			}

			configuration := builder.resolveConfiguration()
			if pushFlagValue {
				configuration.Bump.PushTag = true
			}

			executor, _, resolveError := builder.resolveExecutor(command, configuration, &bumpParameters{part: part, dryRun: dryRunFlagValue})
			if resolveError != nil {
				return resolveError
			}

			_, runError := executor.Run(command.Context(), BumpTaskName)
			return runError
		},
	}

	bumpCommand.Flags().BoolVar(&dryRunFlagValue, bumpDryRunFlagNameConstant, false, bumpDryRunFlagUsageConstant)
	bumpCommand.Flags().BoolVar(&pushFlagValue, bumpPushFlagNameConstant, false, bumpPushFlagUsageConstant)

	return bumpCommand
}

// BuildWatchCommand returns the filesystem watch command.
func (builder CommandBuilder) BuildWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:           watchCommandUseNameConstant,
		Short:         watchCommandShortDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, _ []string) error {
			configuration := builder.resolveConfiguration()

			executor, dependencies, resolveError := builder.resolveExecutor(command, configuration, nil)
			if resolveError != nil {
				return resolveError
			}

			watchRoots := make([]string, 0, len(configuration.Watch.Roots))
			for _, watchRoot := range configuration.Watch.Roots {
				watchRoots = append(watchRoots, configuration.resolveProjectPath(watchRoot))
			}

			eventSource, sourceError := watch.NewFSNotifySource(watch.FSNotifySourceOptions{
				Roots:           watchRoots,
				SkipDirectories: configuration.Watch.SkipDirectories,
			})
			if sourceError != nil {
				return sourceError
			}

			var clearTerminal func()
			if configuration.Watch.ClearTerminal {
				clearTerminal = func() {
					fmt.Fprint(dependencies.Output, terminalClearSequenceConstant)
				}
			}

			loop, loopError := watch.NewLoop(watch.LoopOptions{
				Source:         eventSource,
				DebounceWindow: configuration.Watch.DebounceWindow(),
				Runner: func(runContext context.Context) error {
					_, runError := executor.Run(runContext, CheckTaskName)
					return runError
				},
				ClearTerminal:   clearTerminal,
				Logger:          dependencies.Logger,
				RunInitialBatch: true,
			})
			if loopError != nil {
				_ = eventSource.Close()
				return loopError
			}

			watchContext, stopSignals := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stopSignals()

			return loop.Run(watchContext)
		},
	}
}
