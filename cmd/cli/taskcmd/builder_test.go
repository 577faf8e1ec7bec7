package taskcmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/devkitlabs/taskmill/internal/taskrun"
	"github.com/devkitlabs/taskmill/internal/versionfile"
	"github.com/devkitlabs/taskmill/pkg/taskrunner"
)

type builderStubExecutor struct {
	executedTargets []string
	failure         error
}

func (executor *builderStubExecutor) Run(_ context.Context, targetName string) (taskrun.Outcome, error) {
	executor.executedTargets = append(executor.executedTargets, targetName)
	if executor.failure != nil {
		return taskrun.Outcome{}, executor.failure
	}
	return taskrun.Outcome{ExecutedTasks: []string{targetName}}, nil
}

type builderRecordingFactory struct {
	capturedOptions []taskrun.RunnerOptions
	executor        *builderStubExecutor
}

func (factory *builderRecordingFactory) build(options taskrun.RunnerOptions) (taskrunner.Executor, error) {
	factory.capturedOptions = append(factory.capturedOptions, options)
	return factory.executor, nil
}

func prepareCommand(command *cobra.Command) (*bytes.Buffer, *bytes.Buffer) {
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SetContext(context.Background())
	return outputBuffer, errorBuffer
}

func TestBuildTaskCommandsRunConfiguredTargets(t *testing.T) {
	factory := &builderRecordingFactory{executor: &builderStubExecutor{}}
	builder := CommandBuilder{ExecutorFactory: factory.build}

	commands := builder.BuildTaskCommands()
	require.Len(t, commands, 6)

	var checkCommand *cobra.Command
	for _, taskCommand := range commands {
		if taskCommand.Use == CheckTaskName {
			checkCommand = taskCommand
		}
	}
	require.NotNil(t, checkCommand)

	prepareCommand(checkCommand)
	require.NoError(t, checkCommand.RunE(checkCommand, nil))

	require.Equal(t, []string{CheckTaskName}, factory.executor.executedTargets)
	require.Len(t, factory.capturedOptions, 1)
	require.Len(t, factory.capturedOptions[0].Tasks, 6)
}

func TestBuildListCommandPrintsExecutionOrder(t *testing.T) {
	builder := CommandBuilder{}
	listCommand := builder.BuildListCommand()
	outputBuffer, _ := prepareCommand(listCommand)

	require.NoError(t, listCommand.RunE(listCommand, nil))

	expectedListing := "env\n" +
		"fmt <- [env]\n" +
		"lint <- [env]\n" +
		"typecheck <- [env]\n" +
		"coverage <- [env]\n" +
		"check <- [fmt lint typecheck coverage]\n"
	require.Equal(t, expectedListing, outputBuffer.String())
}

func TestBuildBumpCommandRejectsUnknownPart(t *testing.T) {
	factory := &builderRecordingFactory{executor: &builderStubExecutor{}}
	builder := CommandBuilder{ExecutorFactory: factory.build}

	bumpCommand := builder.BuildBumpCommand()
	prepareCommand(bumpCommand)

	runError := bumpCommand.RunE(bumpCommand, []string{"rc"})

	var invalidPart versionfile.InvalidPartError
	require.ErrorAs(t, runError, &invalidPart)
	require.Equal(t, "rc", invalidPart.Provided)
	require.Empty(t, factory.capturedOptions)
}

func TestBuildBumpCommandRunsBumpTarget(t *testing.T) {
	factory := &builderRecordingFactory{executor: &builderStubExecutor{}}
	builder := CommandBuilder{ExecutorFactory: factory.build}

	bumpCommand := builder.BuildBumpCommand()
	prepareCommand(bumpCommand)

	require.NoError(t, bumpCommand.RunE(bumpCommand, []string{"minor"}))

	require.Equal(t, []string{BumpTaskName}, factory.executor.executedTargets)
	require.Len(t, factory.capturedOptions, 1)
	require.Len(t, factory.capturedOptions[0].Tasks, 7)
}
