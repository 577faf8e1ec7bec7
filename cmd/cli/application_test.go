package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeInitializationScopeArguments(t *testing.T) {
	testCases := []struct {
		name              string
		providedArguments []string
		expectedArguments []string
	}{
		{
			name:              "no_arguments",
			providedArguments: nil,
			expectedArguments: nil,
		},
		{
			name:              "bare_flag_receives_default_scope",
			providedArguments: []string{"--init"},
			expectedArguments: []string{"--init=local"},
		},
		{
			name:              "bare_flag_before_other_flag",
			providedArguments: []string{"--init", "--force"},
			expectedArguments: []string{"--init=local", "--force"},
		},
		{
			name:              "empty_assignment_receives_default_scope",
			providedArguments: []string{"--init="},
			expectedArguments: []string{"--init=local"},
		},
		{
			name:              "explicit_scope_is_preserved",
			providedArguments: []string{"--init", "user"},
			expectedArguments: []string{"--init", "user"},
		},
		{
			name:              "unrelated_arguments_are_preserved",
			providedArguments: []string{"check", "--log-level", "debug"},
			expectedArguments: []string{"check", "--log-level", "debug"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedArguments, normalizeInitializationScopeArguments(testCase.providedArguments))
		})
	}
}

func TestEmbeddedDefaultConfigurationDecodes(t *testing.T) {
	configurationContent, configurationType := EmbeddedDefaultConfiguration()
	require.NotEmpty(t, configurationContent)
	require.Equal(t, "yaml", configurationType)
}

func TestApplicationRegistersTaskCommands(t *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	for _, expectedName := range []string{"env", "fmt", "lint", "typecheck", "coverage", "check", "tasks", "bump", "watch", "version"} {
		require.True(t, registeredNames[expectedName], "command %s not registered", expectedName)
	}
}

func TestApplicationInitializeConfigurationAppliesFileSettings(t *testing.T) {
	temporaryDirectory := t.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, "config.yaml")
	configurationContent := "common:\n" +
		"  log_level: debug\n" +
		"  log_format: structured\n" +
		"project:\n" +
		"  metadata_path: release.yaml\n" +
		"tasks:\n" +
		"  lint:\n" +
		"    commands:\n" +
		"      - tool: staticcheck\n" +
		"        arguments: [\"./...\"]\n"
	require.NoError(t, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	application := NewApplication()
	application.configurationFilePath = configurationPath

	require.NoError(t, application.InitializeForCommand("check"))

	require.Equal(t, "debug", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.Equal(t, configurationPath, application.ConfigFileUsed())
	require.False(t, application.humanReadableLoggingEnabled())

	taskConfiguration := application.taskCommandConfiguration()
	require.Equal(t, "release.yaml", taskConfiguration.Project.MetadataPath)
	require.Len(t, taskConfiguration.Tasks.Lint.Commands, 1)
	require.Equal(t, "staticcheck", taskConfiguration.Tasks.Lint.Commands[0].Tool)
}

func TestApplicationInitializeConfigurationUsesEmbeddedDefaults(t *testing.T) {
	application := NewApplication()

	require.NoError(t, application.InitializeForCommand("check"))

	require.Equal(t, "info", application.configuration.Common.LogLevel)
	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())

	taskConfiguration := application.taskCommandConfiguration().Sanitize()
	require.Equal(t, "go.mod", taskConfiguration.Project.ManifestPath)
	require.Equal(t, "go", taskConfiguration.Tasks.Environment.Commands[0].Tool)
}

func TestWriteConfigurationFileHonorsForceFlag(t *testing.T) {
	temporaryDirectory := t.TempDir()
	initializationPlan := configurationInitializationPlan{
		DirectoryPath: temporaryDirectory,
		FilePath:      filepath.Join(temporaryDirectory, "config.yaml"),
	}
	configurationContent, _ := EmbeddedDefaultConfiguration()

	application := NewApplication()

	require.NoError(t, application.writeConfigurationFile(initializationPlan, configurationContent))
	require.FileExists(t, initializationPlan.FilePath)

	overwriteError := application.writeConfigurationFile(initializationPlan, configurationContent)
	require.Error(t, overwriteError)

	application.configurationInitializationForced = true
	require.NoError(t, application.writeConfigurationFile(initializationPlan, configurationContent))
}

func TestResolveConfigurationInitializationPlanRejectsUnknownScope(t *testing.T) {
	application := NewApplication()

	_, planError := application.resolveConfigurationInitializationPlan("global")
	require.Error(t, planError)
	require.Contains(t, planError.Error(), "global")
}
