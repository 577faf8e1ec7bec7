package taskcmd

import (
	"strings"
	"time"
)

const (
	defaultWorkingDirectoryConstant     = "."
	defaultManifestPathConstant         = "go.mod"
	defaultMarkerPathConstant           = ".taskmill/env-ready"
	defaultMetadataPathConstant         = "project.yaml"
	defaultCoverageProfilePathConstant  = ".taskmill/coverage.out"
	defaultCoverageReportPathConstant   = "reports/coverage"
	defaultLintReportPathConstant       = "reports/lint"
	defaultTagPrefixConstant            = "v"
	defaultRemoteNameConstant           = "origin"
	defaultDebounceMillisecondsConstant = 400
	goToolNameConstant                  = "go"
	gofmtToolNameConstant               = "gofmt"
	golangciLintToolNameConstant        = "golangci-lint"
	environmentBannerConstant           = "== Preparing environment =="
	formatBannerConstant                = "== Checking formatting =="
	lintBannerConstant                  = "== Linting =="
	typecheckBannerConstant             = "== Checking types =="
	coverageBannerConstant              = "== Running tests with coverage =="
)

// CommandSpecConfiguration names an executable and its arguments.
// FailOnOutput treats any standard output as a finding even when the tool
// exits zero.
type CommandSpecConfiguration struct {
	Tool         string   `mapstructure:"tool"`
	Arguments    []string `mapstructure:"arguments"`
	FailOnOutput bool     `mapstructure:"fail_on_output"`
}

// StepConfiguration describes a simple command-sequence task.
type StepConfiguration struct {
	Banner          string                     `mapstructure:"banner"`
	Commands        []CommandSpecConfiguration `mapstructure:"commands"`
	ReportDirectory string                     `mapstructure:"report_directory"`
}

// CoverageConfiguration describes the coverage task.
type CoverageConfiguration struct {
	Banner          string                     `mapstructure:"banner"`
	TestCommands    []CommandSpecConfiguration `mapstructure:"test_commands"`
	ReportCommands  []CommandSpecConfiguration `mapstructure:"report_commands"`
	ProfilePath     string                     `mapstructure:"profile_path"`
	ReportDirectory string                     `mapstructure:"report_directory"`
}

// ProjectConfiguration locates the project the tasks operate on.
type ProjectConfiguration struct {
	WorkingDirectory string `mapstructure:"working_directory"`
	ManifestPath     string `mapstructure:"manifest_path"`
	MarkerPath       string `mapstructure:"marker_path"`
	MetadataPath     string `mapstructure:"metadata_path"`
}

// TasksConfiguration groups the per-task command configurations.
type TasksConfiguration struct {
	Environment StepConfiguration     `mapstructure:"env"`
	Format      StepConfiguration     `mapstructure:"fmt"`
	Lint        StepConfiguration     `mapstructure:"lint"`
	Typecheck   StepConfiguration     `mapstructure:"typecheck"`
	Coverage    CoverageConfiguration `mapstructure:"coverage"`
}

// WatchConfiguration controls the filesystem watch loop.
type WatchConfiguration struct {
	Roots                []string `mapstructure:"roots"`
	SkipDirectories      []string `mapstructure:"skip_directories"`
	DebounceMilliseconds int      `mapstructure:"debounce_ms"`
	ClearTerminal        bool     `mapstructure:"clear_terminal"`
}

// DebounceWindow returns the configured debounce duration.
func (configuration WatchConfiguration) DebounceWindow() time.Duration {
	if configuration.DebounceMilliseconds <= 0 {
		return 0
	}
	return time.Duration(configuration.DebounceMilliseconds) * time.Millisecond
}

// BumpConfiguration controls version bump releases.
type BumpConfiguration struct {
	TagPrefix string `mapstructure:"tag_prefix"`
	Remote    string `mapstructure:"remote"`
	PushTag   bool   `mapstructure:"push_tag"`
}

// CommandConfiguration aggregates every task command setting.
type CommandConfiguration struct {
	Project ProjectConfiguration `mapstructure:"project"`
	Tasks   TasksConfiguration   `mapstructure:"tasks"`
	Watch   WatchConfiguration   `mapstructure:"watch"`
	Bump    BumpConfiguration    `mapstructure:"bump"`
}

// DefaultCommandConfiguration returns the configuration targeting a Go
// project with the standard toolchain.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Project: ProjectConfiguration{
			WorkingDirectory: defaultWorkingDirectoryConstant,
			ManifestPath:     defaultManifestPathConstant,
			MarkerPath:       defaultMarkerPathConstant,
			MetadataPath:     defaultMetadataPathConstant,
		},
		Tasks: TasksConfiguration{
			Environment: StepConfiguration{
				Banner: environmentBannerConstant,
				Commands: []CommandSpecConfiguration{
					{Tool: goToolNameConstant, Arguments: []string{"mod", "download"}},
				},
			},
			Format: StepConfiguration{
				Banner: formatBannerConstant,
				Commands: []CommandSpecConfiguration{
					{Tool: gofmtToolNameConstant, Arguments: []string{"-l", "."}, FailOnOutput: true},
				},
			},
			Lint: StepConfiguration{
				Banner: lintBannerConstant,
				Commands: []CommandSpecConfiguration{
					{Tool: golangciLintToolNameConstant, Arguments: []string{"run"}},
				},
				ReportDirectory: defaultLintReportPathConstant,
			},
			Typecheck: StepConfiguration{
				Banner: typecheckBannerConstant,
				Commands: []CommandSpecConfiguration{
					{Tool: goToolNameConstant, Arguments: []string{"vet", "./..."}},
				},
			},
			Coverage: CoverageConfiguration{
				Banner: coverageBannerConstant,
				TestCommands: []CommandSpecConfiguration{
					{Tool: goToolNameConstant, Arguments: []string{"test", "./...", "-coverprofile", defaultCoverageProfilePathConstant}},
				},
				ReportCommands: []CommandSpecConfiguration{
					{Tool: goToolNameConstant, Arguments: []string{"tool", "cover", "-html=" + defaultCoverageProfilePathConstant, "-o", defaultCoverageReportPathConstant + "/coverage.html"}},
				},
				ProfilePath:     defaultCoverageProfilePathConstant,
				ReportDirectory: defaultCoverageReportPathConstant,
			},
		},
		Watch: WatchConfiguration{
			Roots:                []string{defaultWorkingDirectoryConstant},
			SkipDirectories:      []string{".git", ".taskmill", "reports", "vendor"},
			DebounceMilliseconds: defaultDebounceMillisecondsConstant,
			ClearTerminal:        true,
		},
		Bump: BumpConfiguration{
			TagPrefix: defaultTagPrefixConstant,
			Remote:    defaultRemoteNameConstant,
		},
	}
}

// Sanitize fills empty fields from the defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()

	if len(strings.TrimSpace(configuration.Project.WorkingDirectory)) == 0 {
		configuration.Project.WorkingDirectory = defaults.Project.WorkingDirectory
	}
	if len(strings.TrimSpace(configuration.Project.ManifestPath)) == 0 {
		configuration.Project.ManifestPath = defaults.Project.ManifestPath
	}
	if len(strings.TrimSpace(configuration.Project.MarkerPath)) == 0 {
		configuration.Project.MarkerPath = defaults.Project.MarkerPath
	}
	if len(strings.TrimSpace(configuration.Project.MetadataPath)) == 0 {
		configuration.Project.MetadataPath = defaults.Project.MetadataPath
	}

	if len(configuration.Tasks.Environment.Commands) == 0 {
		configuration.Tasks.Environment = defaults.Tasks.Environment
	}
	if len(configuration.Tasks.Format.Commands) == 0 {
		configuration.Tasks.Format = defaults.Tasks.Format
	}
	if len(configuration.Tasks.Lint.Commands) == 0 {
		configuration.Tasks.Lint = defaults.Tasks.Lint
	}
	if len(configuration.Tasks.Typecheck.Commands) == 0 {
		configuration.Tasks.Typecheck = defaults.Tasks.Typecheck
	}
	if len(configuration.Tasks.Coverage.TestCommands) == 0 {
		configuration.Tasks.Coverage = defaults.Tasks.Coverage
	}
	if len(strings.TrimSpace(configuration.Tasks.Coverage.ProfilePath)) == 0 {
		configuration.Tasks.Coverage.ProfilePath = defaults.Tasks.Coverage.ProfilePath
	}

	if len(configuration.Watch.Roots) == 0 {
		configuration.Watch.Roots = defaults.Watch.Roots
	}
	if len(configuration.Watch.SkipDirectories) == 0 {
		configuration.Watch.SkipDirectories = defaults.Watch.SkipDirectories
	}
	if configuration.Watch.DebounceMilliseconds <= 0 {
		configuration.Watch.DebounceMilliseconds = defaults.Watch.DebounceMilliseconds
	}

	if len(strings.TrimSpace(configuration.Bump.TagPrefix)) == 0 {
		configuration.Bump.TagPrefix = defaults.Bump.TagPrefix
	}
	if len(strings.TrimSpace(configuration.Bump.Remote)) == 0 {
		configuration.Bump.Remote = defaults.Bump.Remote
	}

	return configuration
}
