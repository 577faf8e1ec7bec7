package cli

import (
	"github.com/devkitlabs/taskmill/cmd/cli/taskcmd"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Project taskcmd.ProjectConfiguration   `mapstructure:"project"`
	Tasks   taskcmd.TasksConfiguration     `mapstructure:"tasks"`
	Watch   taskcmd.WatchConfiguration     `mapstructure:"watch"`
	Bump    taskcmd.BumpConfiguration      `mapstructure:"bump"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func (configuration ApplicationConfiguration) taskCommandConfiguration() taskcmd.CommandConfiguration {
	return taskcmd.CommandConfiguration{
		Project: configuration.Project,
		Tasks:   configuration.Tasks,
		Watch:   configuration.Watch,
		Bump:    configuration.Bump,
	}
}
