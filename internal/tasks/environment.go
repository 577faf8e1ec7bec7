package tasks

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	environmentUpToDateMessageConstant    = "dependency environment up to date"
	environmentRefreshingMessageConstant  = "materializing dependency environment"
	environmentMarkerFieldNameConstant    = "marker"
	environmentManifestFieldNameConstant  = "manifest"
	environmentTaskNameFieldNameConstant  = "task"
	environmentDefaultBannerTextConstant  = "== Preparing environment =="
	environmentSyncFailureMessageConstant = "dependency synchronization failed"
)

// EnvironmentMarker tracks whether the dependency environment is current.
type EnvironmentMarker interface {
	Satisfied() bool
	Record() error
}

// EnvironmentTaskOptions configure an EnvironmentTask.
type EnvironmentTaskOptions struct {
	TaskName         string
	Banner           string
	WorkingDirectory string
	SyncCommands     []CommandSpec
	Marker           EnvironmentMarker
	Executor         ToolExecutor
	Logger           *zap.Logger
}

// EnvironmentTask materializes the dependency environment and records the
// sentinel. When the sentinel is already current the setup commands are
// skipped entirely.
type EnvironmentTask struct {
	taskName         string
	banner           string
	workingDirectory string
	syncCommands     []CommandSpec
	marker           EnvironmentMarker
	executor         ToolExecutor
	logger           *zap.Logger
}

// NewEnvironmentTask constructs an EnvironmentTask.
func NewEnvironmentTask(options EnvironmentTaskOptions) (*EnvironmentTask, error) {
	taskName := strings.TrimSpace(options.TaskName)
	if len(taskName) == 0 {
		return nil, ErrTaskNameRequired
	}
	if options.Marker == nil {
		return nil, ErrEnvironmentMarkerNotConfigured
	}
	if options.Executor == nil {
		return nil, ErrToolExecutorNotConfigured
	}

	banner := options.Banner
	if len(strings.TrimSpace(banner)) == 0 {
		banner = environmentDefaultBannerTextConstant
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EnvironmentTask{
		taskName:         taskName,
		banner:           banner,
		workingDirectory: options.WorkingDirectory,
		syncCommands:     append([]CommandSpec{}, options.SyncCommands...),
		marker:           options.Marker,
		executor:         options.Executor,
		logger:           logger,
	}, nil
}

// Name returns the registered task name.
func (task *EnvironmentTask) Name() string {
	return task.taskName
}

// Banner returns the banner printed before execution.
func (task *EnvironmentTask) Banner() string {
	return task.banner
}

// Prerequisites returns the declared prerequisite names.
func (task *EnvironmentTask) Prerequisites() []string {
	return nil
}

// Execute checks the sentinel and synchronizes dependencies when it is stale.
func (task *EnvironmentTask) Execute(executionContext context.Context) error {
	if task.marker.Satisfied() {
		task.logger.Debug(environmentUpToDateMessageConstant,
			zap.String(environmentTaskNameFieldNameConstant, task.taskName),
		)
		return nil
	}

	task.logger.Info(environmentRefreshingMessageConstant,
		zap.String(environmentTaskNameFieldNameConstant, task.taskName),
	)

	if syncError := runCommands(executionContext, task.executor, task.workingDirectory, task.syncCommands); syncError != nil {
		task.logger.Error(environmentSyncFailureMessageConstant, zap.Error(syncError))
		return syncError
	}

	return task.marker.Record()
}
