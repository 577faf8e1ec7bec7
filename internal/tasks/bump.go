package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/devkitlabs/taskmill/internal/release"
	"github.com/devkitlabs/taskmill/internal/versionfile"
)

const (
	versionRecordMissingMessageConstant  = "version record not configured"
	releaseServiceMissingMessageConstant = "release service not configured"
	bumpResultLineTemplateConstant       = "Bumped version: %s -> %s (tag %s)\n"
	bumpDryRunLineTemplateConstant       = "Would bump version: %s -> %s (tag %s)\n"
)

var (
	// ErrVersionRecordNotConfigured indicates the version record dependency was missing.
	ErrVersionRecordNotConfigured = errors.New(versionRecordMissingMessageConstant)
	// ErrReleaseServiceNotConfigured indicates the release service dependency was missing.
	ErrReleaseServiceNotConfigured = errors.New(releaseServiceMissingMessageConstant)
)

// VersionRecord persists and advances the project version.
type VersionRecord interface {
	Current() (versionfile.Version, error)
	Bump(part versionfile.Part) (versionfile.Version, versionfile.Version, error)
	Path() string
}

// Releaser records a version bump in version control.
type Releaser interface {
	Release(executionContext context.Context, options release.Options) (release.Result, error)
}

// BumpTaskOptions configure a BumpTask.
type BumpTaskOptions struct {
	TaskName       string
	Banner         string
	Prerequisites  []string
	Part           versionfile.Part
	RepositoryPath string
	TagPrefix      string
	RemoteName     string
	PushTag        bool
	DryRun         bool
	Record         VersionRecord
	Releaser       Releaser
	ConsoleWriter  io.Writer
}

// BumpTask advances the persisted project version and records the bump as a
// commit plus an annotated tag.
type BumpTask struct {
	taskName       string
	banner         string
	prerequisites  []string
	part           versionfile.Part
	repositoryPath string
	tagPrefix      string
	remoteName     string
	pushTag        bool
	dryRun         bool
	record         VersionRecord
	releaser       Releaser
	consoleWriter  io.Writer
}

// NewBumpTask constructs a BumpTask.
func NewBumpTask(options BumpTaskOptions) (*BumpTask, error) {
	taskName := strings.TrimSpace(options.TaskName)
	if len(taskName) == 0 {
		return nil, ErrTaskNameRequired
	}
	if options.Record == nil {
		return nil, ErrVersionRecordNotConfigured
	}
	if options.Releaser == nil {
		return nil, ErrReleaseServiceNotConfigured
	}
	if _, partError := versionfile.ParsePart(string(options.Part)); partError != nil {
		return nil, partError
	}

	consoleWriter := options.ConsoleWriter
	if consoleWriter == nil {
		consoleWriter = io.Discard
	}

	return &BumpTask{
		taskName:       taskName,
		banner:         options.Banner,
		prerequisites:  append([]string{}, options.Prerequisites...),
		part:           options.Part,
		repositoryPath: options.RepositoryPath,
		tagPrefix:      options.TagPrefix,
		remoteName:     options.RemoteName,
		pushTag:        options.PushTag,
		dryRun:         options.DryRun,
		record:         options.Record,
		releaser:       options.Releaser,
		consoleWriter:  consoleWriter,
	}, nil
}

// Name returns the registered task name.
func (task *BumpTask) Name() string {
	return task.taskName
}

// Banner returns the banner printed before execution.
func (task *BumpTask) Banner() string {
	return task.banner
}

// Prerequisites returns the declared prerequisite names.
func (task *BumpTask) Prerequisites() []string {
	return append([]string{}, task.prerequisites...)
}

// Execute bumps the persisted version and records the release. A dry run
// validates and reports the bump without rewriting the metadata file.
func (task *BumpTask) Execute(executionContext context.Context) error {
	var previousVersion, newVersion versionfile.Version
	if task.dryRun {
		currentVersion, currentError := task.record.Current()
		if currentError != nil {
			return currentError
		}
		previousVersion = currentVersion
		newVersion = currentVersion.Bumped(task.part)
	} else {
		bumpedFrom, bumpedTo, bumpError := task.record.Bump(task.part)
		if bumpError != nil {
			return bumpError
		}
		previousVersion = bumpedFrom
		newVersion = bumpedTo
	}

	releaseResult, releaseError := task.releaser.Release(executionContext, release.Options{
		RepositoryPath:  task.repositoryPath,
		MetadataPath:    task.record.Path(),
		PreviousVersion: previousVersion.String(),
		NewVersion:      newVersion.String(),
		TagPrefix:       task.tagPrefix,
		RemoteName:      task.remoteName,
		PushTag:         task.pushTag,
		DryRun:          task.dryRun,
	})
	if releaseError != nil {
		return releaseError
	}

	resultTemplate := bumpResultLineTemplateConstant
	if task.dryRun {
		resultTemplate = bumpDryRunLineTemplateConstant
	}
	fmt.Fprintf(task.consoleWriter, resultTemplate, previousVersion.String(), newVersion.String(), releaseResult.TagName)
	return nil
}
