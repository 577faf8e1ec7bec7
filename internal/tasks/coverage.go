package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devkitlabs/taskmill/internal/coverage"
)

const (
	coverageProfilePathRequiredMessageConstant = "coverage profile path must be provided"
	coverageSummaryLineTemplateConstant        = "%s\n"
)

// ErrCoverageProfilePathRequired indicates the coverage profile path option was empty.
var ErrCoverageProfilePathRequired = errors.New(coverageProfilePathRequiredMessageConstant)

// CoverageTaskOptions configure a CoverageTask.
type CoverageTaskOptions struct {
	TaskName         string
	Banner           string
	Prerequisites    []string
	WorkingDirectory string
	TestCommands     []CommandSpec
	ReportCommands   []CommandSpec
	ProfilePath      string
	ReportDirectory  string
	ConsoleWriter    io.Writer
	Executor         ToolExecutor
}

// CoverageTask runs the instrumented test suite, prints a statement-coverage
// summary, and regenerates the HTML report directory.
type CoverageTask struct {
	taskName         string
	banner           string
	prerequisites    []string
	workingDirectory string
	testCommands     []CommandSpec
	reportCommands   []CommandSpec
	profilePath      string
	reportDirectory  string
	consoleWriter    io.Writer
	executor         ToolExecutor
	summarize        func(profilePath string) (coverage.Summary, error)
}

// NewCoverageTask constructs a CoverageTask.
func NewCoverageTask(options CoverageTaskOptions) (*CoverageTask, error) {
	taskName := strings.TrimSpace(options.TaskName)
	if len(taskName) == 0 {
		return nil, ErrTaskNameRequired
	}
	if options.Executor == nil {
		return nil, ErrToolExecutorNotConfigured
	}
	profilePath := strings.TrimSpace(options.ProfilePath)
	if len(profilePath) == 0 {
		return nil, ErrCoverageProfilePathRequired
	}

	consoleWriter := options.ConsoleWriter
	if consoleWriter == nil {
		consoleWriter = io.Discard
	}

	return &CoverageTask{
		taskName:         taskName,
		banner:           options.Banner,
		prerequisites:    append([]string{}, options.Prerequisites...),
		workingDirectory: options.WorkingDirectory,
		testCommands:     append([]CommandSpec{}, options.TestCommands...),
		reportCommands:   append([]CommandSpec{}, options.ReportCommands...),
		profilePath:      profilePath,
		reportDirectory:  strings.TrimSpace(options.ReportDirectory),
		consoleWriter:    consoleWriter,
		executor:         options.Executor,
		summarize:        coverage.Summarize,
	}, nil
}

// Name returns the registered task name.
func (task *CoverageTask) Name() string {
	return task.taskName
}

// Banner returns the banner printed before execution.
func (task *CoverageTask) Banner() string {
	return task.banner
}

// Prerequisites returns the declared prerequisite names.
func (task *CoverageTask) Prerequisites() []string {
	return append([]string{}, task.prerequisites...)
}

// Execute runs the instrumented tests, renders the terminal summary, and
// rebuilds the HTML report artifacts.
func (task *CoverageTask) Execute(executionContext context.Context) error {
	if directoryError := os.MkdirAll(filepath.Dir(task.profilePath), reportDirectoryPermissionConstant); directoryError != nil {
		return directoryError
	}

	if testError := runCommands(executionContext, task.executor, task.workingDirectory, task.testCommands); testError != nil {
		return testError
	}

	summary, summaryError := task.summarize(task.profilePath)
	if summaryError != nil {
		return summaryError
	}
	for _, summaryLine := range summary.RenderLines() {
		fmt.Fprintf(task.consoleWriter, coverageSummaryLineTemplateConstant, summaryLine)
	}

	if len(task.reportDirectory) > 0 {
		if recreateError := recreateDirectory(task.reportDirectory); recreateError != nil {
			return recreateError
		}
	}

	return runCommands(executionContext, task.executor, task.workingDirectory, task.reportCommands)
}
