package watch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	eventSourceMissingMessageConstant = "watch event source not configured"
	batchRunnerMissingMessageConstant = "watch batch runner not configured"
	changeDetectedMessageConstant     = "filesystem change detected"
	batchFailureMessageConstant       = "check sequence failed"
	watchErrorMessageConstant         = "filesystem watcher error"
	changedPathFieldNameConstant      = "path"
)

var (
	// ErrEventSourceNotConfigured indicates the event source dependency was missing.
	ErrEventSourceNotConfigured = errors.New(eventSourceMissingMessageConstant)
	// ErrBatchRunnerNotConfigured indicates the batch runner dependency was missing.
	ErrBatchRunnerNotConfigured = errors.New(batchRunnerMissingMessageConstant)
)

// Event describes a single filesystem change notification.
type Event struct {
	Path string
}

// EventSource delivers filesystem change notifications.
type EventSource interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// BatchRunner executes the composite check sequence for one change batch.
type BatchRunner func(executionContext context.Context) error

// LoopOptions configure a Loop.
type LoopOptions struct {
	Source          EventSource
	DebounceWindow  time.Duration
	Runner          BatchRunner
	ClearTerminal   func()
	Logger          *zap.Logger
	RunInitialBatch bool
}

// Loop re-runs the check sequence once per coalesced batch of filesystem
// changes until the context is cancelled.
type Loop struct {
	source          EventSource
	debounceWindow  time.Duration
	runner          BatchRunner
	clearTerminal   func()
	logger          *zap.Logger
	runInitialBatch bool
}

// NewLoop constructs a Loop from the provided options.
func NewLoop(options LoopOptions) (*Loop, error) {
	if options.Source == nil {
		return nil, ErrEventSourceNotConfigured
	}
	if options.Runner == nil {
		return nil, ErrBatchRunnerNotConfigured
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clearTerminal := options.ClearTerminal
	if clearTerminal == nil {
		clearTerminal = func() {}
	}

	return &Loop{
		source:          options.Source,
		debounceWindow:  options.DebounceWindow,
		runner:          options.Runner,
		clearTerminal:   clearTerminal,
		logger:          logger,
		runInitialBatch: options.RunInitialBatch,
	}, nil
}

// Run blocks, executing one check sequence per detected change batch. It
// returns when the context is cancelled or the event source closes.
func (loop *Loop) Run(executionContext context.Context) error {
	defer func() {
		_ = loop.source.Close()
	}()

	if loop.runInitialBatch {
		loop.runBatch(executionContext)
	}

	for {
		select {
		case <-executionContext.Done():
			return nil
		case watchError, channelOpen := <-loop.source.Errors():
			if !channelOpen {
				return nil
			}
			loop.logger.Warn(watchErrorMessageConstant, zap.Error(watchError))
		case event, channelOpen := <-loop.source.Events():
			if !channelOpen {
				return nil
			}
			loop.logger.Debug(changeDetectedMessageConstant, zap.String(changedPathFieldNameConstant, event.Path))

			if !loop.coalesce(executionContext) {
				return nil
			}
			loop.runBatch(executionContext)
		}
	}
}

// coalesce drains events until the debounce window elapses without a new one.
// It reports false when the context was cancelled while draining.
func (loop *Loop) coalesce(executionContext context.Context) bool {
	if loop.debounceWindow <= 0 {
		return drainPending(loop.source.Events())
	}

	debounceTimer := time.NewTimer(loop.debounceWindow)
	defer debounceTimer.Stop()

	for {
		select {
		case <-executionContext.Done():
			return false
		case _, channelOpen := <-loop.source.Events():
			if !channelOpen {
				return true
			}
			if !debounceTimer.Stop() {
				<-debounceTimer.C
			}
			debounceTimer.Reset(loop.debounceWindow)
		case <-debounceTimer.C:
			return true
		}
	}
}

func drainPending(events <-chan Event) bool {
	for {
		select {
		case _, channelOpen := <-events:
			if !channelOpen {
				return true
			}
		default:
			return true
		}
	}
}

func (loop *Loop) runBatch(executionContext context.Context) {
	if executionContext.Err() != nil {
		return
	}

	loop.clearTerminal()
	if batchError := loop.runner(executionContext); batchError != nil {
		loop.logger.Warn(batchFailureMessageConstant, zap.Error(batchError))
	}
}
