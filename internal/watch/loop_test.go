package watch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devkitlabs/taskmill/internal/watch"
)

const (
	testChangedPathConstant    = "io/df.go"
	testBatchWaitTimeout       = 2 * time.Second
	testDebounceWindowConstant = 20 * time.Millisecond
)

type syntheticEventSource struct {
	events    chan watch.Event
	errors    chan error
	closeOnce sync.Once
}

func newSyntheticEventSource() *syntheticEventSource {
	return &syntheticEventSource{
		events: make(chan watch.Event, 16),
		errors: make(chan error, 1),
	}
}

func (source *syntheticEventSource) Events() <-chan watch.Event { return source.events }
func (source *syntheticEventSource) Errors() <-chan error       { return source.errors }

func (source *syntheticEventSource) Close() error {
	source.closeOnce.Do(func() {
		close(source.events)
		close(source.errors)
	})
	return nil
}

type countingBatchRunner struct {
	mutex sync.Mutex
	runs  int
	ran   chan struct{}
	err   error
}

func newCountingBatchRunner() *countingBatchRunner {
	return &countingBatchRunner{ran: make(chan struct{}, 16)}
}

func (runner *countingBatchRunner) run(context.Context) error {
	runner.mutex.Lock()
	runner.runs++
	runner.mutex.Unlock()
	runner.ran <- struct{}{}
	return runner.err
}

func (runner *countingBatchRunner) count() int {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	return runner.runs
}

func waitForRun(testInstance *testing.T, runner *countingBatchRunner) {
	testInstance.Helper()
	select {
	case <-runner.ran:
	case <-time.After(testBatchWaitTimeout):
		testInstance.Fatal("timed out waiting for check sequence run")
	}
}

func TestNewLoopValidatesDependencies(testInstance *testing.T) {
	_, creationError := watch.NewLoop(watch.LoopOptions{Runner: newCountingBatchRunner().run})
	require.ErrorIs(testInstance, creationError, watch.ErrEventSourceNotConfigured)

	_, creationError = watch.NewLoop(watch.LoopOptions{Source: newSyntheticEventSource()})
	require.ErrorIs(testInstance, creationError, watch.ErrBatchRunnerNotConfigured)
}

func TestLoopRunsOneBatchPerChange(testInstance *testing.T) {
	source := newSyntheticEventSource()
	runner := newCountingBatchRunner()

	loop, creationError := watch.NewLoop(watch.LoopOptions{Source: source, Runner: runner.run})
	require.NoError(testInstance, creationError)

	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(executionContext)
	}()

	source.events <- watch.Event{Path: testChangedPathConstant}
	waitForRun(testInstance, runner)

	source.events <- watch.Event{Path: testChangedPathConstant}
	waitForRun(testInstance, runner)

	cancel()
	require.NoError(testInstance, <-loopDone)
	require.Equal(testInstance, 2, runner.count())
}

func TestLoopCoalescesRapidChanges(testInstance *testing.T) {
	source := newSyntheticEventSource()
	runner := newCountingBatchRunner()

	loop, creationError := watch.NewLoop(watch.LoopOptions{
		Source:         source,
		Runner:         runner.run,
		DebounceWindow: testDebounceWindowConstant,
	})
	require.NoError(testInstance, creationError)

	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(executionContext)
	}()

	for changeIndex := 0; changeIndex < 5; changeIndex++ {
		source.events <- watch.Event{Path: testChangedPathConstant}
	}
	waitForRun(testInstance, runner)

	// The burst must have collapsed into a single run.
	require.Equal(testInstance, 1, runner.count())

	cancel()
	require.NoError(testInstance, <-loopDone)
}

func TestLoopClearsTerminalBeforeEachBatch(testInstance *testing.T) {
	source := newSyntheticEventSource()
	runner := newCountingBatchRunner()

	var clearMutex sync.Mutex
	clearCount := 0
	loop, creationError := watch.NewLoop(watch.LoopOptions{
		Source: source,
		Runner: runner.run,
		ClearTerminal: func() {
			clearMutex.Lock()
			clearCount++
			clearMutex.Unlock()
		},
	})
	require.NoError(testInstance, creationError)

	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(executionContext)
	}()

	source.events <- watch.Event{Path: testChangedPathConstant}
	waitForRun(testInstance, runner)

	cancel()
	require.NoError(testInstance, <-loopDone)

	clearMutex.Lock()
	defer clearMutex.Unlock()
	require.Equal(testInstance, 1, clearCount)
}

func TestLoopContinuesAfterFailedBatch(testInstance *testing.T) {
	source := newSyntheticEventSource()
	runner := newCountingBatchRunner()
	runner.err = errors.New("gofmt check failed")

	loop, creationError := watch.NewLoop(watch.LoopOptions{Source: source, Runner: runner.run})
	require.NoError(testInstance, creationError)

	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(executionContext)
	}()

	source.events <- watch.Event{Path: testChangedPathConstant}
	waitForRun(testInstance, runner)
	source.events <- watch.Event{Path: testChangedPathConstant}
	waitForRun(testInstance, runner)

	cancel()
	require.NoError(testInstance, <-loopDone)
	require.Equal(testInstance, 2, runner.count())
}

func TestLoopStopsWhenSourceCloses(testInstance *testing.T) {
	source := newSyntheticEventSource()
	runner := newCountingBatchRunner()

	loop, creationError := watch.NewLoop(watch.LoopOptions{Source: source, Runner: runner.run})
	require.NoError(testInstance, creationError)

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(context.Background())
	}()

	require.NoError(testInstance, source.Close())
	require.NoError(testInstance, <-loopDone)
	require.Zero(testInstance, runner.count())
}
