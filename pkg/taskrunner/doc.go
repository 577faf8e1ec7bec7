// Package taskrunner hosts the shared abstractions for executing taskmill
// tasks. It exposes the `Executor` interface plus helpers (`Factory`,
// `Resolve`) so CLI packages can obtain a runner once, while unit tests can
// swap in fakes. This keeps orchestration logic in `internal/taskrun`
// reusable without wiring duplication.
package taskrunner
