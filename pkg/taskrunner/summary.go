package taskrunner

import (
	"fmt"
	"strings"
	"time"

	"github.com/devkitlabs/taskmill/internal/taskrun"
)

// RenderSummaryLine returns the summary line printed after multi-task runs.
func RenderSummaryLine(outcome taskrun.Outcome) string {
	taskCount := len(outcome.ExecutedTasks)
	if taskCount <= 1 {
		return ""
	}

	parts := []string{fmt.Sprintf("Summary: total.tasks=%d", taskCount)}

	duration := outcome.Duration
	if duration < 0 {
		duration = 0
	}
	durationHuman := duration.Round(time.Millisecond).String()

	parts = append(parts, fmt.Sprintf("duration_human=%s", durationHuman))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", duration.Milliseconds()))

	return strings.Join(parts, " ")
}
