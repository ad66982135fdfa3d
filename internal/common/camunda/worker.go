// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// WorkerOptions configures one job worker subscription.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
	// FetchVariables limits the variables the broker sends; empty means all.
	FetchVariables []string
}

func (o WorkerOptions) Name() string {
	return fmt.Sprintf("%s-worker", o.TaskType)
}

// OpenWorker subscribes handler to the task type and starts polling.
func OpenWorker(client zbc.Client, opts WorkerOptions, handler worker.JobHandler) worker.JobWorker {
	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(opts.Name())

	if len(opts.FetchVariables) > 0 {
		step = step.FetchVariables(opts.FetchVariables...)
	}
	return step.Open()
}
