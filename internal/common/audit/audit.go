// Package audit records one request-log entry per executed record.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	stderrors "infomaniak-workers/internal/common/errors"
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is one row of the request log.
type Entry struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId"`
	JobKey        int64     `json:"jobKey"`
	Node          string    `json:"node"`
	Resource      string    `json:"resource"`
	Operation     string    `json:"operation"`
	Method        string    `json:"method,omitempty"`
	Path          string    `json:"path,omitempty"`
	ItemCount     int       `json:"itemCount"`
	Status        string    `json:"status"`
	ErrorCode     string    `json:"errorCode,omitempty"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

// Multi writes to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, entry Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type jobInfoKey struct{}

// JobInfo identifies the Zeebe job an execution belongs to.
type JobInfo struct {
	JobKey        int64
	CorrelationID string
}

func ContextWithJob(ctx context.Context, info JobInfo) context.Context {
	return context.WithValue(ctx, jobInfoKey{}, info)
}

func JobFromContext(ctx context.Context) (JobInfo, bool) {
	info, ok := ctx.Value(jobInfoKey{}).(JobInfo)
	return info, ok
}

// NewEntry builds an entry from a finished execution.
func NewEntry(ctx context.Context, exec infomaniak.Execution) Entry {
	entry := Entry{
		ID:         uuid.NewString(),
		Node:       exec.Node,
		Resource:   exec.Resource,
		Operation:  exec.Operation,
		Method:     string(exec.Method),
		Path:       exec.Path,
		ItemCount:  exec.ItemCount,
		Status:     StatusSuccess,
		DurationMs: exec.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if info, ok := JobFromContext(ctx); ok {
		entry.JobKey = info.JobKey
		entry.CorrelationID = info.CorrelationID
	}
	if exec.Err != nil {
		entry.Status = StatusError
		entry.ErrorMessage = exec.Err.Error()
		if stdErr, ok := stderrors.AsStandardError(exec.Err); ok {
			entry.ErrorCode = string(stdErr.Code)
			entry.ErrorMessage = stdErr.Message
		}
	}
	return entry
}

// Hook adapts a Recorder to an execution hook. Recorder failures are logged
// and never reach the job.
func Hook(recorder Recorder, log logger.Logger) infomaniak.ExecutionHook {
	return func(ctx context.Context, exec infomaniak.Execution) {
		entry := NewEntry(ctx, exec)
		if err := recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
			log.Warn("Failed to record audit entry", map[string]interface{}{
				"node":      entry.Node,
				"resource":  entry.Resource,
				"operation": entry.Operation,
				"jobKey":    entry.JobKey,
				"error":     err.Error(),
			})
		}
	}
}
