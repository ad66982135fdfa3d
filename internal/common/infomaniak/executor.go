package infomaniak

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	stderrors "infomaniak-workers/internal/common/errors"
	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/metrics"
)

// Invocation is one input record of a batch.
type Invocation struct {
	Resource   string
	Operation  string
	Parameters ParameterBag
	Options    Options
}

// Execution describes one finished record, successful or not.
type Execution struct {
	Node      string
	Resource  string
	Operation string
	Method    Method
	Path      string
	ItemCount int
	Duration  time.Duration
	Err       error
}

// ExecutionHook observes every record an Executor processes.
type ExecutionHook func(ctx context.Context, exec Execution)

// Executor runs operations of one node registry against the API.
type Executor struct {
	registry   *Registry
	transports TransportSource
	logger     logger.Logger
	tracer     trace.Tracer
	hooks      []ExecutionHook
}

func NewExecutor(registry *Registry, transports TransportSource, log logger.Logger, hooks ...ExecutionHook) *Executor {
	return &Executor{
		registry:   registry,
		transports: transports,
		logger:     log.WithFields(map[string]interface{}{"node": registry.Node()}),
		tracer:     otel.Tracer("infomaniak-workers/infomaniak"),
		hooks:      hooks,
	}
}

func (e *Executor) Registry() *Registry { return e.registry }

// Execute resolves and dispatches one record and returns its output records.
func (e *Executor) Execute(ctx context.Context, resource, operation string, bag ParameterBag, opts Options) ([]interface{}, error) {
	start := time.Now()
	exec := Execution{Node: e.registry.Node(), Resource: resource, Operation: operation}

	ctx, span := e.tracer.Start(ctx, "infomaniak.execute", trace.WithAttributes(
		attribute.String("infomaniak.node", exec.Node),
		attribute.String("infomaniak.resource", resource),
		attribute.String("infomaniak.operation", operation),
		attribute.Bool("infomaniak.return_all", opts.ReturnAll),
	))
	defer span.End()

	items, err := e.execute(ctx, &exec, bag, opts)

	exec.Duration = time.Since(start)
	exec.ItemCount = len(items)
	exec.Err = err

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("infomaniak.items", len(items)))
	metrics.OperationsTotal.WithLabelValues(exec.Node, resource, operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(exec.Node, resource).Observe(exec.Duration.Seconds())
	metrics.ItemsReturned.WithLabelValues(exec.Node).Add(float64(len(items)))

	for _, hook := range e.hooks {
		hook(ctx, exec)
	}
	return items, err
}

func (e *Executor) execute(ctx context.Context, exec *Execution, bag ParameterBag, opts Options) ([]interface{}, error) {
	def, err := e.registry.Lookup(exec.Resource, exec.Operation)
	if err != nil {
		return nil, err
	}

	req, err := Resolve(def, bag)
	if err != nil {
		return nil, err
	}
	exec.Method = req.Method
	exec.Path = req.Path

	tr, err := e.transports.Transport(opts.Authentication)
	if err != nil {
		return nil, e.wrapTransportError(def, err)
	}

	e.logger.Debug("Dispatching operation", map[string]interface{}{
		"resource":   def.Resource,
		"operation":  def.Key,
		"method":     req.Method,
		"path":       req.Path,
		"pagination": def.Pagination.String(),
		"returnAll":  opts.ReturnAll,
	})

	items, err := Dispatch(ctx, tr, def, req, opts)
	if err != nil {
		return nil, e.wrapTransportError(def, err)
	}
	return items, nil
}

// ExecuteBatch processes invocations in order and stops at the first failure.
// Records produced before the failure are returned alongside the error.
func (e *Executor) ExecuteBatch(ctx context.Context, invocations []Invocation) ([]interface{}, error) {
	out := make([]interface{}, 0, len(invocations))
	for i, inv := range invocations {
		items, err := e.Execute(ctx, inv.Resource, inv.Operation, inv.Parameters, inv.Options)
		if err != nil {
			stdErr := stderrors.Normalize(err).WithMetadata("recordIndex", i)
			return out, stdErr
		}
		out = append(out, items...)
	}
	return out, nil
}

// wrapTransportError attaches node and operation context to transport failures.
// A POST or PATCH that may have reached the server is only retried when throttled.
func (e *Executor) wrapTransportError(def *OperationDefinition, err error) error {
	stdErr := e.classifyTransportError(def, err)

	var apiErr *APIError
	throttled := errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
	reached := stdErr.Code == stderrors.ErrCodeInfomaniakAPIError || stdErr.Code == stderrors.ErrCodeInfomaniakAPITimeout
	if reached && stdErr.Retryable && !throttled && !def.Method.Idempotent() {
		stdErr.Retryable = false
		stdErr = stdErr.WithMetadata("method", string(def.Method))
	}
	return stdErr
}

func (e *Executor) classifyTransportError(def *OperationDefinition, err error) *stderrors.StandardError {
	label := fmt.Sprintf("%s %s", e.registry.Node(), def.ID())

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return stderrors.NewInfomaniakAPIError(label, apiErr.StatusCode, err).
			WithMetadata("apiErrorCode", apiErr.Code).
			WithMetadata("requestId", apiErr.RequestID)
	case errors.Is(err, ErrUnknownAuthentication), errors.Is(err, ErrNoCredentials):
		return stderrors.NewAuthenticationError(err.Error())
	case errors.Is(err, ErrTokenUnavailable):
		return stderrors.NewTokenRefreshFailedError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return stderrors.NewInfomaniakAPITimeoutError(label, err)
	default:
		return stderrors.NewInfomaniakAPIError(label, 0, err)
	}
}
