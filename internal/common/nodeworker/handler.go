// Package nodeworker runs one Infomaniak node as a Zeebe job worker. A job
// names a resource and operation and carries one or more parameter bags;
// the worker executes them in order and completes the job with the
// flattened output.
package nodeworker

import (
	"context"
	"fmt"
	"time"

	"infomaniak-workers/internal/common/alerts"
	"infomaniak-workers/internal/common/audit"
	"infomaniak-workers/internal/common/camunda"
	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/errors"
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/metrics"
	"infomaniak-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	alertTimeout = 10 * time.Second
	// commandTimeout bounds the complete, fail and throw commands including retries.
	commandTimeout = 30 * time.Second
)

// Node identifies the operation table a handler serves.
type Node struct {
	Name     string
	TaskType string
	Registry *infomaniak.Registry
}

type Handler struct {
	node         Node
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	service      *Service
	errorHandler *errors.ErrorHandler
	notifier     alerts.Notifier
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Logger       logger.Logger
	Transports   infomaniak.TransportSource
	Hooks        []infomaniak.ExecutionHook
	Notifier     alerts.Notifier
}

func NewHandler(node Node, opts HandlerOptions) (*Handler, error) {
	if node.Registry == nil {
		return nil, fmt.Errorf("node %s has no operation registry", node.Name)
	}
	if opts.Transports == nil {
		return nil, fmt.Errorf("node %s has no transport source", node.Name)
	}

	workerConfig := createConfigFromAppConfig(opts.AppConfig, node.Name, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", node.Name, err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json", node.TaskType)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = alerts.NopNotifier{}
	}

	for _, warning := range node.Registry.Warnings() {
		loggerInstance.Warn("Operation registry lint", map[string]interface{}{
			"node":    node.Name,
			"warning": warning,
		})
	}

	handler := &Handler{
		node:         node,
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		notifier:     notifier,
	}
	handler.errorHandler = errors.NewErrorHandler(loggerInstance).WithSender(handler.sendCommand)

	executor := infomaniak.NewExecutor(node.Registry, opts.Transports, loggerInstance, opts.Hooks...)
	handler.service = NewService(ServiceDependencies{
		Logger:     loggerInstance,
		Executor:   executor,
		Transports: opts.Transports,
	}, handler.config)

	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	taskType := h.node.TaskType
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

	ctx := context.Background()

	h.logger.Info("Processing Infomaniak job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             taskType,
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, nil, err)
		return
	}

	ctx = audit.ContextWithJob(ctx, audit.JobInfo{
		JobKey:        job.GetKey(),
		CorrelationID: input.CorrelationID,
	})

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	output, err := h.Execute(execCtx, input)
	cancel()
	if err != nil {
		h.failJob(ctx, client, job, input, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	input := &Input{
		Resource:  variables["resource"].(string),
		Operation: variables["operation"].(string),
	}

	if auth, ok := variables["authentication"].(string); ok {
		input.Authentication = auth
	}
	if params, ok := variables["parameters"].(map[string]interface{}); ok {
		input.Parameters = infomaniak.ParameterBag(params)
	}

	if raw, ok := variables["records"]; ok {
		recordsResult, err := validation.ValidateDocument(GetRecordsSchema(), raw)
		if err != nil {
			return nil, errors.NewInputParsingFailedError(err)
		}
		if !recordsResult.Valid {
			return nil, errors.NewValidationFailedError(fmt.Sprintf("Invalid records: %v", recordsResult.GetErrorMessages()))
		}
		for _, rec := range raw.([]interface{}) {
			input.Records = append(input.Records, infomaniak.ParameterBag(rec.(map[string]interface{})))
		}
	}

	if v, ok := variables[infomaniak.KeyReturnAll].(bool); ok {
		input.ReturnAll = &v
	}
	if v, ok := variables[infomaniak.KeyLimit].(float64); ok {
		limit := int(v)
		input.Limit = &limit
	}
	if v, ok := variables[infomaniak.KeyReturnFullResponse].(bool); ok {
		input.ReturnFullResponse = &v
	}

	if id, ok := variables["correlationId"].(string); ok && id != "" {
		input.CorrelationID = id
	} else {
		input.CorrelationID = uuid.NewString()
	}

	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.Variables())
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": h.node.TaskType,
		})
		return
	}

	cmdCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commandTimeout)
	defer cancel()

	err = h.sendCommand(cmdCtx, "complete job", func(ctx context.Context) error {
		_, err := request.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": h.node.TaskType,
		})
		return
	}

	h.logger.Info("Completed Infomaniak job", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"resource":    output.Resource,
		"operation":   output.Operation,
		"itemCount":   output.ItemCount,
		"recordCount": output.RecordCount,
		"worker":      h.node.TaskType,
	})
}

// failJob reports the error to the broker and alerts when no retries remain.
// input is nil when the job variables could not be parsed.
func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, input *Input, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(h.node.TaskType, extractErrorCode(err)).Inc()

	cmdCtx, cancelCmd := context.WithTimeout(context.WithoutCancel(ctx), commandTimeout)
	bpmnErr := h.errorHandler.HandleJobError(cmdCtx, client, job, err)
	cancelCmd()
	if !isTerminal(bpmnErr, job) {
		return
	}

	alert := h.buildAlert(job, input, err)
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	if notifyErr := h.notifier.Notify(alertCtx, alert); notifyErr != nil {
		h.logger.Warn("Failed to send failure alert", map[string]interface{}{
			"jobKey":    job.GetKey(),
			"errorCode": alert.ErrorCode,
			"error":     notifyErr.Error(),
			"worker":    h.node.TaskType,
		})
	}
}

// sendCommand delivers a broker command, with retries when a camunda client is configured.
func (h *Handler) sendCommand(ctx context.Context, operation string, send func(context.Context) error) error {
	if h.camunda == nil {
		return send(ctx)
	}
	return h.camunda.SendCommand(ctx, operation, send)
}

func (h *Handler) buildAlert(job entities.Job, input *Input, err error) alerts.Alert {
	stdErr := errors.Normalize(err)
	alert := alerts.Alert{
		TaskType:           h.node.TaskType,
		Node:               h.node.Name,
		JobKey:             job.GetKey(),
		ProcessInstanceKey: job.GetProcessInstanceKey(),
		ErrorCode:          string(stdErr.Code),
		Message:            stdErr.Message,
		Details:            stdErr.Details,
		OccurredAt:         time.Now().UTC(),
	}
	if input != nil {
		alert.Resource = input.Resource
		alert.Operation = input.Operation
	}
	return alert
}

// isTerminal mirrors the error handler: a job is thrown, not retried, when the
// error allows no retries or the broker has none left.
func isTerminal(bpmnErr *errors.BPMNError, job entities.Job) bool {
	return bpmnErr.Retries == 0 || job.GetRetries() <= 1
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", map[string]interface{}{
			"worker": h.node.TaskType,
		})
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("no camunda client for %s", h.node.TaskType)
	}

	h.jobWorker = camunda.OpenWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:       h.node.TaskType,
		MaxJobsActive:  h.config.MaxJobsActive,
		Timeout:        h.config.Timeout,
		FetchVariables: InputVariables,
	}, h.Handle)

	h.logger.Info("Infomaniak node worker registered with Camunda", map[string]interface{}{
		"taskType":      h.node.TaskType,
		"node":          h.node.Name,
		"operations":    h.node.Registry.Len(),
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", map[string]interface{}{
			"worker": h.node.TaskType,
		})
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	if h.camunda != nil {
		if err := h.camunda.HealthCheck(ctx); err != nil {
			return fmt.Errorf("camunda health check failed: %w", err)
		}
	}
	if err := h.service.TestConnection(ctx); err != nil {
		return fmt.Errorf("infomaniak health check failed: %w", err)
	}
	return nil
}

func (h *Handler) GetTaskType() string {
	return h.node.TaskType
}

func (h *Handler) NodeName() string {
	return h.node.Name
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func (h *Handler) Registry() *infomaniak.Registry {
	return h.node.Registry
}

// Execute runs the job input directly, without a broker.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func extractErrorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
