package nodeworker

import (
	"context"
	"fmt"

	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
)

type Service struct {
	config     *Config
	logger     logger.Logger
	executor   *infomaniak.Executor
	transports infomaniak.TransportSource
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:     config,
		logger:     deps.Logger,
		executor:   deps.Executor,
		transports: deps.Transports,
	}
}

// Execute runs every record of the job in order and flattens their output.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	invocations := input.Invocations(s.config)
	node := s.executor.Registry().Node()

	s.logger.Info("Executing Infomaniak operation", map[string]interface{}{
		"node":      node,
		"resource":  input.Resource,
		"operation": input.Operation,
		"records":   len(invocations),
	})

	items, err := s.executor.ExecuteBatch(ctx, invocations)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Infomaniak operation completed", map[string]interface{}{
		"node":      node,
		"resource":  input.Resource,
		"operation": input.Operation,
		"itemCount": len(items),
	})

	return &Output{
		Items:       items,
		ItemCount:   len(items),
		RecordCount: len(invocations),
		Node:        node,
		Resource:    input.Resource,
		Operation:   input.Operation,
	}, nil
}

// TestConnection checks that credentials exist for the default authentication.
// It makes no API call.
func (s *Service) TestConnection(ctx context.Context) error {
	if _, err := s.transports.Transport(s.config.DefaultAuthentication); err != nil {
		return fmt.Errorf("infomaniak credentials unavailable: %w", err)
	}
	return ctx.Err()
}
