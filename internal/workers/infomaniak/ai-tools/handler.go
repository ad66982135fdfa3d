// Package aitools is the AI Tools node: LLM products, models, chat and
// embedding inference, image generation and batched audio transcription.
package aitools

import (
	"fmt"

	"infomaniak-workers/internal/common/nodeworker"
)

const (
	TaskType = "infomaniak.ai-tools"
	NodeName = "ai-tools"
)

func NewHandler(opts nodeworker.HandlerOptions) (*nodeworker.Handler, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s registry: %w", NodeName, err)
	}
	return nodeworker.NewHandler(nodeworker.Node{
		Name:     NodeName,
		TaskType: TaskType,
		Registry: registry,
	}, opts)
}
