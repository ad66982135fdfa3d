// Package coreresources is the Core Resources node: accounts, profile,
// reference data (countries, languages, timezones), products, actions,
// async tasks and events.
package coreresources

import (
	"fmt"

	"infomaniak-workers/internal/common/nodeworker"
)

const (
	TaskType = "infomaniak.core-resources"
	NodeName = "core-resources"
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
