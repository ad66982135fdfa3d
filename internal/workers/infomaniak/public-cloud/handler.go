// Package publiccloud is the Public Cloud node: clouds, projects, users,
// managed Kubernetes (KaaS) and managed databases (DBaaS).
package publiccloud

import (
	"fmt"

	"infomaniak-workers/internal/common/nodeworker"
)

const (
	TaskType = "infomaniak.public-cloud"
	NodeName = "public-cloud"
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
