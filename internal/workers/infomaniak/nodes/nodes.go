// Package nodes lists the Infomaniak node workers served by this module.
package nodes

import (
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/nodeworker"
	aitools "infomaniak-workers/internal/workers/infomaniak/ai-tools"
	coreresources "infomaniak-workers/internal/workers/infomaniak/core-resources"
	"infomaniak-workers/internal/workers/infomaniak/meeting"
	publiccloud "infomaniak-workers/internal/workers/infomaniak/public-cloud"
)

type Spec struct {
	Name        string
	TaskType    string
	NewRegistry func() (*infomaniak.Registry, error)
	NewHandler  func(nodeworker.HandlerOptions) (*nodeworker.Handler, error)
}

// All returns the nodes in task type order.
func All() []Spec {
	return []Spec{
		{aitools.NodeName, aitools.TaskType, aitools.NewRegistry, aitools.NewHandler},
		{coreresources.NodeName, coreresources.TaskType, coreresources.NewRegistry, coreresources.NewHandler},
		{meeting.NodeName, meeting.TaskType, meeting.NewRegistry, meeting.NewHandler},
		{publiccloud.NodeName, publiccloud.TaskType, publiccloud.NewRegistry, publiccloud.NewHandler},
	}
}

func Lookup(name string) (Spec, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
