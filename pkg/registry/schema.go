package registry

import (
	"infomaniak-workers/internal/common/infomaniak"
)

// Catalog is the JSON export of every node's operation table.
type Catalog struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Nodes       []Node `json:"nodes"`
}

type Node struct {
	Name      string     `json:"name"`
	TaskType  string     `json:"taskType"`
	Warnings  []string   `json:"warnings,omitempty"`
	Resources []Resource `json:"resources"`
}

type Resource struct {
	Name       string                           `json:"name"`
	Operations []infomaniak.OperationDefinition `json:"operations"`
}
