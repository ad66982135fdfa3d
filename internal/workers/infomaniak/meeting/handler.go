// Package meeting is the Meeting node: kMeet conference rooms and calendar
// events.
package meeting

import (
	"fmt"

	"infomaniak-workers/internal/common/nodeworker"
)

const (
	TaskType = "infomaniak.meeting"
	NodeName = "meeting"
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
