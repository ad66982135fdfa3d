// Package alerts publishes notifications for jobs that failed without retries left.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"infomaniak-workers/internal/common/aws"
	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/logger"
)

// Alert describes one terminal job failure.
type Alert struct {
	TaskType           string    `json:"taskType"`
	Node               string    `json:"node"`
	Resource           string    `json:"resource,omitempty"`
	Operation          string    `json:"operation,omitempty"`
	JobKey             int64     `json:"jobKey"`
	ProcessInstanceKey int64     `json:"processInstanceKey"`
	ErrorCode          string    `json:"errorCode"`
	Message            string    `json:"message"`
	Details            string    `json:"details,omitempty"`
	OccurredAt         time.Time `json:"occurredAt"`
}

func (a Alert) Subject() string {
	return fmt.Sprintf("[%s] %s failed: %s", a.Node, a.TaskType, a.ErrorCode)
}

// Body renders the alert as indented JSON.
func (a Alert) Body() string {
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return a.Message
	}
	return string(raw)
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Alert) error { return nil }

// SNSNotifier publishes alerts to a topic.
type SNSNotifier struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSNotifier(client *aws.SNSClient, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Notify(ctx context.Context, alert Alert) error {
	_, err := n.client.PublishMessage(ctx, n.topicARN, alert.Subject(), alert.Body(), map[string]string{
		"node":      alert.Node,
		"errorCode": alert.ErrorCode,
	})
	return err
}

// SESNotifier e-mails alerts to a fixed recipient list.
type SESNotifier struct {
	client *aws.SESClient
	from   string
	to     []string
}

func NewSESNotifier(client *aws.SESClient, from string, to []string) *SESNotifier {
	return &SESNotifier{client: client, from: from, to: to}
}

func (n *SESNotifier) Notify(ctx context.Context, alert Alert) error {
	_, err := n.client.SendText(ctx, n.from, n.to, alert.Subject(), alert.Body())
	return err
}

// Multi fans an alert out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewFromConfig builds the notifiers enabled in cfg. With none enabled it
// returns a NopNotifier.
func NewFromConfig(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (Notifier, error) {
	var notifiers Multi

	if cfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, NewSNSNotifier(client, cfg.SNS.TopicARN))
	}

	if cfg.SES.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, NewSESNotifier(client, cfg.SES.FromEmail, cfg.SES.To))
	}

	log.Info("Failure alerts configured", map[string]interface{}{
		"sns": cfg.SNS.Enabled,
		"ses": cfg.SES.Enabled,
	})

	switch len(notifiers) {
	case 0:
		return NopNotifier{}, nil
	case 1:
		return notifiers[0], nil
	default:
		return notifiers, nil
	}
}
