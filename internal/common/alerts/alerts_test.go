package alerts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"infomaniak-workers/internal/common/aws"
	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/logger"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockSNSAPI struct {
	mock.Mock
}

func (m *MockSNSAPI) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

type MockSESAPI struct {
	mock.Mock
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func sampleAlert() Alert {
	return Alert{
		TaskType:   "infomaniak.core-resources",
		Node:       "core-resources",
		Resource:   "Countries",
		Operation:  "Display A Country",
		JobKey:     42,
		ErrorCode:  "MISSING_PATH_PARAMETER",
		Message:    "Missing required path parameter",
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// ==========================
// Tests
// ==========================

func TestAlert_SubjectAndBody(t *testing.T) {
	a := sampleAlert()
	assert.Equal(t, "[core-resources] infomaniak.core-resources failed: MISSING_PATH_PARAMETER", a.Subject())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(a.Body()), &decoded))
	assert.Equal(t, "Countries", decoded["resource"])
	assert.Equal(t, float64(42), decoded["jobKey"])
}

func TestSNSNotifier_Notify(t *testing.T) {
	api := new(MockSNSAPI)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return awssdk.ToString(in.TopicArn) == "arn:aws:sns:eu-central-1:123:alerts" &&
			awssdk.ToString(in.MessageAttributes["errorCode"].StringValue) == "MISSING_PATH_PARAMETER"
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("m-1")}, nil)

	n := NewSNSNotifier(aws.NewSNSClientWithAPI(api), "arn:aws:sns:eu-central-1:123:alerts")
	require.NoError(t, n.Notify(context.Background(), sampleAlert()))
	api.AssertExpectations(t)
}

func TestSESNotifier_Notify(t *testing.T) {
	api := new(MockSESAPI)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return awssdk.ToString(in.Source) == "workers@example.com" &&
			len(in.Destination.ToAddresses) == 2
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("e-1")}, nil)

	n := NewSESNotifier(aws.NewSESClientWithAPI(api), "workers@example.com", []string{"ops@example.com", "dev@example.com"})
	require.NoError(t, n.Notify(context.Background(), sampleAlert()))
	api.AssertExpectations(t)
}

func TestMulti_JoinsErrors(t *testing.T) {
	failing := new(MockSNSAPI)
	failing.On("Publish", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	ok := new(MockSESAPI)
	ok.On("SendEmail", mock.Anything, mock.Anything).Return(&ses.SendEmailOutput{MessageId: awssdk.String("e-1")}, nil)

	m := Multi{
		NewSNSNotifier(aws.NewSNSClientWithAPI(failing), "arn"),
		NewSESNotifier(aws.NewSESClientWithAPI(ok), "from@example.com", []string{"to@example.com"}),
	}

	err := m.Notify(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	// the SES notifier still ran
	ok.AssertExpectations(t)
}

func TestNewFromConfig_NothingEnabled(t *testing.T) {
	n, err := NewFromConfig(context.Background(), config.AlertsConfig{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
}
