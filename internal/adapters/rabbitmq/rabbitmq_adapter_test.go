package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"section8-underwriter/internal/constants"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/contracts"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskUseCase struct {
	calls    int
	taskID   uuid.UUID
	inputs   []domain.PropertyInput
	override domain.ParamsOverride
	traceID  string
	err      error
}

func (f *fakeTaskUseCase) Execute(ctx context.Context, taskID uuid.UUID, inputs []domain.PropertyInput, override domain.ParamsOverride) error {
	f.calls++
	f.taskID = taskID
	f.inputs = inputs
	f.override = override
	f.traceID = contextkeys.TraceIDFromContext(ctx)
	return f.err
}

type fakePublisher struct {
	routingKey string
	msg        amqp.Publishing
	err        error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	f.routingKey = routingKey
	f.msg = msg
	return f.err
}

const taskBody = `{
	"task_id": "5b0e1c9a-3f1d-4d1e-9a57-0c9f3f0f6a11",
	"properties": [
		{"address": "12 Elm St, Indianapolis, IN", "zip": "46205", "bedrooms": 3, "list_price": 85000, "sqft": 1100}
	],
	"params": {"interest_rate": 0.07}
}`

func TestHandleDelivery_Success(t *testing.T) {
	uc := &fakeTaskUseCase{}
	adapter := newBatchTaskHandler(uc, contextkeys.NoopLogger())

	err := adapter.handleDelivery(context.Background(), amqp.Delivery{
		Body:    []byte(taskBody),
		Headers: amqp.Table{constants.HeaderTraceID: "trace-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, uc.calls)
	assert.Equal(t, "5b0e1c9a-3f1d-4d1e-9a57-0c9f3f0f6a11", uc.taskID.String())
	require.Len(t, uc.inputs, 1)
	assert.Equal(t, "46205", uc.inputs[0].Zip)
	assert.Equal(t, 85000.0, uc.inputs[0].ListPrice)
	assert.Equal(t, 1100, uc.inputs[0].SquareFeet)
	require.NotNil(t, uc.override.InterestRate)
	assert.Equal(t, 0.07, *uc.override.InterestRate)
	assert.Equal(t, "trace-1", uc.traceID)
}

func TestHandleDelivery_InvalidSchemaIsPermanent(t *testing.T) {
	uc := &fakeTaskUseCase{}
	adapter := newBatchTaskHandler(uc, contextkeys.NoopLogger())

	err := adapter.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(`{"task_id": "x"}`)})
	require.Error(t, err)
	assert.True(t, rabbitmq_consumer.IsPermanent(err))
	assert.Equal(t, 0, uc.calls)
}

func TestHandleDelivery_UnknownParamIsPermanent(t *testing.T) {
	uc := &fakeTaskUseCase{}
	adapter := newBatchTaskHandler(uc, contextkeys.NoopLogger())

	body := `{"task_id": "5b0e1c9a-3f1d-4d1e-9a57-0c9f3f0f6a11",
		"properties": [{"address": "a", "zip": "46205", "list_price": 50000}],
		"params": {"interest": 0.07}}`
	err := adapter.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(body)})
	require.Error(t, err)
	assert.True(t, rabbitmq_consumer.IsPermanent(err))
}

func TestHandleDelivery_UseCaseErrorIsRetryable(t *testing.T) {
	uc := &fakeTaskUseCase{err: errors.New("publish failed")}
	adapter := newBatchTaskHandler(uc, contextkeys.NoopLogger())

	err := adapter.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(taskBody)})
	require.Error(t, err)
	assert.False(t, rabbitmq_consumer.IsPermanent(err))
}

func TestPublishDealSheet(t *testing.T) {
	pub := &fakePublisher{}
	adapter, err := NewDealSheetPublisherAdapter(pub, constants.RoutingKeyDealSheetReady)
	require.NoError(t, err)

	taskID := uuid.New()
	result := domain.BatchResult{
		RunID:      uuid.New(),
		StartedAt:  time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 5, 10, 1, 0, 0, time.UTC),
		Summary:    map[domain.QualityTier]int{domain.TierGreenLight: 1},
		Skipped:    []domain.PropertyInput{{Address: "cheap", ListPrice: 15000}},
		Deals: []domain.DealRecord{{
			Quality:   domain.TierGreenLight,
			Input:     domain.PropertyInput{Address: "12 Elm St", Zip: "46205", Bedrooms: 3, ListPrice: 85000},
			Offer:     domain.OfferResult{Viable: true, YourOffer: 72815.53},
			Condition: domain.ConditionGood,
			Listing:   &domain.ListingRecord{DetailURL: "https://example.test/home/1"},
		}},
	}

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-7")
	require.NoError(t, adapter.PublishDealSheet(ctx, taskID, result))

	assert.Equal(t, constants.RoutingKeyDealSheetReady, pub.routingKey)
	assert.Equal(t, "trace-7", pub.msg.Headers[constants.HeaderTraceID])
	assert.Equal(t, contracts.DealSheetReadyEvent, pub.msg.Headers[constants.HeaderEventType])
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var dto DealSheetReadyDTO
	require.NoError(t, json.Unmarshal(pub.msg.Body, &dto))
	assert.Equal(t, taskID, dto.TaskID)
	assert.Equal(t, 1, dto.Skipped)
	assert.Equal(t, 1, dto.Summary["Green Light"])
	require.Len(t, dto.Deals, 1)
	assert.Equal(t, "https://example.test/home/1", dto.Deals[0].ListingURL)
	assert.Equal(t, 72815.53, dto.Deals[0].YourOffer)
}

func TestPublishDealSheet_PublisherError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	adapter, err := NewDealSheetPublisherAdapter(pub, constants.RoutingKeyDealSheetReady)
	require.NoError(t, err)

	err = adapter.PublishDealSheet(context.Background(), uuid.New(), domain.BatchResult{RunID: uuid.New()})
	assert.ErrorContains(t, err, "channel closed")
}

func TestNewDealSheetPublisherAdapter_Validation(t *testing.T) {
	_, err := NewDealSheetPublisherAdapter(nil, "key")
	assert.Error(t, err)
	_, err = NewDealSheetPublisherAdapter(&fakePublisher{}, "")
	assert.Error(t, err)
}
