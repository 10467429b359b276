package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"section8-underwriter/internal/constants"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/contracts"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/port/usecases_port"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_common"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BatchTaskConsumerAdapter - входящий адаптер: слушает очередь задач
// андеррайтинга и передает каждую задачу в use case
type BatchTaskConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	useCase  usecases_port.ProcessBatchTaskPort
	logger   port.LoggerPort
}

func NewBatchTaskConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.ProcessBatchTaskPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*BatchTaskConsumerAdapter, error) {
	adapter := newBatchTaskHandler(useCase, logger)

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.handleDelivery, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for batch tasks: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func newBatchTaskHandler(useCase usecases_port.ProcessBatchTaskPort, logger port.LoggerPort) *BatchTaskConsumerAdapter {
	return &BatchTaskConsumerAdapter{
		useCase: useCase,
		logger:  logger,
	}
}

// handleDelivery разбирает одно сообщение. Ошибки схемы и формата
// неповторяемы, ошибки use case уходят в цикл ретраев
func (a *BatchTaskConsumerAdapter) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "BatchTaskConsumerAdapter",
	})

	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	if eventType == "" {
		eventType = contracts.UnderwriteBatchTaskEvent
	}
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
	if eventVersion == "" {
		eventVersion = contracts.VersionV1
	}

	if err := contracts.Validate(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return rabbitmq_consumer.Permanent(err)
	}

	var dto UnderwriteBatchTaskDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return rabbitmq_consumer.Permanent(fmt.Errorf("failed to unmarshal batch task: %w", err))
	}

	var override domain.ParamsOverride
	if len(dto.Params) > 0 {
		dec := json.NewDecoder(bytes.NewReader(dto.Params))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&override); err != nil {
			msgLogger.Error("Task params are malformed. Rejecting.", err, nil)
			return rabbitmq_consumer.Permanent(fmt.Errorf("failed to decode task params: %w", err))
		}
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": dto.TaskID.String(), "properties": len(dto.Properties)})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	taskLogger.Info("Received underwriting task", nil)
	if err := a.useCase.Execute(ctx, dto.TaskID, toDomainInputs(dto.Properties), override); err != nil {
		taskLogger.Error("Underwriting task failed", err, nil)
		return err
	}
	return nil
}

// Start реализует EventListenerPort
func (a *BatchTaskConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *BatchTaskConsumerAdapter) Close() error {
	return a.consumer.Close()
}
