package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"section8-underwriter/internal/constants"
	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/contracts"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// eventPublisher - часть rabbitmq_producer.Publisher, которая нужна адаптеру
type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// DealSheetPublisherAdapter публикует готовый лист сделок как событие
type DealSheetPublisherAdapter struct {
	producer   eventPublisher
	routingKey string
}

func NewDealSheetPublisherAdapter(producer eventPublisher, routingKey string) (*DealSheetPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &DealSheetPublisherAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *DealSheetPublisherAdapter) PublishDealSheet(ctx context.Context, taskID uuid.UUID, result domain.BatchResult) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "DealSheetPublisherAdapter",
		"routing_key": a.routingKey,
		"task_id":     taskID.String(),
	})

	body, err := json.Marshal(toDealSheetDTO(taskID, result))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal deal sheet: %w", err)
	}
	if err := contracts.Validate(contracts.DealSheetReadyEvent, contracts.VersionV1, body); err != nil {
		return fmt.Errorf("rabbitmq adapter: deal sheet violates its contract: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    result.RunID.String(),
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.DealSheetReadyEvent,
			constants.HeaderEventVersion: contracts.VersionV1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish deal sheet", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish deal sheet for task %s: %w", taskID, err)
	}

	adapterLogger.Info("Deal sheet event published", port.Fields{"deals": len(result.Deals), "bytes": len(body)})
	return nil
}
