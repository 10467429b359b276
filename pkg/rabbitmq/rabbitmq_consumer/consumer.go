package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"section8-underwriter/pkg/rabbitmq/rabbitmq_common"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Пакет сам решает, что делать
// с сообщением: ack при nil, повтор через retry-очередь при ошибке,
// сразу в финальную DLQ при ошибке, обернутой в Permanent
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ConsumerConfig конфигурация для потребителя
type ConsumerConfig struct {
	QueueName    string
	ExchangeName string
	ExchangeType string
	RoutingKey   string

	PrefetchCount int
	// Workers - сколько сообщений обрабатывается одновременно
	Workers     int
	ConsumerTag string

	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             time.Duration
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required")
	}
	if c.ExchangeName != "" && c.ExchangeType == "" {
		return fmt.Errorf("consumer: exchange type is required for exchange '%s'", c.ExchangeName)
	}
	if c.EnableRetryMechanism {
		if c.ExchangeName == "" || c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry mechanism needs exchange, retry exchange/queue and final DLX/DLQ names")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("consumer: retry TTL must be positive")
		}
	}
	return nil
}

// permanentError помечает ошибку, которую бесполезно повторять
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent помечает ошибку обработчика как неповторяемую
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent сообщает, помечена ли ошибка как неповторяемая
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Consumer читает очередь и раздает сообщения ограниченному числу обработчиков
type Consumer struct {
	config     ConsumerConfig
	handler    MessageHandler
	connection *amqp.Connection
	channel    *amqp.Channel
	dlq        *rabbitmq_producer.Publisher
	wg         sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, manager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := manager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		handler:    handler,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}
	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlq, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, manager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

// setup объявляет очередь, обменник, привязку и топологию ретраев:
// основная очередь -> retry exchange (fanout) -> wait-очередь с TTL -> основной обменник
func (c *Consumer) setup() error {
	cfg := c.config

	if cfg.PrefetchCount > 0 {
		if err := c.channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.ExchangeName != "" {
		if err := c.channel.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	var queueArgs amqp.Table
	if cfg.EnableRetryMechanism {
		queueArgs = amqp.Table{"x-dead-letter-exchange": cfg.RetryExchange}
	}
	if _, err := c.channel.QueueDeclare(cfg.QueueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
	}

	if cfg.ExchangeName != "" {
		if err := c.channel.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s': %w", cfg.QueueName, err)
		}
	}

	if !cfg.EnableRetryMechanism {
		return nil
	}

	if err := c.channel.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}
	if err := c.channel.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	_, err := c.channel.QueueDeclare(cfg.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":             int32(cfg.RetryTTL / time.Millisecond),
		"x-dead-letter-exchange":    cfg.ExchangeName,
		"x-dead-letter-routing-key": cfg.RoutingKey,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}

	c.Logger.Debug("Consumer topology ready", "queue", cfg.QueueName)
	return nil
}

// StartConsuming блокируется до отмены контекста или закрытия соединения
func (c *Consumer) StartConsuming(ctx context.Context) error {
	msgs, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to register on queue '%s': %w", c.config.QueueName, err)
	}
	c.Logger.Info("Waiting for messages", "queue", c.config.QueueName, "workers", c.config.Workers)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	slots := make(chan struct{}, c.config.Workers)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumer", "queue", c.config.QueueName)
			return nil
		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			c.Logger.Error(amqpErr, "Connection closed for consumer", "queue", c.config.QueueName)
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "queue", c.config.QueueName)
				return nil
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return nil
			}

			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				defer func() { <-slots }()
				c.handle(ctx, delivery)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	c.Logger.Error(err, "Handler error", "delivery_tag", d.DeliveryTag)

	if !c.config.EnableRetryMechanism {
		_ = d.Nack(false, false)
		return
	}

	deaths := DeathCount(d.Headers, c.config.QueueName)
	if !IsPermanent(err) && deaths < int64(c.config.MaxRetries) {
		c.Logger.Info("Retrying message", "delivery_tag", d.DeliveryTag, "death_count", deaths)
		_ = d.Nack(false, false)
		return
	}

	pubErr := c.dlq.Publish(context.Background(), c.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if pubErr != nil {
		c.Logger.Error(pubErr, "Failed to publish to final DLX, sending to retry loop", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	c.Logger.Warn("Message moved to final DLQ", "delivery_tag", d.DeliveryTag, "permanent", IsPermanent(err))
	_ = d.Ack(false)
}

// DeathCount считает, сколько раз сообщение умирало в указанной очереди (заголовок x-death)
func DeathCount(headers amqp.Table, queue string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := tbl["queue"].(string); q != queue {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}

// Close дожидается активных обработчиков и закрывает каналы
func (c *Consumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.Logger.Info("Consumer closed", "queue", c.config.QueueName)
	return firstErr
}
