package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"section8-underwriter/internal/adapters/metrics"
	rabbitmq_adapter "section8-underwriter/internal/adapters/rabbitmq"
	"section8-underwriter/internal/adapters/rest"
	"section8-underwriter/internal/constants"
	"section8-underwriter/internal/core/port"
	"section8-underwriter/internal/core/usecase"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_common"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_consumer"
	"section8-underwriter/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// shutdownTimeout - сколько ждать завершения HTTP-запросов при остановке
const shutdownTimeout = 15 * time.Second

// App – сервис андеррайтинга: REST API и, опционально, потребитель задач RabbitMQ
type App struct {
	rt        *runtime
	apiServer *rest.Server

	connManager        *rabbitmq_common.ConnectionManager
	dealSheetProducer  *rabbitmq_producer.Publisher
	batchTasksListener port.EventListenerPort
}

// NewApp - Composition Root сервиса
func NewApp(opts Options) (*App, error) {
	ctx := context.Background()

	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return nil, err
	}
	appConfig := rt.config
	appLogger := rt.logger

	promMetrics := metrics.NewPrometheusMetrics()

	// инициализация use-cases
	batchUseCase, quoteUseCase, err := rt.newUnderwriter(ctx, promMetrics)
	if err != nil {
		rt.close()
		return nil, err
	}
	appLogger.Info("All use cases initialized", nil)

	app := &App{rt: rt}

	// инициализация RabbitMQ
	if appConfig.RabbitMQ.Enabled {
		if err := app.initRabbitMQ(batchUseCase); err != nil {
			app.closeRabbitMQ()
			rt.close()
			return nil, err
		}
	} else {
		appLogger.Info("RabbitMQ is disabled, batch task consumer will not start", nil)
	}

	// REST API Server
	apiHandlers := rest.NewUnderwriteHandlers(batchUseCase, quoteUseCase, rt.params)
	app.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.Port,
		AllowedOrigins: appConfig.Rest.AllowedOrigins,
	}, apiHandlers, promMetrics.Handler(), rt.baseLogger.WithFields(port.Fields{"component": "rest"}))

	return app, nil
}

func (a *App) initRabbitMQ(batchUseCase *usecase.UnderwriteBatchUseCase) error {
	appConfig := a.rt.config
	baseLogger := a.rt.baseLogger
	appLogger := a.rt.logger

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             constants.DealsExchange,
		ExchangeType:             amqp.ExchangeTopic,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return fmt.Errorf("failed to create deal sheet producer: %w", err)
	}
	a.dealSheetProducer = producer

	publisher, err := rabbitmq_adapter.NewDealSheetPublisherAdapter(producer, constants.RoutingKeyDealSheetReady)
	if err != nil {
		return err
	}
	processBatchTaskUseCase := usecase.NewProcessBatchTaskUseCase(batchUseCase, publisher, a.rt.params)

	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		QueueName:     constants.QueueUnderwriteBatchTasks,
		ExchangeName:  constants.UnderwriteExchange,
		ExchangeType:  amqp.ExchangeDirect,
		RoutingKey:    constants.RoutingKeyUnderwriteBatchTasks,
		PrefetchCount: appConfig.RabbitMQ.Workers,
		Workers:       appConfig.RabbitMQ.Workers,
		ConsumerTag:   "underwrite-batch-task-consumer",

		EnableRetryMechanism: true,
		RetryExchange:        constants.QueueUnderwriteBatchTasks + constants.RetryExchangeSuffix,
		RetryQueue:           constants.QueueUnderwriteBatchTasks + constants.RetryQueueSuffix,
		RetryTTL:             constants.RetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
	listener, err := rabbitmq_adapter.NewBatchTaskConsumerAdapter(consumerCfg, processBatchTaskUseCase, baseLogger, connManager)
	if err != nil {
		return err
	}
	a.batchTasksListener = listener
	appLogger.Info("Batch Task Listener initialized.", nil)
	return nil
}

func (a *App) closeRabbitMQ() {
	appLogger := a.rt.logger
	if a.batchTasksListener != nil {
		if err := a.batchTasksListener.Close(); err != nil {
			appLogger.Error("Error closing batch task listener", err, nil)
		}
	}
	if a.dealSheetProducer != nil {
		if err := a.dealSheetProducer.Close(); err != nil {
			appLogger.Error("Error closing deal sheet producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			appLogger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
}

// Run запускает все компоненты приложения и управляет их жизненным циклом
func (a *App) Run() error {
	appLogger := a.rt.logger

	// единый контекст для graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		appLogger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			appLogger.Error("Error stopping api server", err, nil)
		}

		appLogger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		appLogger.Info("All background processes finished.", nil)

		a.closeRabbitMQ()
		a.rt.close()
	}()

	appLogger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		appLogger.Info("Starting listener", port.Fields{"listener": name})
		if err := listener.Start(appCtx); err != nil {
			appLogger.Error("Listener stopped with an unexpected error", err, port.Fields{"listener": name})
			componentErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			appLogger.Info("Listener stopped gracefully", port.Fields{"listener": name})
		}
	}

	if a.batchTasksListener != nil {
		wg.Add(1)
		go startListener("Batch Task Listener", a.batchTasksListener)
	}

	go func() {
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	appLogger.Info("Application running. Waiting for signals...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		appLogger.Info("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-componentErrors:
		appLogger.Error("A critical component failed, shutting down", runErr, nil)
	case <-appCtx.Done():
		appLogger.Warn("Context was cancelled unexpectedly, shutting down", nil)
	}

	cancelApp()
	return runErr
}
