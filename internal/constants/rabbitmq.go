package constants

import "time"

// Обменники
const (
	UnderwriteExchange = "underwrite_exchange"
	DealsExchange      = "deals_exchange"
)

// Очереди
const (
	QueueUnderwriteBatchTasks = "underwrite_batch_tasks"
)

// Routing keys
const (
	RoutingKeyUnderwriteBatchTasks = "underwrite.batch.tasks"
	RoutingKeyDealSheetReady       = "deals.sheet.ready"
)

// Ретраи и финальная очередь недоставленных сообщений
const (
	RetryExchangeSuffix = "_retry_ex"
	RetryQueueSuffix    = "_retry_wait_10s"
	RetryTTL            = 10 * time.Second
	MaxRetries          = 3

	FinalDLXExchange   = "final_dlx_exchange"
	FinalDLQ           = "final_dead_letter_queue"
	FinalDLQRoutingKey = "final_dlq"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
