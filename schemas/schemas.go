package schemas

import "embed"

// SchemasFS содержит JSON-схемы сообщений очереди и запросов API
//
//go:embed events requests
var SchemasFS embed.FS
