package rabbitmq_common

import "fmt"

// Config - общая часть конфигурации производителей и потребителей
type Config struct {
	URL string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rabbitmq: URL is required")
	}
	return nil
}
