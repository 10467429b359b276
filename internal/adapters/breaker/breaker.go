package breaker

import (
	"errors"
	"fmt"
	"time"

	"section8-underwriter/internal/core/port"

	"github.com/sony/gobreaker"
)

// Settings - порог срабатывания и время до пробного запроса
type Settings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// Breaker оборачивает вызовы внешнего провайдера.
// ErrNotFound считается нормальным ответом и не размыкает цепь
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(s Settings) *Breaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	st := gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, port.ErrNotFound)
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(st)}
}

// Do выполняет fn, если цепь замкнута. Разомкнутая цепь дает ErrProviderUnavailable
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %v", b.cb.Name(), port.ErrProviderUnavailable, err)
		}
		if res != nil {
			if v, ok := res.(T); ok {
				return v, err
			}
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}
