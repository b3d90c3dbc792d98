package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/pantry/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher wraps a Publisher in a circuit breaker so an unavailable broker
// fails fast instead of stalling every request that emits an event.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher creates a BreakerPublisher around next.
func NewBreakerPublisher(next Publisher, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerPublisher {
	st := gobreaker.Settings{
		Name:        "pantry-events",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a broker failure
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerPublisher{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

// Publish forwards the event unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Subject(), err)
	}
	return nil
}

// State returns the current breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
