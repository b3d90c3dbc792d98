package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/pantry/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{}

func (testEvent) Subject() string          { return "pantry.test" }
func (testEvent) Payload() ([]byte, error) { return []byte("{}"), nil }

type countingPublisher struct {
	calls int
	err   error
}

func (c *countingPublisher) Publish(_ context.Context, _ Event) error {
	c.calls++
	return c.err
}

func newTestBreaker(next Publisher) *BreakerPublisher {
	cfg := config.CircuitBreakerConfig{ConsecutiveFailures: 2, HalfOpenRequests: 1, OpenTimeout: time.Minute}
	return NewBreakerPublisher(next, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_BreakerPublisher_PassesThrough(t *testing.T) {
	// given
	next := &countingPublisher{}
	p := newTestBreaker(next)
	// when
	err := p.Publish(context.Background(), testEvent{})
	// then
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, gobreaker.StateClosed, p.State())
}

func Test_BreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	brokerDown := errors.New("nats: no responders available")
	next := &countingPublisher{err: brokerDown}
	p := newTestBreaker(next)

	// when
	err1 := p.Publish(context.Background(), testEvent{})
	err2 := p.Publish(context.Background(), testEvent{})
	err3 := p.Publish(context.Background(), testEvent{})

	// then
	assert.ErrorIs(t, err1, brokerDown)
	assert.ErrorIs(t, err2, brokerDown)
	assert.ErrorIs(t, err3, gobreaker.ErrOpenState, "open breaker fails fast")
	assert.Equal(t, 2, next.calls, "broker is not called while open")
	assert.Equal(t, gobreaker.StateOpen, p.State())
}

func Test_BreakerPublisher_IgnoresCanceledContext(t *testing.T) {
	next := &countingPublisher{err: context.Canceled}
	p := newTestBreaker(next)

	for range 3 {
		_ = p.Publish(context.Background(), testEvent{})
	}

	assert.Equal(t, 3, next.calls)
	assert.Equal(t, gobreaker.StateClosed, p.State())
}

func Test_NoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), testEvent{}))
}
