package redisstore

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// guard оборачивает обращения к Redis: предохранитель снаружи, ретраи внутри
type guard struct {
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func newGuard(name string, logger *zap.Logger) *guard {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &guard{cb: cb, timeout: time.Second}
}

// do выполняет op с ретраями; каждая попытка ограничена своим таймаутом
func (g *guard) do(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		var out string
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
		)
		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()

			var opErr error
			out, opErr = op(tCtx)
			return opErr
		})
		return out, retryErr
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (g *guard) state() gobreaker.State { return g.cb.State() }
