package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// detachedTimeout bounds background work started from a request
const detachedTimeout = 2 * time.Minute

// runDetached runs fn in a goroutine that outlives ctx's cancellation and never
// reports back to the caller. Failures and panics are logged. The returned channel
// is closed when fn finishes.
func runDetached(ctx context.Context, logger *zap.Logger, task string, fn func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)

	go func() {
		defer close(done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Background task panicked", zap.String("task", task), zap.String("panic", fmt.Sprint(r)))
			}
		}()

		if err := fn(bg); err != nil {
			logger.Error("Background task failed", zap.String("task", task), zap.Error(err))
			return
		}
		logger.Debug("Background task finished", zap.String("task", task))
	}()

	return done
}

// closedChan returns an already closed channel for callers with nothing to wait on
func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
