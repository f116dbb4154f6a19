package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Worker is a background loop that stops when its context is cancelled
type Worker interface {
	Run(ctx context.Context)
}

// StartAllWorkers starts every worker in its own goroutine. The returned WaitGroup
// completes once all of them have returned.
func StartAllWorkers(ctx context.Context, logger *zap.Logger, workers ...Worker) *sync.WaitGroup {
	logger.Info("starting workers", zap.Int("count", len(workers)))

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	return &wg
}
