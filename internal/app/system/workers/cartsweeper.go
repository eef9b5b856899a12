// Package workers holds background jobs started with the server.
package workers

import (
	"context"
	"sync"
	"time"

	cartstore "github.com/dalemusser/quizmart/internal/app/store/carts"
	"go.uber.org/zap"
)

// CartSweeper periodically deletes carts that nobody has touched for a
// while, together with their items.
type CartSweeper struct {
	carts    *cartstore.Store
	log      *zap.Logger
	interval time.Duration
	idle     time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCartSweeper returns a sweeper that runs every interval and removes
// carts idle for longer than idle.
func NewCartSweeper(carts *cartstore.Store, logger *zap.Logger, interval, idle time.Duration) *CartSweeper {
	return &CartSweeper{
		carts:    carts,
		log:      logger,
		interval: interval,
		idle:     idle,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (w *CartSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("cart sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_after", w.idle))
}

// Stop signals the loop to exit and waits for a running sweep to finish.
// It is safe to call more than once.
func (w *CartSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("cart sweeper stopped")
	})
}

func (w *CartSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_, _ = w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one pass and returns the number of carts removed.
func (w *CartSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := w.carts.DeleteIdle(ctx, w.now().UTC().Add(-w.idle))
	if err != nil {
		w.log.Error("failed to delete idle carts", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		w.log.Info("deleted idle carts", zap.Int64("count", n))
	}
	return n, nil
}
