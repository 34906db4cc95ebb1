package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// WarmupResult summarizes a warm-up run
type WarmupResult struct {
	Fetched int
	Failed  int
	Skipped int
}

// Warmup fetches every text through p on a bounded worker pool so that later
// requests are served from the cache. It stops submitting once ctx is done
// and returns after all submitted fetches finish.
func Warmup(ctx context.Context, p Provider, texts []string, workers int, logger *zap.Logger) (WarmupResult, error) {
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("TTS warm-up panic recovered", zap.Any("panic", v), zap.Stack("stack"))
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return WarmupResult{}, err
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		fetched int64
		failed  int64
	)

	submitted := 0
	for _, text := range texts {
		if ctx.Err() != nil {
			break
		}

		text := text
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			if _, err := p.Synthesize(ctx, text); err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Debug("TTS warm-up fetch failed", zap.String("text", text), zap.Error(err))
				return
			}
			atomic.AddInt64(&fetched, 1)
		})
		if err != nil {
			wg.Done()
			logger.Warn("Failed to submit TTS warm-up task", zap.Error(err))
			break
		}
		submitted++
	}
	wg.Wait()

	result := WarmupResult{
		Fetched: int(fetched),
		Failed:  int(failed),
		Skipped: len(texts) - submitted,
	}
	logger.Info("TTS warm-up finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, ctx.Err()
}
