package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/derivans/internal/model"
)

// PoolConfig controls the bounded worker pool a derivation step runs its
// pages on.
type PoolConfig struct {
	PoolSize         int // 0 means DefaultPoolSize()
	ProgressCallback ProgressCallback
}

// DefaultPoolSize returns min(configured, cores-1), default 2, floor 1, as
// required by the derivation pipeline's concurrency model.
func DefaultPoolSize(configured int) int {
	if configured <= 0 {
		configured = 2
	}
	maxAllowed := runtime.NumCPU() - 1
	if maxAllowed < 1 {
		maxAllowed = 1
	}
	if configured > maxAllowed {
		configured = maxAllowed
	}
	if configured < 1 {
		configured = 1
	}
	return configured
}

type pageJob struct {
	index int
	page  *model.DigitalPage
}

type pageResult struct {
	index int
	err   error
}

// runPageWorkerPool runs fn once per page on a bounded pool of size
// cfg.PoolSize, returning the first error encountered. It is a full
// barrier: it returns only after every page has either completed or the
// step has been cancelled by a fatal error. Pages are owned exclusively by
// the worker that processes them; fn must not be called concurrently for
// the same page.
func runPageWorkerPool(
	ctx context.Context,
	pages []*model.DigitalPage,
	cfg PoolConfig,
	fn func(context.Context, *model.DigitalPage) error,
) error {
	if len(pages) == 0 {
		return errors.New("no pages to process")
	}

	poolSize := DefaultPoolSize(cfg.PoolSize)
	slog.Debug("starting step worker pool", "pages", len(pages), "pool_size", poolSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan pageJob, len(pages))
	results := make(chan pageResult, len(pages))

	var wg sync.WaitGroup
	for range poolSize {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				err := fn(ctx, job.page)
				select {
				case results <- pageResult{index: job.index, err: err}:
				case <-ctx.Done():
					return
				}
				if err != nil {
					cancel() // fatal error: cancel the step, abandon remaining tasks
				}
			}
		}()
	}

	for i, p := range pages {
		jobs <- pageJob{index: i, page: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	if cfg.ProgressCallback != nil {
		cfg.ProgressCallback.OnStart(len(pages))
		defer cfg.ProgressCallback.OnComplete()
	}

	var firstErr error
	processed := 0
	for r := range results {
		processed++
		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback.OnProgress(processed, len(pages))
		}
		if r.err != nil {
			if cfg.ProgressCallback != nil {
				cfg.ProgressCallback.OnError(r.index, r.err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", r.index, r.err)
			}
		}
	}

	if firstErr == nil && processed < len(pages) {
		return fmt.Errorf("step cancelled after %d of %d pages: %w", processed, len(pages), ctx.Err())
	}
	return firstErr
}
