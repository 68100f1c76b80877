package authz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrWarmerClosed = errors.New("cache warmer is closed")

// Refresher recomputes one admin's permission cache.
type Refresher interface {
	Refresh(ctx context.Context, adminID int64) ([]string, error)
}

type WarmJob struct {
	AdminID int64
}

type WarmerConfig struct {
	MaxWorkers   int
	JobQueueSize int
	JobTimeout   time.Duration
}

type warmWorker struct {
	id         int
	workerPool chan chan WarmJob
	jobChannel chan WarmJob
	logger     *slog.Logger
}

func newWarmWorker(id int, workerPool chan chan WarmJob, logger *slog.Logger) *warmWorker {
	return &warmWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan WarmJob),
		logger:     logger,
	}
}

func (w *warmWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(WarmJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("warmer processing job", "worker_id", w.id, "admin_id", job.AdminID)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("warmer worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// CacheWarmer refreshes permission caches in the background with a bounded pool.
type CacheWarmer struct {
	refresher  Refresher
	logger     *slog.Logger
	jobTimeout time.Duration

	jobQueue   chan WarmJob
	workerPool chan chan WarmJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu     sync.RWMutex
	closed bool

	refreshed atomic.Int64
	failed    atomic.Int64
}

func NewCacheWarmer(refresher Refresher, config WarmerConfig, logger *slog.Logger) *CacheWarmer {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 256
	}
	jobTimeout := config.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Second
	}

	w := &CacheWarmer{
		refresher:  refresher,
		logger:     logger,
		jobTimeout: jobTimeout,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan WarmJob, jobQueueSize),
		workerPool: make(chan chan WarmJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}
	w.startWorkerPool()
	return w
}

func (w *CacheWarmer) startWorkerPool() {
	w.once.Do(func() {
		for i := 0; i < w.maxWorkers; i++ {
			worker := newWarmWorker(i, w.workerPool, w.logger)
			worker.start(w.ctx, &w.wg, w.process)
		}

		w.wg.Add(1)
		go w.dispatch()

		w.logger.Info("permission cache warmer started",
			"max_workers", w.maxWorkers,
			"queue_size", cap(w.jobQueue))
	})
}

func (w *CacheWarmer) dispatch() {
	defer w.wg.Done()

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				// queue drained; release idle workers
				w.cancel()
				return
			}

			select {
			case jobChannel := <-w.workerPool:
				select {
				case jobChannel <- job:
				case <-w.ctx.Done():
					return
				}
			case <-w.ctx.Done():
				return
			}
		case <-w.ctx.Done():
			w.logger.Info("warmer dispatcher shutting down")
			return
		}
	}
}

func (w *CacheWarmer) process(job WarmJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	if _, err := w.refresher.Refresh(ctx, job.AdminID); err != nil {
		w.failed.Add(1)
		w.logger.Error("permission cache warm failed", "admin_id", job.AdminID, "error", err)
		return
	}
	w.refreshed.Add(1)
}

// Enqueue schedules refreshes, blocking while the queue is full.
func (w *CacheWarmer) Enqueue(ctx context.Context, adminIDs ...int64) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWarmerClosed
	}
	for _, id := range adminIDs {
		select {
		case w.jobQueue <- WarmJob{AdminID: id}:
		case <-ctx.Done():
			return ctx.Err()
		case <-w.ctx.Done():
			return ErrWarmerClosed
		}
	}
	return nil
}

// Drain stops accepting jobs and waits for every queued job to finish.
func (w *CacheWarmer) Drain() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobQueue)
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// Shutdown stops the pool immediately; queued jobs are dropped.
func (w *CacheWarmer) Shutdown() {
	w.logger.Info("shutting down permission cache warmer")
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	w.logger.Info("permission cache warmer shutdown complete")
}

// Stats returns how many refreshes succeeded and failed so far.
func (w *CacheWarmer) Stats() (refreshed, failed int64) {
	return w.refreshed.Load(), w.failed.Load()
}
