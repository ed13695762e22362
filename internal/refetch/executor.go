// Package refetch provides the sharded work queue behind invalidation-
// triggered cache refreshes. Jobs for the same query key run in FIFO order
// on one shard, so two refetches of the same query can never reorder; jobs
// for different keys run in parallel.
//
// Contract: callers must not invoke Submit concurrently for the same key.
// The cache store serializes per-key submissions under its own lock.
package refetch

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	interrors "github.com/instiwise/client-go/internal/errors"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// Executor runs Jobs on worker goroutines partitioned by a stable hash of
// the query key. Recoverable failures are retried with exponential backoff;
// irrecoverable ones go straight to the error handler.
type Executor struct {
	cfg    Config
	queues []chan queuedJob
	log    zerolog.Logger

	done   chan struct{}
	closed uint32

	wg sync.WaitGroup
}

// NewExecutor constructs the executor and starts its shard workers.
func NewExecutor(cfg Config, log zerolog.Logger) *Executor {
	cfg.applyDefaults()
	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		log:    log.With().Str("component", "refetch").Logger(),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job on the shard derived from key.
//
//   - Returns nil on success.
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns a *QueueFullError if the shard stays full past EnqueueTimeout.
//   - Returns ctx.Err() if the caller's context is cancelled first.
func (e *Executor) Submit(ctx context.Context, key string, job Job) error {
	if atomic.LoadUint32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier enqueues a no-op on key's shard and waits until it runs,
// guaranteeing every job submitted before it for that key has completed.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	done := make(chan struct{})
	j := JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := e.Submit(ctx, key, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop drains every shard and waits for workers to exit. Idempotent.
func (e *Executor) Stop() {
	if !atomic.CompareAndSwapUint32(&e.closed, 0, 1) {
		return
	}
	e.log.Debug().Int("shards", e.cfg.Shards).Msg("stopping refetch executor")
	close(e.done)
	e.wg.Wait()
	e.log.Debug().Msg("refetch executor stopped")
}

// Close lets Executor satisfy io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Int("shard", idx).Msg("refetch worker panic")
		}
	}()

	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}
			// A cancelled job must not stall the shard.
			if err := qj.ctx.Err(); err != nil {
				e.handleError(err)
			} else {
				e.runWithRetry(qj, label)
			}
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			// Drain remaining jobs in order, then exit.
			for {
				select {
				case qj := <-ch:
					if qj.job != nil {
						_ = qj.job.Run(qj.ctx)
					}
				default:
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) runWithRetry(qj queuedJob, label string) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = e.cfg.MaxInterval
	exp.Reset()

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := qj.job.Run(qj.ctx)
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		if err == nil {
			return
		}
		if interrors.IsIrrecoverable(err) || attempt >= e.cfg.MaxAttempts {
			e.handleError(err)
			return
		}

		retriesTotal.WithLabelValues(label).Inc()
		select {
		case <-time.After(exp.NextBackOff()):
		case <-e.done:
			return
		case <-qj.ctx.Done():
			e.handleError(qj.ctx.Err())
			return
		}
	}
}

func (e *Executor) handleError(err error) {
	if err == nil || e.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("refetch error handler panic")
		}
	}()
	e.cfg.ErrorHandler(err)
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % e.cfg.Shards
}
