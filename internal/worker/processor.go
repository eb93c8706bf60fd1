package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

// Deliverer performs one delivery attempt for a leased task.
type Deliverer interface {
	Deliver(ctx context.Context, kind domain.Kind, p domain.Payload) error
}

// Processor drains the durable queue. It is meant to be invoked periodically
// (cron-like); tasks within one batch are processed sequentially, and the
// store's atomic lease keeps overlapping invocations from colliding.
type Processor struct {
	store       queue.Store
	deliver     Deliverer
	taskTimeout time.Duration
}

func NewProcessor(store queue.Store, deliver Deliverer) *Processor {
	return &Processor{store: store, deliver: deliver, taskTimeout: 30 * time.Second}
}

// ProcessPending leases up to batchSize pending tasks and executes each one.
// A single task failing is recorded on that task and does not abort the rest
// of the batch; only a store-level error aborts the run. Returns the number
// of tasks processed (attempted).
func (p *Processor) ProcessPending(ctx context.Context, batchSize int) (int, error) {
	tasks, err := p.store.LeaseBatch(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("lease batch: %w", err)
	}
	for _, t := range tasks {
		p.processOne(ctx, t)
	}
	if len(tasks) > 0 {
		log.Info().Int("processed", len(tasks)).Msg("batch processed")
	}
	return len(tasks), nil
}

func (p *Processor) processOne(ctx context.Context, t domain.Task) {
	payload, err := domain.UnmarshalPayload(t.Payload)
	if err != nil {
		p.recordFailure(ctx, t, err)
		return
	}

	tctx, cancel := context.WithTimeout(ctx, p.taskTimeout)
	err = p.attempt(tctx, t.Kind, payload)
	cancel()
	if err != nil {
		p.recordFailure(ctx, t, err)
		return
	}

	if err := p.store.MarkCompleted(ctx, t.ID); err != nil {
		log.Error().Err(err).Str("task_id", t.ID).Msg("mark completed failed")
		return
	}
	log.Info().Str("task_id", t.ID).Str("kind", string(t.Kind)).Msg("notification delivered")
}

// attempt shields the batch from adapter panics; they become ordinary
// failures on the task.
func (p *Processor) attempt(ctx context.Context, kind domain.Kind, payload domain.Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adapter panicked: %v", r)
		}
	}()
	return p.deliver.Deliver(ctx, kind, payload)
}

func (p *Processor) recordFailure(ctx context.Context, t domain.Task, cause error) {
	log.Warn().Err(cause).Str("task_id", t.ID).Str("kind", string(t.Kind)).
		Int("retry_count", t.RetryCount).Msg("notification attempt failed")
	if err := p.store.MarkFailed(ctx, t.ID, cause.Error()); err != nil {
		log.Error().Err(err).Str("task_id", t.ID).Msg("mark failed failed")
	}
}

// RetryFailed requeues every retry-eligible failed task. Requeued tasks are
// picked up by the next ProcessPending pass rather than immediately, so a
// transient outage gets at least one polling interval to clear.
func (p *Processor) RetryFailed(ctx context.Context) (int, error) {
	tasks, err := p.store.FindRetryable(ctx)
	if err != nil {
		return 0, fmt.Errorf("find retryable: %w", err)
	}
	retried := 0
	for _, t := range tasks {
		if err := p.store.Requeue(ctx, t.ID); err != nil {
			log.Error().Err(err).Str("task_id", t.ID).Msg("requeue failed")
			continue
		}
		retried++
	}
	if retried > 0 {
		log.Info().Int("retried", retried).Msg("failed tasks requeued")
	}
	return retried, nil
}

// Cleanup purges completed tasks older than the retention window.
func (p *Processor) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	n, err := p.store.PurgeCompletedOlderThan(ctx, retention)
	if err != nil {
		return 0, fmt.Errorf("purge completed: %w", err)
	}
	if n > 0 {
		log.Info().Int("purged", n).Dur("retention", retention).Msg("old completed tasks purged")
	}
	return n, nil
}

// RecoverStale returns tasks abandoned in processing (a worker that died
// mid-batch) to pending. Run at loop startup and before each one-shot pass.
func (p *Processor) RecoverStale(ctx context.Context, window time.Duration) (int, error) {
	n, err := p.store.RecoverStale(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("recover stale: %w", err)
	}
	if n > 0 {
		log.Info().Int("recovered", n).Msg("stale processing tasks recovered")
	}
	return n, nil
}
