package dispatch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/queue"
)

// Durable persists the notification as a pending task; the worker loop sends
// it later. The only variant offering retry and crash-survivability. Dispatch
// succeeding means "enqueued", never "delivered".
type Durable struct {
	Store      queue.Store
	MaxRetries int
}

func NewDurable(store queue.Store, maxRetries int) *Durable {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Durable{Store: store, MaxRetries: maxRetries}
}

func (d *Durable) Name() string { return "queue" }

func (d *Durable) Dispatch(ctx context.Context, kind domain.Kind, p domain.Payload) error {
	// Schema is checked here, at enqueue time, so malformed input fails
	// fast instead of poisoning the queue.
	if err := p.ValidateFor(kind); err != nil {
		return err
	}
	raw, err := p.Marshal()
	if err != nil {
		return err
	}
	id, err := d.Store.Enqueue(ctx, kind, raw, d.MaxRetries)
	if err != nil {
		return err
	}
	log.Info().Str("task_id", id).Str("kind", string(kind)).Msg("notification queued")
	return nil
}
