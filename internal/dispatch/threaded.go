package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Threaded schedules delivery on a detached goroutine and returns
// immediately. The goroutine is not tracked, joined or cancellable, and the
// work does not survive a process restart: a crash between scheduling and
// completion loses the notification silently. That data-loss window is the
// documented contract of this variant, not a bug. No retry on failure.
type Threaded struct {
	Deliver Deliverer
	// Delay before the first attempt, to avoid hammering the transport
	// when submissions burst. Defaults to one second.
	Delay   time.Duration
	Timeout time.Duration
}

func NewThreaded(d Deliverer) *Threaded {
	return &Threaded{Deliver: d, Delay: time.Second, Timeout: 10 * time.Second}
}

func (t *Threaded) Name() string { return "threaded" }

func (t *Threaded) Dispatch(_ context.Context, kind domain.Kind, p domain.Payload) error {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("kind", string(kind)).
					Msg("background notification panicked")
			}
		}()
		time.Sleep(t.Delay)

		ctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
		defer cancel()
		if err := t.Deliver.Deliver(ctx, kind, p); err != nil {
			log.Warn().Err(fmt.Errorf("background delivery: %w", err)).
				Str("kind", string(kind)).Msg("notification failed")
		}
	}()
	return nil
}
