package dispatch

import (
	"context"
	"time"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Sync delivers inline within the triggering request. Simplest variant: the
// caller sees the outcome immediately, at the cost of coupling request
// latency to transport latency. No retry.
type Sync struct {
	Deliver Deliverer
	Timeout time.Duration
}

func NewSync(d Deliverer) *Sync {
	return &Sync{Deliver: d, Timeout: 10 * time.Second}
}

func (s *Sync) Name() string { return "sync" }

func (s *Sync) Dispatch(ctx context.Context, kind domain.Kind, p domain.Payload) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.Deliver.Deliver(ctx, kind, p)
}
