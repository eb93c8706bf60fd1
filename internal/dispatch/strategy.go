package dispatch

import (
	"context"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Deliverer performs one delivery attempt for a kind/payload pair.
type Deliverer interface {
	Deliver(ctx context.Context, kind domain.Kind, p domain.Payload) error
}

// Strategy turns a notification decision into an actual execution model.
// The concrete variant is chosen once at startup, not per call.
//
// Failure-visibility differs per variant: Sync reports delivery errors,
// Threaded always reports nil (errors are logged in the background), and
// Durable reports enqueue errors only - "success" there means queued, not
// delivered.
type Strategy interface {
	Dispatch(ctx context.Context, kind domain.Kind, p domain.Payload) error
	Name() string
}
