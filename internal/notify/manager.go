package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/dispatch"
	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Flags are the notification feature toggles.
type Flags struct {
	EmailNotifications bool
	UserConfirmations  bool
	WhatsAppEnabled    bool
}

// Manager maps one contact submission onto the applicable set of
// notification kinds and hands each to the configured dispatch strategy.
type Manager struct {
	strategy dispatch.Strategy
	flags    Flags
}

func NewManager(strategy dispatch.Strategy, flags Flags) *Manager {
	return &Manager{strategy: strategy, flags: flags}
}

// StrategyName exposes which execution model is active (for API responses).
func (m *Manager) StrategyName() string { return m.strategy.Name() }

// SendAll dispatches every applicable notification for the contact and
// reports a per-kind outcome. True means the strategy accepted the work (for
// the durable queue that means enqueued, not delivered). SendAll never
// returns an error: the triggering request must not fail because a
// notification did, so dispatch errors are logged and reflected as false.
func (m *Manager) SendAll(ctx context.Context, c domain.Contact) map[domain.Kind]bool {
	p := c.Snapshot()

	results := map[domain.Kind]bool{}
	for _, kind := range m.applicable(p) {
		err := m.dispatchOne(ctx, kind, p)
		results[kind] = err == nil
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Str("contact", p.Email).
				Msg("notification dispatch failed")
		}
	}
	log.Info().Str("strategy", m.strategy.Name()).Str("contact", p.Email).
		Interface("results", results).Msg("notifications dispatched")
	return results
}

func (m *Manager) applicable(p domain.Payload) []domain.Kind {
	var kinds []domain.Kind
	if m.flags.EmailNotifications {
		kinds = append(kinds, domain.KindAdminEmail)
	}
	if m.flags.UserConfirmations && p.Email != "" {
		kinds = append(kinds, domain.KindUserEmail)
	}
	if m.flags.WhatsAppEnabled {
		kinds = append(kinds, domain.KindAdminWhatsApp)
		if p.Phone != "" {
			kinds = append(kinds, domain.KindUserWhatsApp)
		}
	}
	return kinds
}

// dispatchOne isolates a single strategy call, converting panics into errors
// so one misbehaving transport cannot take down the submission path.
func (m *Manager) dispatchOne(ctx context.Context, kind domain.Kind, p domain.Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return m.strategy.Dispatch(ctx, kind, p)
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprintf("dispatch panicked: %v", e.value) }
