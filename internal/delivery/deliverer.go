package delivery

import (
	"context"
	"fmt"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Deliverer maps a notification kind onto one adapter call with the rendered
// content. It performs exactly one attempt; retry policy lives with the
// caller.
type Deliverer struct {
	Email      EmailSender
	WhatsApp   WhatsAppSender
	AdminEmail string
	AdminPhone string
}

func (d *Deliverer) Deliver(ctx context.Context, kind domain.Kind, p domain.Payload) error {
	switch kind {
	case domain.KindAdminEmail:
		htmlBody, textBody := AdminEmailBody(p)
		return d.Email.Send(ctx, d.AdminEmail, AdminEmailSubject(p), htmlBody, textBody)
	case domain.KindUserEmail:
		if p.Email == "" {
			return fmt.Errorf("%w: contact has no email", domain.ErrInvalidRecipient)
		}
		htmlBody, textBody := UserEmailBody(p)
		return d.Email.Send(ctx, p.Email, UserEmailSubject(p), htmlBody, textBody)
	case domain.KindAdminWhatsApp:
		return d.WhatsApp.Send(ctx, d.AdminPhone, AdminWhatsAppText(p))
	case domain.KindUserWhatsApp:
		if p.Phone == "" {
			return fmt.Errorf("%w: contact has no phone", domain.ErrInvalidRecipient)
		}
		return d.WhatsApp.Send(ctx, p.Phone, UserWhatsAppText(p))
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}
