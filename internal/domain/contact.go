package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Contact is the read-only shape of a contact inquiry at the moment
// notifications are triggered. Creation and validation of the record itself
// belong to the CRUD layer; this package only snapshots it.
type Contact struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message"`
	ContactType string    `json:"contact_type"`
	Subject     string    `json:"subject"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Payload is the immutable snapshot stored on a task. Later mutation or
// deletion of the source contact cannot affect in-flight work.
type Payload struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	ContactType string    `json:"contact_type,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Snapshot captures the contact fields a notification needs.
func (c Contact) Snapshot() Payload {
	at := c.SubmittedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Payload{
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Message:     c.Message,
		ContactType: c.ContactType,
		Subject:     c.Subject,
		SubmittedAt: at,
	}
}

var validate = validator.New()

// ValidateFor checks the payload schema for the given kind. Validation runs
// at enqueue time so malformed input fails fast instead of surfacing later
// inside the worker.
func (p Payload) ValidateFor(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	switch kind {
	case KindUserEmail:
		if p.Email == "" {
			return fmt.Errorf("%w: user email notification requires an email address", ErrInvalidArgument)
		}
	case KindUserWhatsApp:
		if p.Phone == "" {
			return fmt.Errorf("%w: user whatsapp notification requires a phone number", ErrInvalidArgument)
		}
	}
	return nil
}

// Marshal serializes the payload for durable storage.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPayload decodes a stored payload snapshot.
func UnmarshalPayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}
