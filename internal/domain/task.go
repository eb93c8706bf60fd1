package domain

import (
	"errors"
	"time"
)

// Kind identifies which notification a task delivers.
type Kind string

const (
	KindAdminEmail    Kind = "admin_email"
	KindUserEmail     Kind = "user_email"
	KindAdminWhatsApp Kind = "admin_whatsapp"
	KindUserWhatsApp  Kind = "user_whatsapp"
)

// Kinds lists every notification kind in a stable order.
var Kinds = []Kind{KindAdminEmail, KindUserEmail, KindAdminWhatsApp, KindUserWhatsApp}

func (k Kind) Valid() bool {
	switch k {
	case KindAdminEmail, KindUserEmail, KindAdminWhatsApp, KindUserWhatsApp:
		return true
	}
	return false
}

// Status is the lifecycle state of a notification task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Task is one durable unit of notification delivery work. Payload is the
// serialized snapshot captured at enqueue time and is never mutated after
// creation.
type Task struct {
	ID           string
	Kind         Kind
	Payload      []byte
	Status       Status
	RetryCount   int
	MaxRetries   int
	ErrorMessage string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// Retryable reports whether a failed task may be requeued.
func (t Task) Retryable() bool {
	return t.Status == StatusFailed && t.RetryCount < t.MaxRetries
}

var (
	ErrNotFound          = errors.New("task not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrUnknownKind       = errors.New("unknown notification kind")
)
