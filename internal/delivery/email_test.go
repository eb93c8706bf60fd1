package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

func TestSMTPMailerConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  SMTPConfig
		want bool
	}{
		{"host and from", SMTPConfig{Host: "smtp.example.com", From: "no-reply@xlideland.com"}, true},
		{"missing from", SMTPConfig{Host: "smtp.example.com"}, false},
		{"missing host", SMTPConfig{From: "no-reply@xlideland.com"}, false},
		{"empty", SMTPConfig{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewSMTPMailer(tc.cfg).Configured(); got != tc.want {
				t.Errorf("Configured() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSMTPMailerUnconfiguredSend(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{})
	if err := m.Send(context.Background(), "jane@x.com", "subject", "<p>hi</p>", "hi"); err == nil {
		t.Fatal("want error when relay is not configured")
	}
}

func TestSMTPMailerRejectsBadRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "no-reply@xlideland.com"})
	err := m.Send(context.Background(), "not-an-address", "subject", "<p>hi</p>", "hi")
	if !errors.Is(err, domain.ErrInvalidRecipient) {
		t.Fatalf("err = %v, want ErrInvalidRecipient", err)
	}
}
