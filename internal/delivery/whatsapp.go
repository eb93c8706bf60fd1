package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const graphAPIBase = "https://graph.facebook.com/v18.0"

// WhatsAppSender performs one text-message send attempt. Implementations do
// no retrying; a failed attempt is reported as an error and nothing else.
type WhatsAppSender interface {
	Send(ctx context.Context, phone, text string) error
}

// WhatsAppClient talks to the WhatsApp Business Messaging API.
type WhatsAppClient struct {
	token         string
	phoneNumberID string
	countryCode   string
	baseURL       string
	http          *http.Client
}

type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	CountryCode   string
	BaseURL       string // overridable for tests
	Timeout       time.Duration
}

func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = graphAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "234"
	}
	return &WhatsAppClient{
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		countryCode:   cfg.CountryCode,
		baseURL:       cfg.BaseURL,
		http:          &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether the client has API credentials.
func (c *WhatsAppClient) Configured() bool {
	return c.token != "" && c.phoneNumberID != ""
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

type whatsAppText struct {
	Body string `json:"body"`
}

func (c *WhatsAppClient) Send(ctx context.Context, phone, text string) error {
	if !c.Configured() {
		return fmt.Errorf("whatsapp credentials not configured")
	}
	to, err := NormalizePhone(phone, c.countryCode)
	if err != nil {
		return err
	}

	body, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("encode whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp API error: %d - %s", resp.StatusCode, string(respBody))
	}

	log.Info().Str("to", to).Msg("whatsapp message sent")
	return nil
}
