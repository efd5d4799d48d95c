package xendit

import (
	"crypto/subtle"
	"strings"
)

// CallbackTokenHeader carries the verification token on every Xendit callback.
const CallbackTokenHeader = "x-callback-token"

// WebhookVerifier handles webhook signature verification
type WebhookVerifier struct {
	webhookToken string
}

func NewWebhookVerifier(webhookToken string) *WebhookVerifier {
	return &WebhookVerifier{webhookToken: strings.TrimSpace(webhookToken)}
}

// VerifySignature compares the x-callback-token header with the configured token.
// An unconfigured token rejects everything.
func (v *WebhookVerifier) VerifySignature(callbackToken string) bool {
	if v == nil || v.webhookToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(callbackToken)), []byte(v.webhookToken)) == 1
}

// InvoiceWebhookPayload represents the webhook payload for invoice events
type InvoiceWebhookPayload struct {
	ID             string  `json:"id"`
	ExternalID     string  `json:"external_id"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	PaidAmount     float64 `json:"paid_amount"`
	PaidAt         string  `json:"paid_at"`
	Currency       string  `json:"currency"`
	PaymentMethod  string  `json:"payment_method"`
	PaymentChannel string  `json:"payment_channel"`
}
