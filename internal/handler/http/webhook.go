package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/xendit"
)

type WebhookHandler interface {
	HandleXenditInvoice(w http.ResponseWriter, r *http.Request)
}

type webhookHandlerImpl struct {
	payrollService payroll.PayrollService
	verifier       *xendit.WebhookVerifier
}

func NewWebhookHandler(payrollService payroll.PayrollService, verifier *xendit.WebhookVerifier) WebhookHandler {
	return &webhookHandlerImpl{payrollService: payrollService, verifier: verifier}
}

// HandleXenditInvoice records the funding status of a payroll checkout. It never settles the payroll.
func (h *webhookHandlerImpl) HandleXenditInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.verifier.VerifySignature(r.Header.Get(xendit.CallbackTokenHeader)) {
		response.Unauthorized(w, "Invalid callback token")
		return
	}

	var payload xendit.InvoiceWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	req := payroll.CheckoutEventRequest{
		CheckoutID: payload.ID,
		Status:     string(xendit.MapInvoiceStatus(payload.Status)),
	}
	if err := h.payrollService.RecordCheckoutEvent(r.Context(), req); err != nil {
		slog.Warn("xendit webhook not recorded", "invoice_id", payload.ID, "external_id", payload.ExternalID, "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("xendit webhook recorded", "invoice_id", payload.ID, "status", req.Status)
	response.SuccessWithMessage(w, "Webhook processed", nil)
}
