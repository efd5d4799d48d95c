package xendit

import (
	"context"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
)

// invoiceBackend is the part of Client the gateway needs.
type invoiceBackend interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResponse, error)
}

// Gateway funds payrolls through Xendit invoices. Invoice amounts are whole currency units,
// the same unit payroll figures use, so no minor-unit conversion happens here.
type Gateway struct {
	invoices   invoiceBackend
	currency   string
	successURL string
	failureURL string
}

var _ payment.Gateway = (*Gateway)(nil)

func NewGateway(client *Client, cfg config.XenditConfig) *Gateway {
	return newGateway(client, cfg)
}

func newGateway(invoices invoiceBackend, cfg config.XenditConfig) *Gateway {
	return &Gateway{
		invoices:   invoices,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		failureURL: cfg.FailureURL,
	}
}

func (g *Gateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	amount := money.Round(req.Amount)
	if amount.LessThan(payment.MinimumAmount) {
		return payment.Checkout{}, payment.ErrAmountBelowMinimum
	}

	inv, err := g.invoices.CreateInvoice(ctx, CreateInvoiceRequest{
		ExternalID:         req.Reference,
		Amount:             amount,
		Description:        req.Description,
		Currency:           g.currency,
		SuccessRedirectURL: g.successURL,
		FailureRedirectURL: g.failureURL,
		Metadata:           map[string]string{"payroll_id": req.Reference},
	})
	if err != nil {
		return payment.Checkout{}, err
	}

	return payment.Checkout{ID: inv.ID, CheckoutURL: inv.InvoiceURL}, nil
}

func (g *Gateway) FetchCheckoutStatus(ctx context.Context, id string) (payment.CheckoutState, error) {
	inv, err := g.invoices.GetInvoice(ctx, id)
	if err != nil {
		return payment.CheckoutState{}, err
	}
	if inv == nil {
		return payment.CheckoutState{}, payment.ErrCheckoutNotFound
	}

	state := payment.CheckoutState{
		ID:       inv.ID,
		Status:   MapInvoiceStatus(inv.Status),
		Amount:   money.FromFloat(inv.Amount),
		Currency: inv.Currency,
	}
	if inv.PaidAt != nil {
		if t, err := time.Parse(time.RFC3339, *inv.PaidAt); err == nil {
			state.PaidAt = &t
		}
	}
	return state, nil
}

// MapInvoiceStatus folds Xendit invoice states onto checkout states. Unknown values stay pending.
func MapInvoiceStatus(status string) payment.CheckoutStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case InvoiceStatusPaid, InvoiceStatusSettled:
		return payment.CheckoutStatusPaid
	case InvoiceStatusExpired:
		return payment.CheckoutStatusExpired
	default:
		return payment.CheckoutStatusPending
	}
}
