package xendit

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoices struct {
	created []CreateInvoiceRequest
	invoice *InvoiceResponse
	err     error
}

func (f *fakeInvoices) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &InvoiceResponse{ID: "inv-" + req.ExternalID, InvoiceURL: "https://checkout.xendit.co/inv-" + req.ExternalID}, nil
}

func (f *fakeInvoices) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.invoice, nil
}

func testConfig() config.XenditConfig {
	return config.XenditConfig{Currency: "IDR", SuccessURL: "https://app.example/ok"}
}

func TestGateway_CreateCheckout(t *testing.T) {
	backend := &fakeInvoices{}
	gw := newGateway(backend, testConfig())

	checkout, err := gw.CreateCheckout(context.Background(), payment.CheckoutRequest{
		Reference:   "p-1",
		Amount:      decimal.RequireFromString("1228.255"),
		Description: "Payroll for Ada - Jun 03, 2024",
	})
	require.NoError(t, err)

	assert.Equal(t, "inv-p-1", checkout.ID)
	assert.Equal(t, "https://checkout.xendit.co/inv-p-1", checkout.CheckoutURL)
	require.Len(t, backend.created, 1)
	assert.Equal(t, "1228.26", backend.created[0].Amount.String())
	assert.Equal(t, "IDR", backend.created[0].Currency)
	assert.Equal(t, "https://app.example/ok", backend.created[0].SuccessRedirectURL)
	assert.Equal(t, "p-1", backend.created[0].Metadata["payroll_id"])
}

func TestGateway_CreateCheckout_BelowMinimum(t *testing.T) {
	backend := &fakeInvoices{}
	gw := newGateway(backend, testConfig())

	for _, amount := range []string{"0", "0.99", "-5"} {
		_, err := gw.CreateCheckout(context.Background(), payment.CheckoutRequest{Reference: "p", Amount: decimal.RequireFromString(amount)})
		assert.ErrorIs(t, err, payment.ErrAmountBelowMinimum, amount)
	}
	assert.Empty(t, backend.created)
}

func TestGateway_CreateCheckout_BackendError(t *testing.T) {
	gw := newGateway(&fakeInvoices{err: errors.New("boom")}, testConfig())

	_, err := gw.CreateCheckout(context.Background(), payment.CheckoutRequest{Reference: "p", Amount: decimal.NewFromInt(10)})
	assert.EqualError(t, err, "boom")
}

func TestGateway_FetchCheckoutStatus(t *testing.T) {
	paidAt := "2024-06-30T10:00:00Z"
	backend := &fakeInvoices{invoice: &InvoiceResponse{ID: "inv-1", Status: "SETTLED", Amount: 1228.26, Currency: "IDR", PaidAt: &paidAt}}
	gw := newGateway(backend, testConfig())

	state, err := gw.FetchCheckoutStatus(context.Background(), "inv-1")
	require.NoError(t, err)

	assert.Equal(t, payment.CheckoutStatusPaid, state.Status)
	assert.Equal(t, "1228.26", state.Amount.String())
	assert.Equal(t, "IDR", state.Currency)
	require.NotNil(t, state.PaidAt)
	assert.Equal(t, 30, state.PaidAt.Day())

	_, err = newGateway(&fakeInvoices{}, testConfig()).FetchCheckoutStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, payment.ErrCheckoutNotFound)
}

func TestMapInvoiceStatus(t *testing.T) {
	tests := map[string]payment.CheckoutStatus{
		"PENDING":  payment.CheckoutStatusPending,
		"PAID":     payment.CheckoutStatusPaid,
		"settled":  payment.CheckoutStatusPaid,
		"EXPIRED":  payment.CheckoutStatusExpired,
		"UNKNOWN":  payment.CheckoutStatusPending,
		" paid \n": payment.CheckoutStatusPaid,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapInvoiceStatus(in), in)
	}
}

func TestWebhookVerifier(t *testing.T) {
	v := NewWebhookVerifier(" token-123 ")

	assert.True(t, v.VerifySignature("token-123"))
	assert.True(t, v.VerifySignature(" token-123"))
	assert.False(t, v.VerifySignature("token-124"))
	assert.False(t, v.VerifySignature(""))

	assert.False(t, NewWebhookVerifier("").VerifySignature(""))
}
