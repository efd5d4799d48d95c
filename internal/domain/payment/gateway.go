package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MinimumAmount is the smallest payable amount, in whole currency units.
var MinimumAmount = decimal.NewFromInt(1)

var (
	ErrAmountBelowMinimum = errors.New("amount is below the gateway minimum")
	ErrCheckoutNotFound   = errors.New("checkout not found")
)

type CheckoutStatus string

const (
	CheckoutStatusPending CheckoutStatus = "pending"
	CheckoutStatusPaid    CheckoutStatus = "paid"
	CheckoutStatusExpired CheckoutStatus = "expired"
)

// CheckoutRequest asks the gateway for a payable checkout. Amount is in whole units.
type CheckoutRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Description string
}

type Checkout struct {
	ID          string
	CheckoutURL string
}

type CheckoutState struct {
	ID       string
	Status   CheckoutStatus
	PaidAt   *time.Time
	Amount   decimal.Decimal
	Currency string
}

// Gateway is the external payment processor. Adapters own minor-unit conversion.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	FetchCheckoutStatus(ctx context.Context, id string) (CheckoutState, error)
}
