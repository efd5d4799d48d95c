package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll records and settings.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)

	// Payroll Records
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	ListDue(ctx context.Context, now time.Time) ([]PayrollRecord, error)

	// AttachCheckout stores the funding checkout and moves a pending record to processing.
	AttachCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error
	UpdateCheckoutStatus(ctx context.Context, id, status string) error

	// Settle persists the settled figures only if the stored record is not yet paid.
	// It returns ErrPayrollAlreadyPaid when another writer got there first.
	Settle(ctx context.Context, record PayrollRecord) error
}
