package payroll

import "context"

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context) (PayrollSettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdatePayrollSettingsRequest) (PayrollSettingsResponse, error)

	// Generate computes a new payroll for an employee from unclaimed time logs or manual hours.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)

	// Settle re-derives figures from linked logs and marks the payroll paid.
	Settle(ctx context.Context, id string, opts SettleOptions) (PayrollResponse, error)

	// SweepDue settles every unpaid payroll whose auto-approval time has passed.
	SweepDue(ctx context.Context) (SweepResult, error)

	Get(ctx context.Context, id string) (PayrollResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) (ListPayrollResponse, error)

	// Funding checkout
	CheckoutStatus(ctx context.Context, id string) (CheckoutStatusResponse, error)
	RecordCheckoutEvent(ctx context.Context, req CheckoutEventRequest) error
}
