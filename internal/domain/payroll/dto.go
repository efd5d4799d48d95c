package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type PayrollSettingsResponse struct {
	MinHoursPerShift decimal.Decimal `json:"min_hours_per_shift"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

type UpdatePayrollSettingsRequest struct {
	MinHoursPerShift *decimal.Decimal `json:"min_hours_per_shift,omitempty"`
}

var maxShiftHours = decimal.NewFromInt(24)

func (r *UpdatePayrollSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MinHoursPerShift != nil {
		if !r.MinHoursPerShift.IsPositive() {
			errs = append(errs, validator.ValidationError{Field: "min_hours_per_shift", Message: "must be greater than 0"})
		} else if r.MinHoursPerShift.GreaterThan(maxShiftHours) {
			errs = append(errs, validator.ValidationError{Field: "min_hours_per_shift", Message: "must not exceed 24"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== GENERATION DTOs ==========

type GenerationMode string

const (
	GenerationModeAuto   GenerationMode = "auto"
	GenerationModeManual GenerationMode = "manual"
)

type GenerateRequest struct {
	EmployeeID  string           `json:"employee_id"`
	Mode        GenerationMode   `json:"mode"`
	ManualHours *decimal.Decimal `json:"manual_hours,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}

	if r.Mode == "" {
		r.Mode = GenerationModeAuto
	}
	if !validator.IsInSlice(string(r.Mode), []string{string(GenerationModeAuto), string(GenerationModeManual)}) {
		errs = append(errs, validator.ValidationError{Field: "mode", Message: "must be auto or manual"})
	}

	if r.ManualHours != nil && !validator.IsPositive(r.ManualHours) {
		errs = append(errs, validator.ValidationError{Field: "manual_hours", Message: "must be greater than 0"})
	}
	if r.Mode == GenerationModeManual && r.ManualHours == nil {
		errs = append(errs, validator.ValidationError{Field: "manual_hours", Message: "is required for manual entry"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerationOutcome string

const (
	OutcomeCreated            GenerationOutcome = "created"
	OutcomeCreatedWithWarning GenerationOutcome = "created_with_warning"
	OutcomeNoNewLogs          GenerationOutcome = "no_new_logs"
)

type GenerateResult struct {
	Outcome GenerationOutcome `json:"outcome"`
	Message string            `json:"message"`
	Warning string            `json:"warning,omitempty"`
	Payroll *PayrollResponse  `json:"payroll,omitempty"`
}

// ========== SETTLEMENT DTOs ==========

type SettleOptions struct {
	Auto bool
}

type SweepResult struct {
	Checked int      `json:"checked"`
	Settled []string `json:"settled"`
	Skipped int      `json:"skipped"`
}

// ========== RECORD DTOs ==========

type PayrollResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     string           `json:"employee_name"`
	Period           string           `json:"period"`
	PeriodLabel      string           `json:"period_label"`
	CalculationBasis CalculationBasis `json:"calculation_basis"`

	TotalHours    decimal.Decimal `json:"total_hours"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`

	RegularPay          decimal.Decimal `json:"regular_pay"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	GrossPay            decimal.Decimal `json:"gross_pay"`
	Tax                 decimal.Decimal `json:"tax"`
	StatutoryDeductions decimal.Decimal `json:"statutory_deductions"`
	AbsenceDeduction    decimal.Decimal `json:"absence_deduction"`
	LeaveDeduction      decimal.Decimal `json:"leave_deduction"`
	AttendanceDeduction decimal.Decimal `json:"attendance_deduction"`
	Deductions          decimal.Decimal `json:"deductions"`
	NetPay              decimal.Decimal `json:"net_pay"`

	// LeavePaymentTotal is the current ledger sum. For unpaid payrolls ProjectedNetPay
	// shows what settlement would add; once paid the sum is already inside NetPay.
	LeavePaymentTotal decimal.Decimal `json:"leave_payment_total"`
	ProjectedNetPay   decimal.Decimal `json:"projected_net_pay"`

	Status            Status            `json:"status"`
	TimeLogIDs        []string          `json:"time_log_ids"`
	TimeLogSummaries  []string          `json:"time_log_summaries"`
	AttendanceSummary AttendanceSummary `json:"attendance_summary"`

	AutoApprovalScheduledAt time.Time  `json:"auto_approval_scheduled_at"`
	AutoApproved            bool       `json:"auto_approved"`
	AutoApprovedAt          *time.Time `json:"auto_approved_at"`
	PaidAt                  *time.Time `json:"paid_at"`

	CheckoutID     *string `json:"checkout_id,omitempty"`
	CheckoutURL    *string `json:"checkout_url,omitempty"`
	CheckoutStatus *string `json:"checkout_status,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PayrollFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Period     *string `json:"period,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be pending, processing or paid"})
	}
	if f.Period != nil && !period.IsValid(*f.Period) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "must be in YYYY-MM format"})
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollResponse struct {
	Data        []PayrollResponse `json:"data"`
	TotalCount  int64             `json:"total_count"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	AutoSettled int               `json:"auto_settled"`
}

// ========== CHECKOUT DTOs ==========

type CheckoutStatusResponse struct {
	PayrollID  string          `json:"payroll_id"`
	CheckoutID string          `json:"checkout_id"`
	Status     string          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

type CheckoutEventRequest struct {
	CheckoutID string `json:"checkout_id"`
	Status     string `json:"status"`
}

func (r *CheckoutEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CheckoutID) {
		errs = append(errs, validator.ValidationError{Field: "checkout_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
