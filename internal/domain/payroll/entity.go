package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// DefaultMinHoursPerShift applies when no settings are stored or the stored value is not positive.
const DefaultMinHoursPerShift = 8

// PayrollSettings is the process-wide payroll configuration.
type PayrollSettings struct {
	ID               string
	MinHoursPerShift decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func DefaultSettings() PayrollSettings {
	return PayrollSettings{MinHoursPerShift: decimal.NewFromInt(DefaultMinHoursPerShift)}
}

// ShiftHours is the overtime threshold to apply, never zero or negative.
func (s PayrollSettings) ShiftHours() decimal.Decimal {
	if s.MinHoursPerShift.IsPositive() {
		return s.MinHoursPerShift
	}
	return decimal.NewFromInt(DefaultMinHoursPerShift)
}

// CalculationBasis records where the hours on a payroll came from.
type CalculationBasis string

const (
	CalculationBasisTimeLogs CalculationBasis = "time_logs"
	CalculationBasisManual   CalculationBasis = "manual"
)

// Fixed rates. These are placeholders, not tax tables.
var (
	OvertimeMultiplier = decimal.RequireFromString("1.5")
	TaxRate            = decimal.RequireFromString("0.10")
	StatutoryRate      = decimal.RequireFromString("0.05")
)

// PayrollRecord is one employee's payroll for one period.
type PayrollRecord struct {
	ID               string
	EmployeeID       string
	EmployeeName     string
	Period           string
	PeriodLabel      string
	CalculationBasis CalculationBasis

	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HourlyRate    decimal.Decimal

	RegularPay          decimal.Decimal
	OvertimePay         decimal.Decimal
	GrossPay            decimal.Decimal
	Tax                 decimal.Decimal
	StatutoryDeductions decimal.Decimal
	AbsenceDeduction    decimal.Decimal
	LeaveDeduction      decimal.Decimal
	AttendanceDeduction decimal.Decimal
	Deductions          decimal.Decimal // statutory + attendance
	NetPay              decimal.Decimal

	Status            Status
	TimeLogIDs        []string
	TimeLogSummaries  []string
	AttendanceSummary AttendanceSummary

	AutoApprovalScheduledAt time.Time
	AutoApproved            bool
	AutoApprovedAt          *time.Time
	PaidAt                  *time.Time

	// Employer-side funding checkout created at generation.
	CheckoutID     *string
	CheckoutURL    *string
	CheckoutStatus *string

	GeneratedAt time.Time
	UpdatedAt   time.Time
}

// IsDue reports whether auto-approval should settle the record at now.
func (p PayrollRecord) IsDue(now time.Time) bool {
	if p.Status == StatusPaid || p.AutoApprovalScheduledAt.IsZero() {
		return false
	}
	return !p.AutoApprovalScheduledAt.After(now)
}

// AttendanceSummary is the snapshot of attendance adjustments embedded in a payroll.
type AttendanceSummary struct {
	PaidLeaveDays    int      `json:"paid_leave_days"`
	PaidLeaveDates   []string `json:"paid_leave_dates"`
	UnpaidLeaveDays  int      `json:"unpaid_leave_days"`
	UnpaidLeaveDates []string `json:"unpaid_leave_dates"`
	AbsenceDays      int      `json:"absence_days"`
	AbsenceDates     []string `json:"absence_dates"`
	WorkingDays      int      `json:"working_days"`
	WorkedDays       int      `json:"worked_days"`

	// UnworkedDates lists business days with no log and no leave. Informational only:
	// absences are counted from explicitly marked logs.
	UnworkedDates []string `json:"unworked_dates,omitempty"`

	DailyRate                decimal.Decimal `json:"daily_rate"`
	AbsenceDeduction         decimal.Decimal `json:"absence_deduction"`
	LeaveDeduction           decimal.Decimal `json:"leave_deduction"`
	TotalAttendanceDeduction decimal.Decimal `json:"total_attendance_deduction"`
	PeriodRange              period.Range    `json:"period_range"`
}
