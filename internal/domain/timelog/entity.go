package timelog

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

var millisPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// TimeLog is a single clock-in/clock-out entry. A nil TimeOut means the employee is still clocked in.
type TimeLog struct {
	ID              string
	EmployeeID      string
	TimeIn          time.Time
	TimeOut         *time.Time
	HoursWorked     *decimal.Decimal
	OvertimeHours   *decimal.Decimal
	HourlyRate      *decimal.Decimal
	IsAbsent        bool
	PayrollID       *string
	PayrollLinkedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen reports whether the entry has no clock-out yet.
func (l TimeLog) IsOpen() bool {
	return l.TimeOut == nil || l.TimeOut.IsZero()
}

// IsComplete reports whether both clock-in and clock-out are set.
func (l TimeLog) IsComplete() bool {
	return !l.TimeIn.IsZero() && !l.IsOpen()
}

func (l TimeLog) IsClaimed() bool {
	return l.PayrollID != nil && *l.PayrollID != ""
}

// IsLinkedTo reports whether the entry has been claimed by payrollID.
func (l TimeLog) IsLinkedTo(payrollID string) bool {
	return l.PayrollID != nil && *l.PayrollID == payrollID
}

// Unclaimed filters out entries already consumed by a payroll run.
func Unclaimed(logs []TimeLog) []TimeLog {
	out := make([]TimeLog, 0, len(logs))
	for _, l := range logs {
		if !l.IsClaimed() {
			out = append(out, l)
		}
	}
	return out
}

// IDs returns the identifiers of logs in order.
func IDs(logs []TimeLog) []string {
	ids := make([]string, 0, len(logs))
	for _, l := range logs {
		if l.ID != "" {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// HoursBetween is the unrounded number of hours from in to out.
func HoursBetween(in, out time.Time) decimal.Decimal {
	return decimal.NewFromInt(out.Sub(in).Milliseconds()).Div(millisPerHour)
}

// OvertimeFor is the rounded share of hours above threshold.
func OvertimeFor(hours, threshold decimal.Decimal) decimal.Decimal {
	return money.Round(money.NonNegative(hours.Sub(threshold)))
}

// Hours returns the stored hours when present, otherwise the clock duration. Zero for open entries.
func (l TimeLog) Hours() decimal.Decimal {
	if l.HoursWorked != nil {
		return *l.HoursWorked
	}
	if !l.IsComplete() {
		return decimal.Zero
	}
	return HoursBetween(l.TimeIn, *l.TimeOut)
}
