package leavepayment

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// LeavePayment is ad hoc paid-leave compensation attached to a payroll. Records are
// append-only: they can be voided (deleted) but never edited.
type LeavePayment struct {
	ID           string
	EmployeeID   string
	PayrollID    string
	LeaveType    string
	NumberOfDays decimal.Decimal
	RatePerDay   decimal.Decimal
	Amount       decimal.Decimal
	Date         time.Time
	CreatedAt    time.Time
}

// Total sums the amounts of payments, rounded to cents.
func Total(payments []LeavePayment) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	return money.Sum(amounts...)
}
