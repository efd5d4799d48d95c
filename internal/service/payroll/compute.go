package payroll

import (
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// payFigures holds the monetary breakdown of one payroll. Every field is rounded to cents.
type payFigures struct {
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	GrossPay    decimal.Decimal
	Tax         decimal.Decimal
	Statutory   decimal.Decimal
}

func computeGross(regularHours, overtimeHours, rate decimal.Decimal) payFigures {
	regularPay := money.Round(regularHours.Mul(rate))
	overtimePay := money.Round(overtimeHours.Mul(rate).Mul(payroll.OvertimeMultiplier))
	gross := money.Sum(regularPay, overtimePay)

	return payFigures{
		RegularPay:  regularPay,
		OvertimePay: overtimePay,
		GrossPay:    gross,
		Tax:         money.Round(gross.Mul(payroll.TaxRate)),
		Statutory:   money.Round(gross.Mul(payroll.StatutoryRate)),
	}
}

func (f payFigures) apply(rec *payroll.PayrollRecord) {
	rec.RegularPay = f.RegularPay
	rec.OvertimePay = f.OvertimePay
	rec.GrossPay = f.GrossPay
	rec.Tax = f.Tax
	rec.StatutoryDeductions = f.Statutory
}

// applyAttendance writes the attendance snapshot and recomputes deductions and net pay.
func applyAttendance(rec *payroll.PayrollRecord, summary payroll.AttendanceSummary) {
	rec.AttendanceSummary = summary
	rec.AbsenceDeduction = summary.AbsenceDeduction
	rec.LeaveDeduction = summary.LeaveDeduction
	rec.AttendanceDeduction = summary.TotalAttendanceDeduction
	rec.Deductions = money.Sum(rec.StatutoryDeductions, rec.AttendanceDeduction)
	rec.NetPay = money.NonNegative(money.Round(rec.GrossPay.Sub(rec.Tax).Sub(rec.Deductions)))
}

func checkoutDescription(name, label string) string {
	collapsed := strings.Join(strings.Fields(label), " ")
	if collapsed == "" {
		collapsed = "current period"
	}
	return "Payroll for " + name + " - " + collapsed
}
