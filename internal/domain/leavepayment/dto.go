package leavepayment

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeavePaymentRequest struct {
	PayrollID    string           `json:"-"`
	EmployeeID   string           `json:"employee_id,omitempty"`
	LeaveType    string           `json:"leave_type"`
	NumberOfDays *decimal.Decimal `json:"number_of_days"`
	RatePerDay   *decimal.Decimal `json:"rate_per_day"`
}

func (r *CreateLeavePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	r.LeaveType = strings.TrimSpace(r.LeaveType)
	if validator.IsEmpty(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "is required"})
	}
	if r.LeaveType == "" {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "is required"})
	}
	if !validator.IsPositive(r.NumberOfDays) {
		errs = append(errs, validator.ValidationError{Field: "number_of_days", Message: "must be greater than 0"})
	}
	if !validator.IsPositive(r.RatePerDay) {
		errs = append(errs, validator.ValidationError{Field: "rate_per_day", Message: "must be greater than 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeavePaymentResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	PayrollID    string          `json:"payroll_id"`
	LeaveType    string          `json:"leave_type"`
	NumberOfDays decimal.Decimal `json:"number_of_days"`
	RatePerDay   decimal.Decimal `json:"rate_per_day"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
}

type ListLeavePaymentResponse struct {
	Data  []LeavePaymentResponse `json:"data"`
	Total decimal.Decimal        `json:"total"`
}

func ToResponse(p LeavePayment) LeavePaymentResponse {
	return LeavePaymentResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		PayrollID:    p.PayrollID,
		LeaveType:    p.LeaveType,
		NumberOfDays: p.NumberOfDays,
		RatePerDay:   p.RatePerDay,
		Amount:       p.Amount,
		Date:         p.Date,
	}
}
