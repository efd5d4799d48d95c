package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPayrollSettingsNotFound = errors.New("payroll settings not found")
	ErrPayrollRecordNotFound   = errors.New("payroll record not found")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrIllegalTransition       = errors.New("illegal payroll status transition")
	ErrCheckoutNotCreated      = errors.New("payroll has no checkout reference")

	// Generation
	ErrHourlyRateMissing      = errors.New("hourly rate missing, update the employee record before generating payroll")
	ErrManualHoursRequired    = errors.New("no completed time logs found, manual hours are required")
	ErrTimeLogsAlreadyClaimed = errors.New("time logs were claimed by another payroll run")

	// Settlement preconditions
	ErrPayrollAlreadyPaid   = errors.New("payroll record already paid")
	ErrNoCompletedLogs      = errors.New("no completed time logs linked to payroll")
	ErrInsufficientData     = errors.New("payroll data incomplete, verify hourly rate and time logs")
	ErrSettlementInProgress = errors.New("payroll settlement already in progress")
)

// Reason names why a settlement precondition failed.
type Reason string

const (
	ReasonAlreadyPaid       Reason = "already_paid"
	ReasonEmployeeNotFound  Reason = "employee_not_found"
	ReasonNoCompletedLogs   Reason = "no_completed_logs"
	ReasonHourlyRateMissing Reason = "hourly_rate_missing"
	ReasonInsufficientData  Reason = "insufficient_data"
	ReasonInProgress        Reason = "in_progress"
)

var reasonErrors = map[Reason]error{
	ReasonAlreadyPaid:       ErrPayrollAlreadyPaid,
	ReasonEmployeeNotFound:  ErrEmployeeNotFound,
	ReasonNoCompletedLogs:   ErrNoCompletedLogs,
	ReasonHourlyRateMissing: ErrHourlyRateMissing,
	ReasonInsufficientData:  ErrInsufficientData,
	ReasonInProgress:        ErrSettlementInProgress,
}

// PreconditionError reports a payroll whose state does not allow the requested action.
type PreconditionError struct {
	PayrollID string
	Reason    Reason
}

func NewPreconditionError(payrollID string, reason Reason) *PreconditionError {
	return &PreconditionError{PayrollID: payrollID, Reason: reason}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("payroll %s: %v", e.PayrollID, e.Unwrap())
}

func (e *PreconditionError) Unwrap() error {
	if err, ok := reasonErrors[e.Reason]; ok {
		return err
	}
	return errors.New(string(e.Reason))
}
