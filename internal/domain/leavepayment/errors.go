package leavepayment

import "errors"

var (
	ErrLeavePaymentNotFound = errors.New("leave payment not found")
	ErrPayrollAlreadyPaid   = errors.New("cannot change leave payments on a paid payroll")
	ErrEmployeeMismatch     = errors.New("leave payment employee does not match payroll employee")
)
