package leavepayment

import "context"

type LeavePaymentService interface {
	Add(ctx context.Context, req CreateLeavePaymentRequest) (LeavePaymentResponse, error)

	// List returns the records for the (employee, payroll) pair. An empty employeeID
	// resolves to the payroll's own employee.
	List(ctx context.Context, employeeID, payrollID string) (ListLeavePaymentResponse, error)
	Delete(ctx context.Context, id string) error
}
