package leavepayment

import "context"

type LeavePaymentRepository interface {
	Create(ctx context.Context, payment LeavePayment) (LeavePayment, error)
	GetByID(ctx context.Context, id string) (LeavePayment, error)
	ListByEmployeeAndPayroll(ctx context.Context, employeeID, payrollID string) ([]LeavePayment, error)
	Delete(ctx context.Context, id string) error
}
