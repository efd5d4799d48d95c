package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
)

type leavePaymentRepository struct {
	s *Store
}

func (r *leavePaymentRepository) Create(ctx context.Context, payment leavepayment.LeavePayment) (leavepayment.LeavePayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if payment.ID == "" {
		payment.ID = newID()
	}
	payment.CreatedAt = r.s.now()
	r.s.leavePayments[payment.ID] = payment
	return payment, nil
}

func (r *leavePaymentRepository) GetByID(ctx context.Context, id string) (leavepayment.LeavePayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.leavePayments[id]
	if !ok {
		return leavepayment.LeavePayment{}, leavepayment.ErrLeavePaymentNotFound
	}
	return p, nil
}

func (r *leavePaymentRepository) ListByEmployeeAndPayroll(ctx context.Context, employeeID, payrollID string) ([]leavepayment.LeavePayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []leavepayment.LeavePayment{}
	for _, p := range r.s.leavePayments {
		if p.EmployeeID == employeeID && p.PayrollID == payrollID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *leavePaymentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leavePayments[id]; !ok {
		return leavepayment.ErrLeavePaymentNotFound
	}
	delete(r.s.leavePayments, id)
	return nil
}
