package leavepayment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
)

type LeavePaymentServiceImpl struct {
	leavePaymentRepo leavepayment.LeavePaymentRepository
	payrollRepo      payroll.PayrollRepository
	locker           lock.Locker
	now              func() time.Time
}

func NewLeavePaymentService(
	leavePaymentRepo leavepayment.LeavePaymentRepository,
	payrollRepo payroll.PayrollRepository,
	locker lock.Locker,
) *LeavePaymentServiceImpl {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &LeavePaymentServiceImpl{
		leavePaymentRepo: leavePaymentRepo,
		payrollRepo:      payrollRepo,
		locker:           locker,
		now:              time.Now,
	}
}

func (s *LeavePaymentServiceImpl) WithClock(now func() time.Time) *LeavePaymentServiceImpl {
	s.now = now
	return s
}

// withUnpaidPayroll runs fn while holding the payroll's settlement lock, so ledger changes
// cannot interleave with a settlement that is summing the ledger.
func (s *LeavePaymentServiceImpl) withUnpaidPayroll(ctx context.Context, payrollID string, fn func(record payroll.PayrollRecord) error) error {
	unlock, err := s.locker.TryLock(ctx, lock.PayrollKey(payrollID), lock.DefaultTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return payroll.ErrSettlementInProgress
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to release payroll lock", "payroll_id", payrollID, "error", err)
		}
	}()

	record, err := s.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return err
	}
	if record.Status == payroll.StatusPaid {
		return leavepayment.ErrPayrollAlreadyPaid
	}
	return fn(record)
}

func (s *LeavePaymentServiceImpl) Add(ctx context.Context, req leavepayment.CreateLeavePaymentRequest) (leavepayment.LeavePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return leavepayment.LeavePaymentResponse{}, err
	}

	var created leavepayment.LeavePayment
	err := s.withUnpaidPayroll(ctx, req.PayrollID, func(record payroll.PayrollRecord) error {
		employeeID := req.EmployeeID
		if employeeID == "" {
			employeeID = record.EmployeeID
		}
		if employeeID != record.EmployeeID {
			return leavepayment.ErrEmployeeMismatch
		}

		var err error
		created, err = s.leavePaymentRepo.Create(ctx, leavepayment.LeavePayment{
			EmployeeID:   employeeID,
			PayrollID:    record.ID,
			LeaveType:    req.LeaveType,
			NumberOfDays: *req.NumberOfDays,
			RatePerDay:   *req.RatePerDay,
			Amount:       money.Round(req.NumberOfDays.Mul(*req.RatePerDay)),
			Date:         s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create leave payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return leavepayment.LeavePaymentResponse{}, err
	}

	slog.Info("Leave payment added", "leave_payment_id", created.ID, "payroll_id", created.PayrollID, "amount", created.Amount.String())
	return leavepayment.ToResponse(created), nil
}

func (s *LeavePaymentServiceImpl) List(ctx context.Context, employeeID, payrollID string) (leavepayment.ListLeavePaymentResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return leavepayment.ListLeavePaymentResponse{}, err
	}
	if employeeID == "" {
		employeeID = record.EmployeeID
	}

	payments, err := s.leavePaymentRepo.ListByEmployeeAndPayroll(ctx, employeeID, payrollID)
	if err != nil {
		return leavepayment.ListLeavePaymentResponse{}, fmt.Errorf("failed to list leave payments: %w", err)
	}

	data := make([]leavepayment.LeavePaymentResponse, 0, len(payments))
	for _, p := range payments {
		data = append(data, leavepayment.ToResponse(p))
	}
	return leavepayment.ListLeavePaymentResponse{Data: data, Total: leavepayment.Total(payments)}, nil
}

func (s *LeavePaymentServiceImpl) Delete(ctx context.Context, id string) error {
	existing, err := s.leavePaymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.withUnpaidPayroll(ctx, existing.PayrollID, func(payroll.PayrollRecord) error {
		return s.leavePaymentRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("Leave payment voided", "leave_payment_id", id, "payroll_id", existing.PayrollID)
	return nil
}
