package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
)

func settleMode(opts payroll.SettleOptions) string {
	if opts.Auto {
		return "auto"
	}
	return "manual"
}

// Settle recomputes the payroll from its linked logs and marks it paid.
func (s *PayrollServiceImpl) Settle(ctx context.Context, id string, opts payroll.SettleOptions) (payroll.PayrollResponse, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	record, err := s.settle(ctx, id, opts, settings)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return mapToResponse(record, s.ledgerTotal(ctx, record)), nil
}

// SweepDue settles every unpaid payroll whose auto-approval time has passed. Individual failures
// are logged and counted as skipped so the next sweep can retry them.
func (s *PayrollServiceImpl) SweepDue(ctx context.Context) (payroll.SweepResult, error) {
	result := payroll.SweepResult{Settled: []string{}}

	unlock, err := s.locker.TryLock(ctx, lock.SweepKey, s.lockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return result, nil
	}
	if err != nil {
		return result, err
	}
	defer s.release(ctx, unlock, lock.SweepKey)

	start := s.now()
	defer func() { s.metrics.ObserveSweep(s.now().Sub(start)) }()

	due, err := s.payrollRepo.ListDue(ctx, start)
	if err != nil {
		return result, fmt.Errorf("failed to list due payrolls: %w", err)
	}
	if len(due) == 0 {
		return result, nil
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return result, err
	}

	for _, record := range due {
		result.Checked++
		if _, err := s.settle(ctx, record.ID, payroll.SettleOptions{Auto: true}, settings); err != nil {
			slog.Warn("Auto-settlement skipped", "payroll_id", record.ID, "error", err)
			result.Skipped++
			continue
		}
		result.Settled = append(result.Settled, record.ID)
	}

	if len(result.Settled) > 0 {
		slog.Info("Auto-settled due payrolls", "settled", len(result.Settled), "skipped", result.Skipped)
	}
	return result, nil
}

func (s *PayrollServiceImpl) release(ctx context.Context, unlock lock.Unlock, key string) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("Failed to release lock", "key", key, "error", err)
	}
}

// settle runs one settlement under the per-payroll lock with a fixed settings snapshot.
func (s *PayrollServiceImpl) settle(ctx context.Context, id string, opts payroll.SettleOptions, settings payroll.PayrollSettings) (payroll.PayrollRecord, error) {
	mode := settleMode(opts)

	unlock, err := s.locker.TryLock(ctx, lock.PayrollKey(id), s.lockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.metrics.ObserveSettlement(mode, string(payroll.ReasonInProgress))
		return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonInProgress)
	}
	if err != nil {
		s.metrics.ObserveSettlement(mode, "error")
		return payroll.PayrollRecord{}, err
	}
	defer s.release(ctx, unlock, lock.PayrollKey(id))

	record, err := s.recompute(ctx, id, opts, settings)
	if err != nil {
		var precondition *payroll.PreconditionError
		if errors.As(err, &precondition) {
			s.metrics.ObserveSettlement(mode, string(precondition.Reason))
		} else {
			s.metrics.ObserveSettlement(mode, "error")
		}
		return payroll.PayrollRecord{}, err
	}

	if err := s.payrollRepo.Settle(ctx, record); err != nil {
		if errors.Is(err, payroll.ErrPayrollAlreadyPaid) {
			s.metrics.ObserveSettlement(mode, string(payroll.ReasonAlreadyPaid))
			return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonAlreadyPaid)
		}
		s.metrics.ObserveSettlement(mode, "error")
		return payroll.PayrollRecord{}, fmt.Errorf("failed to settle payroll: %w", err)
	}
	s.metrics.ObserveSettlement(mode, "paid")

	slog.Info("Payroll settled",
		"payroll_id", record.ID,
		"employee_id", record.EmployeeID,
		"auto", opts.Auto,
		"net_pay", record.NetPay.String(),
	)
	return record, nil
}

// recompute derives the settled figures without persisting them.
func (s *PayrollServiceImpl) recompute(ctx context.Context, id string, opts payroll.SettleOptions, settings payroll.PayrollSettings) (payroll.PayrollRecord, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if record.Status == payroll.StatusPaid {
		return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonAlreadyPaid)
	}

	emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonEmployeeNotFound)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get employee: %w", err)
	}

	linked, err := s.timeLogRepo.ListByPayroll(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to list linked time logs: %w", err)
	}

	minHours := settings.ShiftHours()
	rate := record.HourlyRate
	if !rate.IsPositive() {
		rate = emp.HourlyRate
	}

	updated := record
	updated.EmployeeName = emp.DisplayName()
	var attendanceLogs []timelog.TimeLog

	if len(linked) > 0 && record.CalculationBasis != payroll.CalculationBasisManual {
		metrics := s.aggregator.Aggregate(linked, "", minHours)
		if !metrics.TotalHours.IsPositive() {
			return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonNoCompletedLogs)
		}
		if !rate.IsPositive() {
			return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonHourlyRateMissing)
		}

		updated.CalculationBasis = payroll.CalculationBasisTimeLogs
		updated.HourlyRate = rate
		updated.TotalHours = metrics.TotalHours
		updated.RegularHours = metrics.RegularHours
		updated.OvertimeHours = metrics.OvertimeHours
		computeGross(metrics.RegularHours, metrics.OvertimeHours, rate).apply(&updated)

		summaries := attendance.BuildTimeLogSummaries(metrics.RelevantLogs, rate, s.loc)
		updated.TimeLogSummaries = summaries
		updated.PeriodLabel = attendance.PeriodLabel(summaries, record.Period)
		attendanceLogs = metrics.RelevantLogs
	} else {
		if record.CalculationBasis != payroll.CalculationBasisManual && !rate.IsPositive() && !record.NetPay.IsPositive() {
			return payroll.PayrollRecord{}, payroll.NewPreconditionError(id, payroll.ReasonInsufficientData)
		}
		if updated.Tax.IsZero() {
			updated.Tax = money.Round(updated.GrossPay.Mul(payroll.TaxRate))
		}
		if updated.StatutoryDeductions.IsZero() {
			updated.StatutoryDeductions = money.Round(updated.GrossPay.Mul(payroll.StatutoryRate))
		}
		if record.CalculationBasis == payroll.CalculationBasisManual {
			attendanceLogs = s.aggregator.Aggregate(linked, "", minHours).RelevantLogs
		}
	}

	now := s.now()
	summary := s.adjustments.Calculate(ctx, attendance.AdjustmentInput{
		EmployeeID:                 record.EmployeeID,
		Period:                     record.Period,
		MinHours:                   minHours,
		HourlyRate:                 rate,
		Logs:                       attendanceLogs,
		TreatUnworkedDaysAsAbsence: updated.CalculationBasis != payroll.CalculationBasisManual,
	})
	applyAttendance(&updated, summary)

	payments, err := s.leavePaymentRepo.ListByEmployeeAndPayroll(ctx, record.EmployeeID, id)
	if err != nil {
		slog.Warn("Failed to load leave payments, settling without them", "payroll_id", id, "error", err)
		payments = nil
	}
	updated.NetPay = money.Sum(updated.NetPay, leavepayment.Total(payments))

	next, err := record.Status.TransitionTo(payroll.StatusPaid)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	updated.Status = next
	updated.PaidAt = &now
	updated.AutoApproved = opts.Auto
	if opts.Auto {
		updated.AutoApprovedAt = &now
	}
	if updated.AutoApprovalScheduledAt.IsZero() {
		updated.AutoApprovalScheduledAt = period.EndOfMonth(record.Period, now, s.loc)
	}

	return updated, nil
}
