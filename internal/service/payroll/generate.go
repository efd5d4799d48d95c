package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
)

// Generate computes a payroll for the current pay period.
//
// In auto mode the employee's unclaimed completed logs for the period are used. When they add up
// to zero hours the caller must supply manual hours, unless every log is already claimed, in which
// case nothing is generated. That fallback keeps the period's logs for absence deductions and
// claims them. Manual mode always uses the supplied hours, ignores logs and claims none.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	minHours := settings.ShiftHours()

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.GenerateResult{}, payroll.ErrEmployeeNotFound
		}
		return payroll.GenerateResult{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.now()
	periodKey := period.Key(now, s.loc)

	logs, err := s.timeLogRepo.ListByEmployee(ctx, emp.ID)
	if err != nil {
		return payroll.GenerateResult{}, fmt.Errorf("failed to list time logs: %w", err)
	}
	unclaimed := timelog.Unclaimed(logs)
	metrics := s.aggregator.Aggregate(unclaimed, periodKey, minHours)

	useManual := req.Mode == payroll.GenerationModeManual
	if !useManual && !metrics.TotalHours.IsPositive() {
		switch {
		case len(unclaimed) == 0 && len(logs) > 0:
			s.metrics.ObserveGeneration(string(payroll.CalculationBasisTimeLogs), string(payroll.OutcomeNoNewLogs))
			return payroll.GenerateResult{
				Outcome: payroll.OutcomeNoNewLogs,
				Message: "No new completed time logs to process for this period",
			}, nil
		case req.ManualHours == nil:
			return payroll.GenerateResult{}, payroll.ErrManualHoursRequired
		default:
			useManual = true
		}
	}

	rate := emp.HourlyRate
	record := payroll.PayrollRecord{
		EmployeeID:              emp.ID,
		EmployeeName:            emp.DisplayName(),
		Period:                  periodKey,
		HourlyRate:              rate,
		Status:                  payroll.StatusPending,
		AutoApprovalScheduledAt: period.EndOfMonth(periodKey, now, s.loc),
		GeneratedAt:             now,
	}

	var claimIDs []string
	attendanceLogs := metrics.RelevantLogs
	if useManual {
		// A fallback from auto mode still claims the zero-hour logs it saw, so flagged absences
		// are deducted here and not again by a later generation.
		if req.Mode != payroll.GenerationModeManual {
			claimIDs = timelog.IDs(metrics.RelevantLogs)
		} else {
			attendanceLogs = nil
		}
		metrics = attendance.SplitManualHours(*req.ManualHours, minHours)
		record.CalculationBasis = payroll.CalculationBasisManual
		record.PeriodLabel = "Manual entry " + periodKey
		record.TimeLogIDs = append([]string{}, claimIDs...)
		record.TimeLogSummaries = []string{}
	} else {
		if !rate.IsPositive() {
			return payroll.GenerateResult{}, payroll.ErrHourlyRateMissing
		}
		claimIDs = timelog.IDs(metrics.RelevantLogs)
		summaries := attendance.BuildTimeLogSummaries(metrics.RelevantLogs, rate, s.loc)
		record.CalculationBasis = payroll.CalculationBasisTimeLogs
		record.PeriodLabel = attendance.PeriodLabel(summaries, periodKey)
		record.TimeLogIDs = claimIDs
		record.TimeLogSummaries = summaries
	}

	record.TotalHours = metrics.TotalHours
	record.RegularHours = metrics.RegularHours
	record.OvertimeHours = metrics.OvertimeHours
	computeGross(metrics.RegularHours, metrics.OvertimeHours, rate).apply(&record)

	summary := s.adjustments.Calculate(ctx, attendance.AdjustmentInput{
		EmployeeID:                 emp.ID,
		Period:                     periodKey,
		MinHours:                   minHours,
		HourlyRate:                 rate,
		Logs:                       attendanceLogs,
		TreatUnworkedDaysAsAbsence: !useManual,
	})
	applyAttendance(&record, summary)

	var created payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.payrollRepo.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create payroll: %w", err)
		}
		if len(claimIDs) == 0 {
			return nil
		}

		claimed, err := s.timeLogRepo.ClaimForPayroll(ctx, created.ID, claimIDs, now)
		if err != nil {
			return fmt.Errorf("failed to claim time logs: %w", err)
		}
		if len(claimed) != len(claimIDs) {
			return payroll.ErrTimeLogsAlreadyClaimed
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveGeneration(string(record.CalculationBasis), "failed")
		return payroll.GenerateResult{}, err
	}

	slog.Info("Payroll generated",
		"payroll_id", created.ID,
		"employee_id", created.EmployeeID,
		"period", created.Period,
		"basis", created.CalculationBasis,
		"net_pay", created.NetPay.String(),
	)

	result := payroll.GenerateResult{
		Outcome: payroll.OutcomeCreated,
		Message: fmt.Sprintf("Payroll generated for %s", created.EmployeeName),
	}

	if warning := s.openCheckout(ctx, &created); warning != "" {
		result.Outcome = payroll.OutcomeCreatedWithWarning
		result.Warning = warning
	}
	s.metrics.ObserveGeneration(string(created.CalculationBasis), string(result.Outcome))

	resp := mapToResponse(created, s.ledgerTotal(ctx, created))
	result.Payroll = &resp
	return result, nil
}

// openCheckout requests a funding checkout for the record's net pay. On success the record
// moves to processing. Failures leave it pending and are returned as a warning message.
func (s *PayrollServiceImpl) openCheckout(ctx context.Context, record *payroll.PayrollRecord) string {
	if s.gateway == nil {
		return "Payroll created, but no payment gateway is configured"
	}

	next, err := record.Status.TransitionTo(payroll.StatusProcessing)
	if err != nil {
		return err.Error()
	}

	checkout, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		Reference:   record.ID,
		Amount:      record.NetPay,
		Description: checkoutDescription(record.EmployeeName, record.PeriodLabel),
	})
	if err != nil {
		slog.Warn("Failed to create payroll checkout", "payroll_id", record.ID, "error", err)
		s.metrics.IncCheckoutFailure()
		return fmt.Sprintf("Payroll created, but the payment checkout could not be created: %v", err)
	}

	if err := s.payrollRepo.AttachCheckout(ctx, record.ID, checkout.ID, checkout.CheckoutURL); err != nil {
		slog.Warn("Failed to store payroll checkout", "payroll_id", record.ID, "checkout_id", checkout.ID, "error", err)
		s.metrics.IncCheckoutFailure()
		return fmt.Sprintf("Payroll created, but the payment checkout could not be saved: %v", err)
	}

	record.Status = next
	record.CheckoutID = &checkout.ID
	record.CheckoutURL = &checkout.CheckoutURL
	return ""
}
