package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

const AutoSettleJobName = "auto_settle_due_payrolls"

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	interval       time.Duration
}

func NewPayrollJobs(payrollService payroll.PayrollService, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		interval:       interval,
	}
}

// RegisterJobs adds the auto-settlement sweep. A non-positive interval registers nothing.
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) error {
	if j.interval <= 0 {
		slog.Info("Cron: auto-settlement sweep disabled")
		return nil
	}
	return scheduler.AddJob(Job{
		Name:     AutoSettleJobName,
		Interval: j.interval,
		Fn:       j.AutoSettleDuePayrolls,
	})
}

// AutoSettleDuePayrolls settles payrolls past their auto-approval time. Per-payroll failures are
// logged by the service and retried on the next run.
func (j *PayrollJobs) AutoSettleDuePayrolls(ctx context.Context) error {
	result, err := j.payrollService.SweepDue(ctx)
	if err != nil {
		return err
	}
	if len(result.Settled) > 0 || result.Skipped > 0 {
		slog.Info("Cron: auto-settlement sweep finished",
			"checked", result.Checked,
			"settled", len(result.Settled),
			"skipped", result.Skipped,
		)
	}
	return nil
}
