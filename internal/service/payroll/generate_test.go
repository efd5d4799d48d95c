package payroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollService_Generate_FromTimeLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	l1 := env.addLog(t, emp.ID, juneAt(3, 8), 10*time.Hour)
	l2 := env.addLog(t, emp.ID, juneAt(4, 8), 6*time.Hour)

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)
	require.Equal(t, payroll.OutcomeCreated, result.Outcome)
	require.NotNil(t, result.Payroll)

	p := result.Payroll
	assert.Equal(t, payroll.CalculationBasisTimeLogs, p.CalculationBasis)
	assert.Equal(t, "2024-06", p.Period)
	assertDecimal(t, "16", p.TotalHours)
	assertDecimal(t, "14", p.RegularHours)
	assertDecimal(t, "2", p.OvertimeHours)
	assertDecimal(t, "1400", p.RegularPay)
	assertDecimal(t, "300", p.OvertimePay)
	assertDecimal(t, "1700", p.GrossPay)
	assertDecimal(t, "170", p.Tax)
	assertDecimal(t, "85", p.StatutoryDeductions)
	assertDecimal(t, "0", p.AttendanceDeduction)
	assertDecimal(t, "85", p.Deductions)
	assertDecimal(t, "1445", p.NetPay)
	assert.ElementsMatch(t, []string{l1.ID, l2.ID}, p.TimeLogIDs)
	assert.Len(t, p.TimeLogSummaries, 2)
	assert.Equal(t, time.Date(2024, 6, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), p.AutoApprovalScheduledAt)
	assert.Equal(t, 20, p.AttendanceSummary.WorkingDays)
	assert.Equal(t, 2, p.AttendanceSummary.WorkedDays)

	// Checkout opened for the net pay.
	assert.Equal(t, payroll.StatusProcessing, p.Status)
	require.NotNil(t, p.CheckoutID)
	require.Len(t, env.gateway.requests, 1)
	assertDecimal(t, "1445", env.gateway.requests[0].Amount)
	assert.Contains(t, env.gateway.requests[0].Description, "Payroll for Ana Cruz - ")
	assert.NotContains(t, env.gateway.requests[0].Description, "\n")

	// Every consumed log is claimed by the new payroll.
	linked, err := env.store.TimeLogs().ListByPayroll(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
	for _, l := range linked {
		require.NotNil(t, l.PayrollLinkedAt)
		assert.Equal(t, env.clock.Now(), *l.PayrollLinkedAt)
	}
}

func TestPayrollService_Generate_IgnoresOtherPeriodsAndOpenLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)
	env.addLog(t, emp.ID, time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC), 8*time.Hour)
	_, err := env.store.TimeLogs().Create(ctx, timelogOpen(emp.ID, juneAt(20, 8)))
	require.NoError(t, err)

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)
	assertDecimal(t, "8", result.Payroll.TotalHours)
	assert.Len(t, result.Payroll.TimeLogIDs, 1)
}

func TestPayrollService_Generate_NoNewLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)

	_, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeNoNewLogs, result.Outcome)
	assert.Nil(t, result.Payroll)

	_, total, err := env.store.Payrolls().List(ctx, payroll.PayrollFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPayrollService_Generate_ManualHoursRequired(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addEmployee("Ana Cruz", "100")

	_, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{EmployeeID: emp.ID})
	assert.ErrorIs(t, err, payroll.ErrManualHoursRequired)
}

func TestPayrollService_Generate_AutoFallsBackToManualHours(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addEmployee("Ana Cruz", "100")

	result, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		ManualHours: decPtr("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.CalculationBasisManual, result.Payroll.CalculationBasis)
	assertDecimal(t, "6", result.Payroll.RegularHours)
	assertDecimal(t, "0", result.Payroll.OvertimeHours)
}

func TestPayrollService_Generate_ManualEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	unclaimed := env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		Mode:        payroll.GenerationModeManual,
		ManualHours: decPtr("40"),
	})
	require.NoError(t, err)

	p := result.Payroll
	assert.Equal(t, payroll.CalculationBasisManual, p.CalculationBasis)
	assert.Equal(t, "Manual entry 2024-06", p.PeriodLabel)
	assertDecimal(t, "40", p.TotalHours)
	assertDecimal(t, "32", p.OvertimeHours)
	assertDecimal(t, "8", p.RegularHours)
	assertDecimal(t, "800", p.RegularPay)
	assertDecimal(t, "4800", p.OvertimePay)
	assertDecimal(t, "5600", p.GrossPay)
	assertDecimal(t, "4760", p.NetPay)
	assert.Empty(t, p.TimeLogIDs)
	assert.Nil(t, p.AttendanceSummary.UnworkedDates)

	// Manual entries never claim logs.
	log, err := env.store.TimeLogs().GetByID(ctx, unclaimed.ID)
	require.NoError(t, err)
	assert.False(t, log.IsClaimed())
}

func TestPayrollService_Generate_HourlyRateMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "0")
	l := env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)

	_, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.ErrorIs(t, err, payroll.ErrHourlyRateMissing)

	_, total, err := env.store.Payrolls().List(ctx, payroll.PayrollFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	log, err := env.store.TimeLogs().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, log.IsClaimed())
}

func TestPayrollService_Generate_EmployeeNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{EmployeeID: "missing"})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestPayrollService_Generate_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{Mode: payroll.GenerationModeManual})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestPayrollService_Generate_CheckoutFailureIsAWarning(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.createErr = errGatewayDown
	emp := env.addEmployee("Ana Cruz", "100")
	env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)

	result, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeCreatedWithWarning, result.Outcome)
	assert.Contains(t, result.Warning, "gateway unavailable")
	assert.Equal(t, payroll.StatusPending, result.Payroll.Status)
	assert.Nil(t, result.Payroll.CheckoutID)

	stored, err := env.store.Payrolls().GetByID(context.Background(), result.Payroll.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPending, stored.Status)
}

func TestPayrollService_Generate_ZeroNetPayStaysPending(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addEmployee("Ana Cruz", "0")

	result, err := env.svc.Generate(context.Background(), payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		Mode:        payroll.GenerationModeManual,
		ManualHours: decPtr("4"),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeCreatedWithWarning, result.Outcome)
	assert.Equal(t, payroll.StatusPending, result.Payroll.Status)
}

func TestPayrollService_Generate_ConcurrentRunsClaimOnce(t *testing.T) {
	env := newTestEnv(t)
	env.svc.gateway = nil
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	env.addLog(t, emp.ID, juneAt(3, 8), 8*time.Hour)
	env.addLog(t, emp.ID, juneAt(4, 8), 8*time.Hour)

	const runs = 8
	var wg sync.WaitGroup
	results := make([]payroll.GenerateResult, runs)
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < runs; i++ {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], payroll.ErrTimeLogsAlreadyClaimed)
			continue
		}
		if results[i].Outcome == payroll.OutcomeNoNewLogs {
			continue
		}
		created++
	}
	assert.Equal(t, 1, created)

	records, total, err := env.store.Payrolls().List(ctx, payroll.PayrollFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	linked, err := env.store.TimeLogs().ListByPayroll(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
}

func (e *testEnv) addAbsence(t *testing.T, employeeID string, day time.Time) timelog.TimeLog {
	t.Helper()
	zero := decimal.Zero
	log, err := e.store.TimeLogs().Create(context.Background(), timelog.TimeLog{
		EmployeeID:    employeeID,
		TimeIn:        day,
		TimeOut:       &day,
		HoursWorked:   &zero,
		OvertimeHours: &zero,
		IsAbsent:      true,
	})
	require.NoError(t, err)
	return log
}

func TestPayrollService_Generate_FallbackDeductsFlaggedAbsences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	absent := env.addAbsence(t, emp.ID, juneAt(5, 0))

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		ManualHours: decPtr("40"),
	})
	require.NoError(t, err)

	p := result.Payroll
	assert.Equal(t, payroll.CalculationBasisManual, p.CalculationBasis)
	assert.Equal(t, 1, p.AttendanceSummary.AbsenceDays)
	assert.Equal(t, []string{"2024-06-05"}, p.AttendanceSummary.AbsenceDates)
	assertDecimal(t, "800", p.AbsenceDeduction)
	assertDecimal(t, "3960", p.NetPay)
	assert.Equal(t, []string{absent.ID}, p.TimeLogIDs)

	log, err := env.store.TimeLogs().GetByID(ctx, absent.ID)
	require.NoError(t, err)
	require.True(t, log.IsClaimed())
	assert.Equal(t, p.ID, *log.PayrollID)

	// The absence is consumed, so the next run has nothing new.
	again, err := env.svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		ManualHours: decPtr("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.OutcomeNoNewLogs, again.Outcome)

	settled, err := env.svc.Settle(ctx, p.ID, payroll.SettleOptions{})
	require.NoError(t, err)
	assert.Equal(t, payroll.CalculationBasisManual, settled.CalculationBasis)
	assertDecimal(t, "800", settled.AbsenceDeduction)
	assertDecimal(t, "3960", settled.NetPay)
}

func TestPayrollService_Generate_ManualModeIgnoresAbsences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee("Ana Cruz", "100")
	absent := env.addAbsence(t, emp.ID, juneAt(5, 0))

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID:  emp.ID,
		Mode:        payroll.GenerationModeManual,
		ManualHours: decPtr("40"),
	})
	require.NoError(t, err)

	p := result.Payroll
	assert.Equal(t, 0, p.AttendanceSummary.AbsenceDays)
	assertDecimal(t, "0", p.AbsenceDeduction)
	assertDecimal(t, "4760", p.NetPay)
	assert.Empty(t, p.TimeLogIDs)

	log, err := env.store.TimeLogs().GetByID(ctx, absent.ID)
	require.NoError(t, err)
	assert.False(t, log.IsClaimed())
}
