package timelog

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func setup(t *testing.T) (*TimeLogServiceImpl, *memory.Store, *testClock, employee.Employee) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)}
	store := memory.NewStore().WithClock(clock.Now)
	emp := store.AddEmployee(employee.Employee{FullName: "Ana Cruz", HourlyRate: decimal.NewFromInt(100)})
	svc := NewTimeLogService(store.TimeLogs(), store.Employees(), store.Payrolls(), time.UTC).WithClock(clock.Now)
	return svc, store, clock, emp
}

func TestTimeLogService_ClockInOut(t *testing.T) {
	svc, _, clock, emp := setup(t)
	ctx := context.Background()

	in, err := svc.ClockIn(ctx, emp.ID)
	require.NoError(t, err)
	assert.Nil(t, in.TimeOut)

	_, err = svc.ClockIn(ctx, emp.ID)
	assert.ErrorIs(t, err, timelog.ErrAlreadyClockedIn)

	active, err := svc.GetActive(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, active.ID)

	clock.t = clock.t.Add(10*time.Hour + 30*time.Minute)
	out, err := svc.ClockOut(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, out.TimeOut)
	assert.Equal(t, "10.5", out.HoursWorked.String())
	assert.Equal(t, "2.5", out.OvertimeHours.String())

	_, err = svc.ClockOut(ctx, emp.ID)
	assert.ErrorIs(t, err, timelog.ErrNotClockedIn)
}

func TestTimeLogService_ClockOutUsesStoredThreshold(t *testing.T) {
	svc, store, clock, emp := setup(t)
	ctx := context.Background()
	_, err := store.Payrolls().UpsertSettings(ctx, payroll.PayrollSettings{MinHoursPerShift: decimal.NewFromInt(6)})
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, emp.ID)
	require.NoError(t, err)
	clock.t = clock.t.Add(7 * time.Hour)

	out, err := svc.ClockOut(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", out.OvertimeHours.String())
}

func TestTimeLogService_ClockInUnknownEmployee(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.ClockIn(context.Background(), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTimeLogService_ListNewestFirst(t *testing.T) {
	svc, _, clock, emp := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ClockIn(ctx, emp.ID)
		require.NoError(t, err)
		clock.t = clock.t.Add(8 * time.Hour)
		_, err = svc.ClockOut(ctx, emp.ID)
		require.NoError(t, err)
		clock.t = clock.t.Add(16 * time.Hour)
	}

	list, err := svc.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Equal(t, 3, list.Total)
	assert.True(t, list.TimeLogs[0].TimeIn.After(list.TimeLogs[1].TimeIn))
	assert.True(t, list.TimeLogs[1].TimeIn.After(list.TimeLogs[2].TimeIn))
}

func TestTimeLogService_Update(t *testing.T) {
	svc, _, clock, emp := setup(t)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, emp.ID)
	require.NoError(t, err)
	clock.t = clock.t.Add(6 * time.Hour)
	out, err := svc.ClockOut(ctx, emp.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, timelog.UpdateTimeLogRequest{ID: out.ID, TimeOut: "2024-06-03T18:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "10", updated.HoursWorked.String())
	assert.Equal(t, "2", updated.OvertimeHours.String())

	_, err = svc.Update(ctx, timelog.UpdateTimeLogRequest{ID: out.ID, TimeOut: "2024-06-03T07:00:00Z"})
	assert.ErrorIs(t, err, timelog.ErrInvalidTimeRange)
}

func TestTimeLogService_UpdateFrozenOncePaid(t *testing.T) {
	svc, store, clock, emp := setup(t)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, emp.ID)
	require.NoError(t, err)
	clock.t = clock.t.Add(8 * time.Hour)
	out, err := svc.ClockOut(ctx, emp.ID)
	require.NoError(t, err)

	record, err := store.Payrolls().Create(ctx, payroll.PayrollRecord{EmployeeID: emp.ID, Status: payroll.StatusPending})
	require.NoError(t, err)
	_, err = store.TimeLogs().ClaimForPayroll(ctx, record.ID, []string{out.ID}, clock.t)
	require.NoError(t, err)

	// Still editable while the payroll is unpaid.
	_, err = svc.Update(ctx, timelog.UpdateTimeLogRequest{ID: out.ID, TimeOut: "2024-06-03T17:00:00Z"})
	require.NoError(t, err)

	record.Status = payroll.StatusPaid
	require.NoError(t, store.Payrolls().Settle(ctx, record))

	_, err = svc.Update(ctx, timelog.UpdateTimeLogRequest{ID: out.ID, TimeOut: "2024-06-03T18:00:00Z"})
	assert.ErrorIs(t, err, timelog.ErrTimeLogClaimed)
}

func TestTimeLogService_MarkAbsent(t *testing.T) {
	svc, _, _, emp := setup(t)
	ctx := context.Background()

	absent, err := svc.MarkAbsent(ctx, timelog.MarkAbsentRequest{EmployeeID: emp.ID, Date: "2024-06-05"})
	require.NoError(t, err)
	assert.True(t, absent.IsAbsent)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), absent.TimeIn)
	require.NotNil(t, absent.TimeOut)
	assert.True(t, absent.HoursWorked.IsZero())

	_, err = svc.MarkAbsent(ctx, timelog.MarkAbsentRequest{EmployeeID: emp.ID, Date: "2024-06-05"})
	assert.ErrorIs(t, err, timelog.ErrAbsenceAlreadyFiled)

	// An absence is not an open shift.
	_, err = svc.GetActive(ctx, emp.ID)
	assert.ErrorIs(t, err, timelog.ErrNotClockedIn)
}
