package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollService_Settings_DefaultAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	got, err := env.svc.GetSettings(ctx)
	require.NoError(t, err)
	assertDecimal(t, "8", got.MinHoursPerShift)
	assert.Nil(t, got.UpdatedAt)

	updated, err := env.svc.UpdateSettings(ctx, payroll.UpdatePayrollSettingsRequest{MinHoursPerShift: decPtr("6")})
	require.NoError(t, err)
	assertDecimal(t, "6", updated.MinHoursPerShift)
	require.NotNil(t, updated.UpdatedAt)

	// An empty update keeps the stored value.
	updated, err = env.svc.UpdateSettings(ctx, payroll.UpdatePayrollSettingsRequest{})
	require.NoError(t, err)
	assertDecimal(t, "6", updated.MinHoursPerShift)
}

func TestPayrollService_Settings_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateSettings(context.Background(), payroll.UpdatePayrollSettingsRequest{MinHoursPerShift: decPtr("0")})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "min_hours_per_shift", verrs[0].Field)
}

func TestPayrollService_Settings_ThresholdAppliesToGeneration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.UpdateSettings(ctx, payroll.UpdatePayrollSettingsRequest{MinHoursPerShift: decPtr("6")})
	require.NoError(t, err)

	emp := env.addEmployee("Ana Cruz", "100")
	env.addLog(t, emp.ID, juneAt(3, 8), 10*time.Hour)
	env.addLog(t, emp.ID, juneAt(4, 8), 6*time.Hour)

	result, err := env.svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: emp.ID})
	require.NoError(t, err)
	assertDecimal(t, "4", result.Payroll.OvertimeHours)
	assertDecimal(t, "12", result.Payroll.RegularHours)
	assertDecimal(t, "1800", result.Payroll.GrossPay)
}

func TestPayrollService_ListByEmployee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, _ := generateFromLogs(t, env)
	other := env.addEmployee("Ben Reyes", "100")

	list, err := env.svc.ListByEmployee(ctx, p.EmployeeID)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, p.ID, list.Data[0].ID)

	list, err = env.svc.ListByEmployee(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	_, err = env.svc.ListByEmployee(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestPayrollService_List_FilterValidation(t *testing.T) {
	env := newTestEnv(t)
	bad := "2024-13"

	_, err := env.svc.List(context.Background(), payroll.PayrollFilter{Period: &bad})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "period", verrs[0].Field)
}

func TestPayrollService_CheckoutStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, _ := generateFromLogs(t, env)

	paidAt := env.clock.Now()
	env.gateway.state = payment.CheckoutState{
		Status:   payment.CheckoutStatusPaid,
		PaidAt:   &paidAt,
		Amount:   dec("1445"),
		Currency: "PHP",
	}

	status, err := env.svc.CheckoutStatus(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p.CheckoutID, status.CheckoutID)
	assert.Equal(t, "paid", status.Status)
	assertDecimal(t, "1445", status.Amount)

	// The funding payment is recorded but does not settle the payroll.
	stored, err := env.store.Payrolls().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckoutStatus)
	assert.Equal(t, "paid", *stored.CheckoutStatus)
	assert.Equal(t, payroll.StatusProcessing, stored.Status)
}

func TestPayrollService_CheckoutStatus_NoCheckout(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.createErr = errGatewayDown
	p, _ := generateFromLogs(t, env)

	_, err := env.svc.CheckoutStatus(context.Background(), p.ID)
	assert.ErrorIs(t, err, payroll.ErrCheckoutNotCreated)
}

func TestPayrollService_RecordCheckoutEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, _ := generateFromLogs(t, env)

	err := env.svc.RecordCheckoutEvent(ctx, payroll.CheckoutEventRequest{CheckoutID: *p.CheckoutID, Status: " EXPIRED "})
	require.NoError(t, err)

	stored, err := env.store.Payrolls().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", *stored.CheckoutStatus)

	err = env.svc.RecordCheckoutEvent(ctx, payroll.CheckoutEventRequest{CheckoutID: "unknown", Status: "paid"})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollService_MetricsRecorded(t *testing.T) {
	env := newTestEnv(t)
	p, _ := generateFromLogs(t, env)
	_, err := env.svc.Settle(context.Background(), p.ID, payroll.SettleOptions{})
	require.NoError(t, err)

	families, err := env.metrics.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["payroll_generations_total"])
	assert.True(t, names["payroll_settlements_total"])
}
