package payroll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu        sync.Mutex
	requests  []payment.CheckoutRequest
	createErr error
	state     payment.CheckoutState
	fetchErr  error
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createErr != nil {
		return payment.Checkout{}, g.createErr
	}
	if req.Amount.LessThan(payment.MinimumAmount) {
		return payment.Checkout{}, payment.ErrAmountBelowMinimum
	}
	g.requests = append(g.requests, req)
	id := "inv-" + req.Reference
	return payment.Checkout{ID: id, CheckoutURL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) FetchCheckoutStatus(ctx context.Context, id string) (payment.CheckoutState, error) {
	if g.fetchErr != nil {
		return payment.CheckoutState{}, g.fetchErr
	}
	state := g.state
	state.ID = id
	return state, nil
}

// clock is a settable time source shared by the store and the service.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testEnv struct {
	store   *memory.Store
	svc     *PayrollServiceImpl
	gateway *fakeGateway
	clock   *clock
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	c := &clock{t: time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)}
	store := memory.NewStore().WithClock(c.Now)
	gw := &fakeGateway{}
	m := metrics.New()

	svc := NewPayrollService(
		store,
		store.Payrolls(),
		store.Employees(),
		store.TimeLogs(),
		store.LeavePayments(),
		store.LeaveRequests(),
		gw,
		lock.NewLocalLocker(),
		m,
		time.UTC,
	).WithClock(c.Now)

	return &testEnv{store: store, svc: svc, gateway: gw, clock: c, metrics: m}
}

func (e *testEnv) addEmployee(name string, rate string) employee.Employee {
	return e.store.AddEmployee(employee.Employee{
		FullName:   name,
		Email:      "employee@example.com",
		HourlyRate: decimal.RequireFromString(rate),
	})
}

func (e *testEnv) addLog(t *testing.T, employeeID string, in time.Time, d time.Duration) timelog.TimeLog {
	t.Helper()
	out := in.Add(d)
	log, err := e.store.TimeLogs().Create(context.Background(), timelog.TimeLog{
		EmployeeID: employeeID,
		TimeIn:     in,
		TimeOut:    &out,
	})
	require.NoError(t, err)
	return log
}

func juneAt(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

var errGatewayDown = errors.New("gateway unavailable")

func timelogOpen(employeeID string, in time.Time) timelog.TimeLog {
	return timelog.TimeLog{EmployeeID: employeeID, TimeIn: in}
}
