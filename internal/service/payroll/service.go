package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ledgerLoadConcurrency bounds parallel leave-payment lookups when listing payrolls.
const ledgerLoadConcurrency = 8

type PayrollServiceImpl struct {
	tx               database.Transactor
	payrollRepo      payroll.PayrollRepository
	employeeRepo     employee.EmployeeRepository
	timeLogRepo      timelog.TimeLogRepository
	leavePaymentRepo leavepayment.LeavePaymentRepository
	leaveRepo        leave.LeaveRequestRepository
	gateway          payment.Gateway
	locker           lock.Locker
	metrics          *metrics.Metrics

	loc         *time.Location
	now         func() time.Time
	lockTTL     time.Duration
	aggregator  *attendance.Aggregator
	adjustments *attendance.AdjustmentCalculator
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	timeLogRepo timelog.TimeLogRepository,
	leavePaymentRepo leavepayment.LeavePaymentRepository,
	leaveRepo leave.LeaveRequestRepository,
	gateway payment.Gateway,
	locker lock.Locker,
	m *metrics.Metrics,
	loc *time.Location,
) *PayrollServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	s := &PayrollServiceImpl{
		tx:               tx,
		payrollRepo:      payrollRepo,
		employeeRepo:     employeeRepo,
		timeLogRepo:      timeLogRepo,
		leavePaymentRepo: leavePaymentRepo,
		leaveRepo:        leaveRepo,
		gateway:          gateway,
		locker:           locker,
		metrics:          m,
		loc:              loc,
		lockTTL:          lock.DefaultTTL,
	}
	return s.WithClock(time.Now)
}

// WithClock replaces the time source, for tests and replays.
func (s *PayrollServiceImpl) WithClock(now func() time.Time) *PayrollServiceImpl {
	s.now = now
	s.aggregator = attendance.NewAggregator(s.loc)
	s.adjustments = attendance.NewAdjustmentCalculator(s.leaveRepo, s.loc, now)
	return s
}

// WithLockTTL bounds how long a crashed settlement can hold a payroll's lock.
func (s *PayrollServiceImpl) WithLockTTL(ttl time.Duration) *PayrollServiceImpl {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// ========== SETTINGS ==========

// loadSettings returns the stored settings or the defaults when none were saved yet.
func (s *PayrollServiceImpl) loadSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx)
	if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
		return payroll.DefaultSettings(), nil
	}
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to load payroll settings: %w", err)
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.PayrollSettingsResponse, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	return mapSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdatePayrollSettingsRequest) (payroll.PayrollSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	if req.MinHoursPerShift != nil {
		settings.MinHoursPerShift = *req.MinHoursPerShift
	}

	saved, err := s.payrollRepo.UpsertSettings(ctx, settings)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, fmt.Errorf("failed to save payroll settings: %w", err)
	}
	slog.Info("Payroll settings updated", "min_hours_per_shift", saved.MinHoursPerShift.String())

	return mapSettingsResponse(saved), nil
}

func mapSettingsResponse(settings payroll.PayrollSettings) payroll.PayrollSettingsResponse {
	resp := payroll.PayrollSettingsResponse{MinHoursPerShift: settings.ShiftHours()}
	if !settings.UpdatedAt.IsZero() {
		updatedAt := settings.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// ========== PAYROLL RECORDS ==========

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return mapToResponse(record, s.ledgerTotal(ctx, record)), nil
}

// List settles anything that has come due, then returns the requested page.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) ListByEmployee(ctx context.Context, employeeID string) (payroll.ListPayrollResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.ListPayrollResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.ListPayrollResponse{}, err
	}
	return s.list(ctx, payroll.PayrollFilter{EmployeeID: &employeeID, Page: 1})
}

func (s *PayrollServiceImpl) list(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	sweep, err := s.SweepDue(ctx)
	if err != nil {
		slog.Warn("Auto-settlement sweep failed", "error", err)
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	totals := make([]decimal.Decimal, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ledgerLoadConcurrency)
	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			totals[i] = s.ledgerTotal(gctx, record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	data := make([]payroll.PayrollResponse, 0, len(records))
	for i, record := range records {
		data = append(data, mapToResponse(record, totals[i]))
	}

	return payroll.ListPayrollResponse{
		Data:        data,
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		AutoSettled: len(sweep.Settled),
	}, nil
}

// ledgerTotal sums the leave payments attached to record. Lookup failures count as zero.
func (s *PayrollServiceImpl) ledgerTotal(ctx context.Context, record payroll.PayrollRecord) decimal.Decimal {
	payments, err := s.leavePaymentRepo.ListByEmployeeAndPayroll(ctx, record.EmployeeID, record.ID)
	if err != nil {
		slog.Warn("Failed to load leave payments", "payroll_id", record.ID, "error", err)
		return decimal.Zero
	}
	return leavepayment.Total(payments)
}

func mapToResponse(r payroll.PayrollRecord, ledgerTotal decimal.Decimal) payroll.PayrollResponse {
	projected := r.NetPay
	if r.Status != payroll.StatusPaid {
		projected = money.Sum(r.NetPay, ledgerTotal)
	}

	timeLogIDs := r.TimeLogIDs
	if timeLogIDs == nil {
		timeLogIDs = []string{}
	}
	summaries := r.TimeLogSummaries
	if summaries == nil {
		summaries = []string{}
	}

	return payroll.PayrollResponse{
		ID:                      r.ID,
		EmployeeID:              r.EmployeeID,
		EmployeeName:            r.EmployeeName,
		Period:                  r.Period,
		PeriodLabel:             r.PeriodLabel,
		CalculationBasis:        r.CalculationBasis,
		TotalHours:              r.TotalHours,
		RegularHours:            r.RegularHours,
		OvertimeHours:           r.OvertimeHours,
		HourlyRate:              r.HourlyRate,
		RegularPay:              r.RegularPay,
		OvertimePay:             r.OvertimePay,
		GrossPay:                r.GrossPay,
		Tax:                     r.Tax,
		StatutoryDeductions:     r.StatutoryDeductions,
		AbsenceDeduction:        r.AbsenceDeduction,
		LeaveDeduction:          r.LeaveDeduction,
		AttendanceDeduction:     r.AttendanceDeduction,
		Deductions:              r.Deductions,
		NetPay:                  r.NetPay,
		LeavePaymentTotal:       ledgerTotal,
		ProjectedNetPay:         projected,
		Status:                  r.Status,
		TimeLogIDs:              timeLogIDs,
		TimeLogSummaries:        summaries,
		AttendanceSummary:       r.AttendanceSummary,
		AutoApprovalScheduledAt: r.AutoApprovalScheduledAt,
		AutoApproved:            r.AutoApproved,
		AutoApprovedAt:          r.AutoApprovedAt,
		PaidAt:                  r.PaidAt,
		CheckoutID:              r.CheckoutID,
		CheckoutURL:             r.CheckoutURL,
		CheckoutStatus:          r.CheckoutStatus,
		GeneratedAt:             r.GeneratedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}
