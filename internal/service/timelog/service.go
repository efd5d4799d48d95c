package timelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

type TimeLogServiceImpl struct {
	timeLogRepo  timelog.TimeLogRepository
	employeeRepo employee.EmployeeRepository
	payrollRepo  payroll.PayrollRepository
	loc          *time.Location
	now          func() time.Time
}

func NewTimeLogService(
	timeLogRepo timelog.TimeLogRepository,
	employeeRepo employee.EmployeeRepository,
	payrollRepo payroll.PayrollRepository,
	loc *time.Location,
) *TimeLogServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	return &TimeLogServiceImpl{
		timeLogRepo:  timeLogRepo,
		employeeRepo: employeeRepo,
		payrollRepo:  payrollRepo,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *TimeLogServiceImpl) WithClock(now func() time.Time) *TimeLogServiceImpl {
	s.now = now
	return s
}

func (s *TimeLogServiceImpl) shiftHours(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.payrollRepo.GetSettings(ctx)
	if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
		return payroll.DefaultSettings().ShiftHours(), nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load payroll settings: %w", err)
	}
	return settings.ShiftHours(), nil
}

// derive fills hours worked and overtime for a completed entry.
func derive(log *timelog.TimeLog, minHours decimal.Decimal) {
	if !log.IsComplete() {
		log.HoursWorked = nil
		log.OvertimeHours = nil
		return
	}
	hours := money.Round(timelog.HoursBetween(log.TimeIn, *log.TimeOut))
	overtime := timelog.OvertimeFor(hours, minHours)
	log.HoursWorked = &hours
	log.OvertimeHours = &overtime
}

func (s *TimeLogServiceImpl) ClockIn(ctx context.Context, employeeID string) (timelog.TimeLogResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	if _, err := s.timeLogRepo.GetOpenByEmployee(ctx, emp.ID); err == nil {
		return timelog.TimeLogResponse{}, timelog.ErrAlreadyClockedIn
	} else if !errors.Is(err, timelog.ErrNotClockedIn) {
		return timelog.TimeLogResponse{}, err
	}

	rate := emp.HourlyRate
	created, err := s.timeLogRepo.Create(ctx, timelog.TimeLog{
		EmployeeID: emp.ID,
		TimeIn:     s.now(),
		HourlyRate: &rate,
	})
	if err != nil {
		return timelog.TimeLogResponse{}, fmt.Errorf("failed to clock in: %w", err)
	}

	slog.Info("Employee clocked in", "employee_id", emp.ID, "time_log_id", created.ID)
	return timelog.ToResponse(created), nil
}

func (s *TimeLogServiceImpl) ClockOut(ctx context.Context, employeeID string) (timelog.TimeLogResponse, error) {
	open, err := s.timeLogRepo.GetOpenByEmployee(ctx, employeeID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	minHours, err := s.shiftHours(ctx)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	out := s.now()
	if out.Before(open.TimeIn) {
		return timelog.TimeLogResponse{}, timelog.ErrInvalidTimeRange
	}
	open.TimeOut = &out
	derive(&open, minHours)

	if err := s.timeLogRepo.Update(ctx, open); err != nil {
		return timelog.TimeLogResponse{}, fmt.Errorf("failed to clock out: %w", err)
	}

	slog.Info("Employee clocked out", "employee_id", employeeID, "time_log_id", open.ID, "hours", open.HoursWorked.String())
	return timelog.ToResponse(open), nil
}

func (s *TimeLogServiceImpl) GetActive(ctx context.Context, employeeID string) (timelog.TimeLogResponse, error) {
	open, err := s.timeLogRepo.GetOpenByEmployee(ctx, employeeID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}
	return timelog.ToResponse(open), nil
}

func (s *TimeLogServiceImpl) ListByEmployee(ctx context.Context, employeeID string) (timelog.ListTimeLogResponse, error) {
	logs, err := s.timeLogRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return timelog.ListTimeLogResponse{}, fmt.Errorf("failed to list time logs: %w", err)
	}

	resp := make([]timelog.TimeLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, timelog.ToResponse(l))
	}
	return timelog.ListTimeLogResponse{TimeLogs: resp, Total: len(resp)}, nil
}

// Update corrects clock times. Entries linked to an unpaid payroll stay editable and the change
// flows into that payroll at settlement; entries of a paid payroll are frozen.
func (s *TimeLogServiceImpl) Update(ctx context.Context, req timelog.UpdateTimeLogRequest) (timelog.TimeLogResponse, error) {
	if err := req.Validate(); err != nil {
		return timelog.TimeLogResponse{}, err
	}

	log, err := s.timeLogRepo.GetByID(ctx, req.ID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	if log.IsClaimed() {
		record, err := s.payrollRepo.GetByID(ctx, *log.PayrollID)
		if err != nil && !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return timelog.TimeLogResponse{}, err
		}
		if err == nil && record.Status == payroll.StatusPaid {
			return timelog.TimeLogResponse{}, timelog.ErrTimeLogClaimed
		}
	}

	if req.ParsedTimeIn != nil {
		log.TimeIn = *req.ParsedTimeIn
	}
	if req.ParsedTimeOut != nil {
		out := *req.ParsedTimeOut
		log.TimeOut = &out
	}
	if log.TimeOut != nil && log.TimeOut.Before(log.TimeIn) {
		return timelog.TimeLogResponse{}, timelog.ErrInvalidTimeRange
	}

	minHours, err := s.shiftHours(ctx)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}
	if !log.IsAbsent {
		derive(&log, minHours)
	}

	if err := s.timeLogRepo.Update(ctx, log); err != nil {
		return timelog.TimeLogResponse{}, fmt.Errorf("failed to update time log: %w", err)
	}

	slog.Info("Time log corrected", "time_log_id", log.ID, "employee_id", log.EmployeeID)
	return timelog.ToResponse(log), nil
}

// MarkAbsent records a zero-length absence entry for the given day.
func (s *TimeLogServiceImpl) MarkAbsent(ctx context.Context, req timelog.MarkAbsentRequest) (timelog.TimeLogResponse, error) {
	if err := req.Validate(); err != nil {
		return timelog.TimeLogResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	day := time.Date(req.ParsedDate.Year(), req.ParsedDate.Month(), req.ParsedDate.Day(), 0, 0, 0, 0, s.loc)
	dayKey := period.DayKey(day, s.loc)

	logs, err := s.timeLogRepo.ListByEmployee(ctx, emp.ID)
	if err != nil {
		return timelog.TimeLogResponse{}, fmt.Errorf("failed to list time logs: %w", err)
	}
	for _, l := range logs {
		if l.IsAbsent && period.DayKey(l.TimeIn, s.loc) == dayKey {
			return timelog.TimeLogResponse{}, timelog.ErrAbsenceAlreadyFiled
		}
	}

	zero := decimal.Zero
	out := day
	created, err := s.timeLogRepo.Create(ctx, timelog.TimeLog{
		EmployeeID:    emp.ID,
		TimeIn:        day,
		TimeOut:       &out,
		HoursWorked:   &zero,
		OvertimeHours: &zero,
		IsAbsent:      true,
	})
	if err != nil {
		return timelog.TimeLogResponse{}, fmt.Errorf("failed to record absence: %w", err)
	}

	slog.Info("Absence recorded", "employee_id", emp.ID, "date", dayKey)
	return timelog.ToResponse(created), nil
}
