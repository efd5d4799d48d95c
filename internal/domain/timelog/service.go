package timelog

import "context"

// TimeLogService covers clock-in/clock-out bookkeeping feeding the payroll engine.
type TimeLogService interface {
	ClockIn(ctx context.Context, employeeID string) (TimeLogResponse, error)
	ClockOut(ctx context.Context, employeeID string) (TimeLogResponse, error)

	// GetActive returns the employee's open entry, or ErrNotClockedIn.
	GetActive(ctx context.Context, employeeID string) (TimeLogResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) (ListTimeLogResponse, error)

	// Update corrects clock times and recomputes derived hours (admin).
	Update(ctx context.Context, req UpdateTimeLogRequest) (TimeLogResponse, error)
	MarkAbsent(ctx context.Context, req MarkAbsentRequest) (TimeLogResponse, error)
}
