package timelog

import (
	"context"
	"time"
)

type TimeLogRepository interface {
	Create(ctx context.Context, log TimeLog) (TimeLog, error)
	GetByID(ctx context.Context, id string) (TimeLog, error)
	GetOpenByEmployee(ctx context.Context, employeeID string) (TimeLog, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]TimeLog, error)
	ListByPayroll(ctx context.Context, payrollID string) ([]TimeLog, error)
	Update(ctx context.Context, log TimeLog) error

	// ClaimForPayroll links the given logs to payrollID, skipping any already claimed.
	// It returns the IDs that were actually claimed by this call.
	ClaimForPayroll(ctx context.Context, payrollID string, ids []string, linkedAt time.Time) ([]string, error)
}
