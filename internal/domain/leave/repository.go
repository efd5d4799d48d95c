package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApprovedInRange returns approved (or status-less) requests for the employee that overlap [start, end].
	ListApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
}
