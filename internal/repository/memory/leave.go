package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

// AddLeaveRequest seeds a leave request owned by the external leave system.
func (s *Store) AddLeaveRequest(l leave.LeaveRequest) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = newID()
	}
	now := s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	s.leaveRequests[l.ID] = l
	return l
}

func (r *leaveRequestRepository) ListApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []leave.LeaveRequest{}
	for _, l := range r.s.leaveRequests {
		if l.EmployeeID != employeeID || !l.CountsAsApproved() {
			continue
		}
		if l.StartDate.After(end) || l.End().Before(start) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
