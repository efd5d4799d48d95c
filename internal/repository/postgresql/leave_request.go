package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
)

type leaveRequestRepositoryImpl struct {
	db  *database.DB
	loc *time.Location
}

// NewLeaveRequestRepository reads DATE columns as midnight in loc so day keys line up with the payroll calendar.
func NewLeaveRequestRepository(db *database.DB, loc *time.Location) leave.LeaveRequestRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &leaveRequestRepositoryImpl{db: db, loc: loc}
}

// ListApprovedInRange implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status, paid, pay_status, created_at, updated_at
		FROM leave_requests
		WHERE employee_id = $1
			AND (status IS NULL OR status = $2)
			AND start_date <= $4::date
			AND COALESCE(end_date, start_date) >= $3::date
		ORDER BY start_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, leave.LeaveRequestStatusApproved,
		period.DayKey(start, r.loc), period.DayKey(end, r.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var (
			lr        leave.LeaveRequest
			startDate time.Time
			endDate   *time.Time
		)
		if err := rows.Scan(
			&lr.ID,
			&lr.EmployeeID,
			&lr.LeaveType,
			&startDate,
			&endDate,
			&lr.Status,
			&lr.Paid,
			&lr.PayStatus,
			&lr.CreatedAt,
			&lr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}

		lr.StartDate = r.localDate(startDate)
		if endDate != nil {
			d := r.localDate(*endDate)
			lr.EndDate = &d
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, nil
}

func (r *leaveRequestRepositoryImpl) localDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, r.loc)
}
