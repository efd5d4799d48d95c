package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// LeaveRequest is owned by the leave-management system and read-only here.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  string

	StartDate time.Time
	EndDate   *time.Time // nil for single-day leave

	// Status is nil for legacy records that predate approval tracking; those count as approved.
	Status *LeaveRequestStatus

	// Pay classification signals, consulted in this order.
	Paid      *bool
	PayStatus *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	unpaidKeywords   = []string{"unpaid", "lwop", "without pay"}
	paidCategoryKeys = []string{"vacation", "sick", "maternity", "paternity", "bereavement", "emergency"}
)

// CountsAsApproved reports whether the request should be honoured by payroll.
func (l LeaveRequest) CountsAsApproved() bool {
	return l.Status == nil || *l.Status == LeaveRequestStatusApproved
}

// IsPaidLeave classifies the leave as paid or unpaid. An explicit flag wins, then the pay status
// text, then keywords in the leave type label. Anything unrecognised is unpaid.
func (l LeaveRequest) IsPaidLeave() bool {
	if l.Paid != nil {
		return *l.Paid
	}

	if l.PayStatus != nil {
		status := strings.ToLower(*l.PayStatus)
		switch {
		case strings.Contains(status, "unpaid"), strings.Contains(status, "without"):
			return false
		case strings.Contains(status, "paid"):
			return true
		}
	}

	label := strings.ToLower(strings.TrimSpace(l.LeaveType))
	if label == "" {
		return false
	}
	if containsAny(label, unpaidKeywords) {
		return false
	}
	if strings.Contains(label, "paid") {
		return true
	}
	return containsAny(label, paidCategoryKeys)
}

// End returns the last day covered by the request.
func (l LeaveRequest) End() time.Time {
	if l.EndDate != nil && !l.EndDate.IsZero() {
		return *l.EndDate
	}
	return l.StartDate
}

// BusinessDayKeys returns the weekday keys the request covers inside r.
func (l LeaveRequest) BusinessDayKeys(r period.Range, loc *time.Location) []string {
	if l.StartDate.IsZero() {
		return nil
	}

	start := l.StartDate
	if start.Before(r.Start) {
		start = r.Start
	}
	end := l.End()
	if end.After(r.End) {
		end = r.End
	}
	if end.Before(start) {
		return nil
	}
	return period.BusinessDayKeys(start, end, loc)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
