package attendance

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// AdjustmentInput is one employee's period, rate and candidate logs for a deduction run.
type AdjustmentInput struct {
	EmployeeID string
	Period     string
	MinHours   decimal.Decimal
	HourlyRate decimal.Decimal
	Logs       []timelog.TimeLog

	// TreatUnworkedDaysAsAbsence fills AttendanceSummary.UnworkedDates. It does not change
	// the absence count, which always comes from logs flagged absent.
	TreatUnworkedDaysAsAbsence bool
}

// AdjustmentCalculator prices absences and unpaid leave within a pay period.
type AdjustmentCalculator struct {
	leaveRepo leave.LeaveRequestRepository
	loc       *time.Location
	now       func() time.Time
}

func NewAdjustmentCalculator(leaveRepo leave.LeaveRequestRepository, loc *time.Location, now func() time.Time) *AdjustmentCalculator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &AdjustmentCalculator{leaveRepo: leaveRepo, loc: loc, now: now}
}

// Calculate classifies the period's business days and prices absences and unpaid leave.
func (c *AdjustmentCalculator) Calculate(ctx context.Context, in AdjustmentInput) payroll.AttendanceSummary {
	rng := period.RangeOf(in.Period, c.now(), c.loc)
	businessDays := period.BusinessDayKeys(rng.Start, rng.End, c.loc)

	shiftHours := in.MinHours
	if !shiftHours.IsPositive() {
		shiftHours = decimal.NewFromInt(payroll.DefaultMinHoursPerShift)
	}
	dailyRate := money.Round(in.HourlyRate.Mul(shiftHours))

	summary := payroll.AttendanceSummary{
		PaidLeaveDates:           []string{},
		UnpaidLeaveDates:         []string{},
		AbsenceDates:             []string{},
		WorkingDays:              len(businessDays),
		DailyRate:                dailyRate,
		AbsenceDeduction:         decimal.Zero,
		LeaveDeduction:           decimal.Zero,
		TotalAttendanceDeduction: decimal.Zero,
		PeriodRange:              rng,
	}

	if len(businessDays) == 0 || !in.HourlyRate.IsPositive() {
		return summary
	}

	businessSet := toSet(businessDays)
	loggedDays := map[string]struct{}{}
	absentDays := map[string]struct{}{}
	for _, l := range in.Logs {
		if l.TimeIn.IsZero() || !rng.Contains(l.TimeIn) {
			continue
		}
		key := period.DayKey(l.TimeIn, c.loc)
		if l.IsAbsent {
			absentDays[key] = struct{}{}
		} else {
			loggedDays[key] = struct{}{}
		}
	}

	workedDays := map[string]struct{}{}
	for key := range loggedDays {
		if _, ok := businessSet[key]; ok {
			workedDays[key] = struct{}{}
		}
	}

	leaves, err := c.leaveRepo.ListApprovedInRange(ctx, in.EmployeeID, rng.Start, rng.End)
	if err != nil {
		slog.Warn("Failed to load approved leave, assuming none", "employee_id", in.EmployeeID, "period", in.Period, "error", err)
		leaves = nil
	}

	paidLeave := map[string]struct{}{}
	unpaidLeave := map[string]struct{}{}
	for _, lr := range leaves {
		if !lr.CountsAsApproved() {
			continue
		}
		paid := lr.IsPaidLeave()
		for _, key := range lr.BusinessDayKeys(rng, c.loc) {
			if _, ok := businessSet[key]; !ok {
				continue
			}
			if _, ok := workedDays[key]; ok {
				continue
			}
			if paid {
				paidLeave[key] = struct{}{}
			} else {
				unpaidLeave[key] = struct{}{}
			}
		}
	}

	if in.TreatUnworkedDaysAsAbsence {
		unworked := []string{}
		for _, key := range businessDays {
			_, worked := workedDays[key]
			_, paid := paidLeave[key]
			_, unpaid := unpaidLeave[key]
			if !worked && !paid && !unpaid {
				unworked = append(unworked, key)
			}
		}
		summary.UnworkedDates = unworked
	}

	summary.PaidLeaveDates = sortedKeys(paidLeave)
	summary.UnpaidLeaveDates = sortedKeys(unpaidLeave)
	summary.AbsenceDates = sortedKeys(absentDays)
	summary.PaidLeaveDays = len(paidLeave)
	summary.UnpaidLeaveDays = len(unpaidLeave)
	summary.AbsenceDays = len(absentDays)
	summary.WorkedDays = len(workedDays)

	summary.AbsenceDeduction = money.Round(decimal.NewFromInt(int64(len(absentDays))).Mul(dailyRate))
	summary.LeaveDeduction = money.Round(decimal.NewFromInt(int64(len(unpaidLeave))).Mul(dailyRate))
	summary.TotalAttendanceDeduction = money.Sum(summary.AbsenceDeduction, summary.LeaveDeduction)

	return summary
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
