package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// Metrics is the hour breakdown of a set of time logs.
type Metrics struct {
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	RelevantLogs  []timelog.TimeLog
}

// Aggregator turns raw time logs into total, regular and overtime hours.
type Aggregator struct {
	loc *time.Location
}

func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc}
}

// Aggregate sums the completed logs. When periodKey is non-empty only logs whose clock-in falls in
// that calendar month count. Each entry is rounded to cents before it is added.
func (a *Aggregator) Aggregate(logs []timelog.TimeLog, periodKey string, minHours decimal.Decimal) Metrics {
	threshold := minHours
	if !threshold.IsPositive() {
		threshold = decimal.NewFromInt(payroll.DefaultMinHoursPerShift)
	}

	relevant := make([]timelog.TimeLog, 0, len(logs))
	for _, l := range logs {
		if !l.IsComplete() {
			continue
		}
		if periodKey != "" && period.Key(l.TimeIn, a.loc) != periodKey {
			continue
		}
		relevant = append(relevant, l)
	}

	total := decimal.Zero
	overtime := decimal.Zero
	for _, l := range relevant {
		hours := money.Round(l.Hours())
		total = total.Add(hours)

		if l.OvertimeHours != nil {
			overtime = overtime.Add(money.Round(*l.OvertimeHours))
		} else {
			overtime = overtime.Add(timelog.OvertimeFor(hours, threshold))
		}
	}

	total = money.Round(total)
	overtime = money.Round(overtime)

	return Metrics{
		TotalHours:    total,
		OvertimeHours: overtime,
		RegularHours:  money.Round(money.NonNegative(total.Sub(overtime))),
		RelevantLogs:  relevant,
	}
}

// SplitManualHours applies the per-shift overtime threshold to a manually entered hour figure.
func SplitManualHours(hours, minHours decimal.Decimal) Metrics {
	threshold := minHours
	if !threshold.IsPositive() {
		threshold = decimal.NewFromInt(payroll.DefaultMinHoursPerShift)
	}

	total := money.Round(hours)
	overtime := timelog.OvertimeFor(total, threshold)
	return Metrics{
		TotalHours:    total,
		OvertimeHours: overtime,
		RegularHours:  money.Round(money.NonNegative(total.Sub(overtime))),
		RelevantLogs:  []timelog.TimeLog{},
	}
}
