package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/shopspring/decimal"
)

// BuildTimeLogSummaries renders one line pair per completed log:
//
//	06/03/2024
//	8:00:00 AM - 6:00:00 PM 100/hr
func BuildTimeLogSummaries(logs []timelog.TimeLog, defaultRate decimal.Decimal, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}

	summaries := make([]string, 0, len(logs))
	for _, l := range logs {
		if !l.IsComplete() {
			continue
		}

		rate := defaultRate
		if l.HourlyRate != nil && !l.HourlyRate.IsZero() {
			rate = *l.HourlyRate
		}

		in := l.TimeIn.In(loc)
		out := l.TimeOut.In(loc)
		line := fmt.Sprintf("%s\n%s - %s", in.Format("01/02/2006"), in.Format("3:04:05 PM"), out.Format("3:04:05 PM"))
		if !rate.IsZero() {
			line += fmt.Sprintf(" %s/hr", rate.String())
		}
		summaries = append(summaries, line)
	}
	return summaries
}

// PeriodLabel joins the summaries with blank lines, falling back to the period key.
func PeriodLabel(summaries []string, fallback string) string {
	if len(summaries) == 0 {
		return fallback
	}
	return strings.Join(summaries, "\n\n")
}
