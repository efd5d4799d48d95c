package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildTimeLogSummaries(t *testing.T) {
	in := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	withRate := completedLog("a", in, 10*time.Hour)
	customRate := completedLog("b", in.AddDate(0, 0, 1).Add(30*time.Minute), 6*time.Hour+15*time.Second)
	customRate.HourlyRate = decPtr("120.5")
	open := timelog.TimeLog{ID: "open", TimeIn: in}

	got := BuildTimeLogSummaries([]timelog.TimeLog{withRate, customRate, open}, dec("100"), time.UTC)

	assert.Equal(t, []string{
		"06/03/2024\n8:00:00 AM - 6:00:00 PM 100/hr",
		"06/04/2024\n8:30:00 AM - 2:30:15 PM 120.5/hr",
	}, got)
}

func TestBuildTimeLogSummaries_NoRate(t *testing.T) {
	l := completedLog("a", time.Date(2024, time.June, 3, 13, 5, 9, 0, time.UTC), time.Hour)
	got := BuildTimeLogSummaries([]timelog.TimeLog{l}, decimal.Zero, time.UTC)
	assert.Equal(t, []string{"06/03/2024\n1:05:09 PM - 2:05:09 PM"}, got)
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2024-06", PeriodLabel(nil, "2024-06"))
	assert.Equal(t, "a\n\nb", PeriodLabel([]string{"a", "b"}, "2024-06"))
}
