package timelog

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type TimeLogResponse struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	TimeIn          time.Time        `json:"time_in"`
	TimeOut         *time.Time       `json:"time_out"`
	HoursWorked     *decimal.Decimal `json:"hours_worked"`
	OvertimeHours   *decimal.Decimal `json:"overtime_hours"`
	IsAbsent        bool             `json:"is_absent"`
	PayrollID       *string          `json:"payroll_id"`
	PayrollLinkedAt *time.Time       `json:"payroll_linked_at"`
}

type ListTimeLogResponse struct {
	TimeLogs []TimeLogResponse `json:"time_logs"`
	Total    int               `json:"total"`
}

// UpdateTimeLogRequest corrects the clock times of an existing entry.
type UpdateTimeLogRequest struct {
	ID      string `json:"-"`
	TimeIn  string `json:"time_in,omitempty"`
	TimeOut string `json:"time_out,omitempty"`

	ParsedTimeIn  *time.Time `json:"-"`
	ParsedTimeOut *time.Time `json:"-"`
}

func (r *UpdateTimeLogRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.TimeIn == "" && r.TimeOut == "" {
		errs = append(errs, validator.ValidationError{Field: "time_in", Message: "time_in or time_out is required"})
	}
	if r.TimeIn != "" {
		t, ok := validator.IsValidDateTime(r.TimeIn)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "time_in", Message: "must be an ISO8601 timestamp"})
		} else {
			r.ParsedTimeIn = &t
		}
	}
	if r.TimeOut != "" {
		t, ok := validator.IsValidDateTime(r.TimeOut)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "time_out", Message: "must be an ISO8601 timestamp"})
		} else {
			r.ParsedTimeOut = &t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkAbsentRequest struct {
	EmployeeID string `json:"-"`
	Date       string `json:"date"`

	ParsedDate time.Time `json:"-"`
}

func (r *MarkAbsentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "is required"})
	} else if d, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be in YYYY-MM-DD format"})
	} else {
		r.ParsedDate = d
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func ToResponse(l TimeLog) TimeLogResponse {
	return TimeLogResponse{
		ID:              l.ID,
		EmployeeID:      l.EmployeeID,
		TimeIn:          l.TimeIn,
		TimeOut:         l.TimeOut,
		HoursWorked:     l.HoursWorked,
		OvertimeHours:   l.OvertimeHours,
		IsAbsent:        l.IsAbsent,
		PayrollID:       l.PayrollID,
		PayrollLinkedAt: l.PayrollLinkedAt,
	}
}
