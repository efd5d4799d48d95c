package timelog

import "errors"

var (
	ErrTimeLogNotFound     = errors.New("time log not found")
	ErrAlreadyClockedIn    = errors.New("employee is already clocked in")
	ErrNotClockedIn        = errors.New("employee has no open time log")
	ErrTimeLogClaimed      = errors.New("time log is already linked to a paid payroll")
	ErrInvalidTimeRange    = errors.New("time out must be after time in")
	ErrEmployeeIDMissing   = errors.New("employee_id claim is missing from token")
	ErrAbsenceAlreadyFiled = errors.New("absence already recorded for this date")
)
