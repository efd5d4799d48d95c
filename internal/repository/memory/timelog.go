package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
)

type timeLogRepository struct {
	s *Store
}

func (r *timeLogRepository) Create(ctx context.Context, log timelog.TimeLog) (timelog.TimeLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if log.ID == "" {
		log.ID = newID()
	}
	now := r.s.now()
	log.CreatedAt, log.UpdatedAt = now, now
	r.s.timeLogs[log.ID] = log
	return log, nil
}

func (r *timeLogRepository) GetByID(ctx context.Context, id string) (timelog.TimeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	log, ok := r.s.timeLogs[id]
	if !ok {
		return timelog.TimeLog{}, timelog.ErrTimeLogNotFound
	}
	return log, nil
}

func (r *timeLogRepository) GetOpenByEmployee(ctx context.Context, employeeID string) (timelog.TimeLog, error) {
	logs, _ := r.ListByEmployee(ctx, employeeID)
	for _, l := range logs {
		if l.IsOpen() && !l.IsAbsent {
			return l, nil
		}
	}
	return timelog.TimeLog{}, timelog.ErrNotClockedIn
}

func (r *timeLogRepository) ListByEmployee(ctx context.Context, employeeID string) ([]timelog.TimeLog, error) {
	return r.filter(func(l timelog.TimeLog) bool { return l.EmployeeID == employeeID }), nil
}

func (r *timeLogRepository) ListByPayroll(ctx context.Context, payrollID string) ([]timelog.TimeLog, error) {
	return r.filter(func(l timelog.TimeLog) bool { return l.IsLinkedTo(payrollID) }), nil
}

func (r *timeLogRepository) filter(keep func(timelog.TimeLog) bool) []timelog.TimeLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []timelog.TimeLog{}
	for _, l := range r.s.timeLogs {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeIn.After(out[j].TimeIn) })
	return out
}

func (r *timeLogRepository) Update(ctx context.Context, log timelog.TimeLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.timeLogs[log.ID]
	if !ok {
		return timelog.ErrTimeLogNotFound
	}
	current.TimeIn = log.TimeIn
	current.TimeOut = log.TimeOut
	current.HoursWorked = log.HoursWorked
	current.OvertimeHours = log.OvertimeHours
	current.IsAbsent = log.IsAbsent
	current.UpdatedAt = r.s.now()
	r.s.timeLogs[log.ID] = current
	return nil
}

func (r *timeLogRepository) ClaimForPayroll(ctx context.Context, payrollID string, ids []string, linkedAt time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	claimed := []string{}
	for _, id := range ids {
		log, ok := r.s.timeLogs[id]
		if !ok || log.IsClaimed() {
			continue
		}
		at := linkedAt
		log.PayrollID = strPtr(payrollID)
		log.PayrollLinkedAt = &at
		log.UpdatedAt = r.s.now()
		r.s.timeLogs[id] = log
		claimed = append(claimed, id)
	}
	return claimed, nil
}
