// Package memory is an in-process implementation of the repository interfaces, used by tests and by
// STORAGE_DRIVER=memory for local runs.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/google/uuid"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	employees     map[string]employee.Employee
	timeLogs      map[string]timelog.TimeLog
	leaveRequests map[string]leave.LeaveRequest
	payrolls      map[string]payroll.PayrollRecord
	leavePayments map[string]leavepayment.LeavePayment
	settings      *payroll.PayrollSettings
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		employees:     map[string]employee.Employee{},
		timeLogs:      map[string]timelog.TimeLog{},
		leaveRequests: map[string]leave.LeaveRequest{},
		payrolls:      map[string]payroll.PayrollRecord{},
		leavePayments: map[string]leavepayment.LeavePayment{},
	}
}

// WithClock overrides the timestamp source used for created/updated fields.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type txKey struct{}

// WithinTransaction implements database.Transactor. Writes made by fn are rolled back if it fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	employees     map[string]employee.Employee
	timeLogs      map[string]timelog.TimeLog
	leaveRequests map[string]leave.LeaveRequest
	payrolls      map[string]payroll.PayrollRecord
	leavePayments map[string]leavepayment.LeavePayment
	settings      *payroll.PayrollSettings
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		employees:     maps.Clone(s.employees),
		timeLogs:      maps.Clone(s.timeLogs),
		leaveRequests: maps.Clone(s.leaveRequests),
		payrolls:      maps.Clone(s.payrolls),
		leavePayments: maps.Clone(s.leavePayments),
	}
	if s.settings != nil {
		cp := *s.settings
		snap.settings = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = snap.employees
	s.timeLogs = snap.timeLogs
	s.leaveRequests = snap.leaveRequests
	s.payrolls = snap.payrolls
	s.leavePayments = snap.leavePayments
	s.settings = snap.settings
}

// Repository accessors

func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepository{s}
}

func (s *Store) TimeLogs() timelog.TimeLogRepository {
	return &timeLogRepository{s}
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{s}
}

func (s *Store) Payrolls() payroll.PayrollRepository {
	return &payrollRepository{s}
}

func (s *Store) LeavePayments() leavepayment.LeavePaymentRepository {
	return &leavePaymentRepository{s}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func strPtr(s string) *string {
	return &s
}
