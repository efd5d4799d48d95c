package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type employeeRepository struct {
	s *Store
}

// AddEmployee seeds an employee record, assigning an ID when empty.
func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	s.employees[e.ID] = e
	return e
}

// SetHourlyRate changes an employee's rate, mimicking an HR edit.
func (s *Store) SetHourlyRate(id string, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.employees[id]
	if !ok {
		return
	}
	current.HourlyRate = rate
	current.UpdatedAt = s.now()
	s.employees[id] = current
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok || e.DeletedAt != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.employees {
		if e.UserID != nil && *e.UserID == userID && e.DeletedAt == nil {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]employee.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		if e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}
