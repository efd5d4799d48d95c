package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

type payrollRepository struct {
	s *Store
}

func clonePayroll(p payroll.PayrollRecord) payroll.PayrollRecord {
	p.TimeLogIDs = cloneStrings(p.TimeLogIDs)
	p.TimeLogSummaries = cloneStrings(p.TimeLogSummaries)
	a := p.AttendanceSummary
	a.PaidLeaveDates = cloneStrings(a.PaidLeaveDates)
	a.UnpaidLeaveDates = cloneStrings(a.UnpaidLeaveDates)
	a.AbsenceDates = cloneStrings(a.AbsenceDates)
	a.UnworkedDates = cloneStrings(a.UnworkedDates)
	p.AttendanceSummary = a
	return p
}

// Settings

func (r *payrollRepository) GetSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
	}
	return *r.s.settings, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if r.s.settings == nil {
		settings.ID = newID()
		settings.CreatedAt = now
	} else {
		settings.ID = r.s.settings.ID
		settings.CreatedAt = r.s.settings.CreatedAt
	}
	settings.UpdatedAt = now
	r.s.settings = &settings
	return settings, nil
}

// Payroll Records

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if record.ID == "" {
		record.ID = newID()
	}
	now := r.s.now()
	if record.GeneratedAt.IsZero() {
		record.GeneratedAt = now
	}
	record.UpdatedAt = now
	r.s.payrolls[record.ID] = clonePayroll(record)
	return record, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return clonePayroll(p), nil
}

func (r *payrollRepository) GetByCheckoutID(ctx context.Context, checkoutID string) (payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.payrolls {
		if p.CheckoutID != nil && *p.CheckoutID == checkoutID {
			return clonePayroll(p), nil
		}
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []payroll.PayrollRecord{}
	for _, p := range r.s.payrolls {
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		if filter.Period != nil && p.Period != *filter.Period {
			continue
		}
		matched = append(matched, clonePayroll(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].GeneratedAt.After(matched[j].GeneratedAt) })

	total := int64(len(matched))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start >= len(matched) {
			return []payroll.PayrollRecord{}, total, nil
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *payrollRepository) ListDue(ctx context.Context, now time.Time) ([]payroll.PayrollRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	due := []payroll.PayrollRecord{}
	for _, p := range r.s.payrolls {
		if p.IsDue(now) {
			due = append(due, clonePayroll(p))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].AutoApprovalScheduledAt.Before(due[j].AutoApprovalScheduledAt) })
	return due, nil
}

func (r *payrollRepository) AttachCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	if p.Status != payroll.StatusPending {
		return payroll.ErrIllegalTransition
	}
	p.CheckoutID = strPtr(checkoutID)
	p.CheckoutURL = strPtr(checkoutURL)
	p.Status = payroll.StatusProcessing
	p.UpdatedAt = r.s.now()
	r.s.payrolls[id] = p
	return nil
}

func (r *payrollRepository) UpdateCheckoutStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	p.CheckoutStatus = strPtr(status)
	p.UpdatedAt = r.s.now()
	r.s.payrolls[id] = p
	return nil
}

func (r *payrollRepository) Settle(ctx context.Context, record payroll.PayrollRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.payrolls[record.ID]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	if current.Status == payroll.StatusPaid {
		return payroll.ErrPayrollAlreadyPaid
	}

	// Checkout fields are owned by AttachCheckout and the webhook.
	record.CheckoutID = current.CheckoutID
	record.CheckoutURL = current.CheckoutURL
	record.CheckoutStatus = current.CheckoutStatus
	record.GeneratedAt = current.GeneratedAt
	record.UpdatedAt = r.s.now()
	r.s.payrolls[record.ID] = clonePayroll(record)
	return nil
}
