package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, min_hours_per_shift, created_at, updated_at
		FROM payroll_settings
		WHERE singleton
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query).Scan(&s.ID, &s.MinHoursPerShift, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (singleton, min_hours_per_shift)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET
			min_hours_per_shift = EXCLUDED.min_hours_per_shift,
			updated_at = NOW()
		RETURNING id, min_hours_per_shift, created_at, updated_at
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query, settings.MinHoursPerShift).Scan(&s.ID, &s.MinHoursPerShift, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

// ========== PAYROLL RECORDS ==========

const payrollColumns = `
	pr.id, pr.employee_id, pr.employee_name, pr.period, pr.period_label, pr.calculation_basis,
	pr.total_hours, pr.regular_hours, pr.overtime_hours, pr.hourly_rate,
	pr.regular_pay, pr.overtime_pay, pr.gross_pay, pr.tax, pr.statutory_deductions,
	pr.absence_deduction, pr.leave_deduction, pr.attendance_deduction, pr.deductions, pr.net_pay,
	pr.status, pr.time_log_ids, pr.time_log_summaries, pr.attendance_summary,
	pr.auto_approval_scheduled_at, pr.auto_approved, pr.auto_approved_at, pr.paid_at,
	pr.checkout_id, pr.checkout_url, pr.checkout_status,
	pr.generated_at, pr.updated_at`

func scanPayroll(row pgx.Row) (payroll.PayrollRecord, error) {
	var (
		p          payroll.PayrollRecord
		attendance []byte
	)
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.EmployeeName, &p.Period, &p.PeriodLabel, &p.CalculationBasis,
		&p.TotalHours, &p.RegularHours, &p.OvertimeHours, &p.HourlyRate,
		&p.RegularPay, &p.OvertimePay, &p.GrossPay, &p.Tax, &p.StatutoryDeductions,
		&p.AbsenceDeduction, &p.LeaveDeduction, &p.AttendanceDeduction, &p.Deductions, &p.NetPay,
		&p.Status, &p.TimeLogIDs, &p.TimeLogSummaries, &attendance,
		&p.AutoApprovalScheduledAt, &p.AutoApproved, &p.AutoApprovedAt, &p.PaidAt,
		&p.CheckoutID, &p.CheckoutURL, &p.CheckoutStatus,
		&p.GeneratedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	if len(attendance) > 0 {
		if err := json.Unmarshal(attendance, &p.AttendanceSummary); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("failed to decode attendance summary: %w", err)
		}
	}
	return p, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	attendance, err := json.Marshal(record.AttendanceSummary)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to encode attendance summary: %w", err)
	}
	if record.GeneratedAt.IsZero() {
		record.GeneratedAt = time.Now()
	}

	query := `
		INSERT INTO payrolls AS pr (
			employee_id, employee_name, period, period_label, calculation_basis,
			total_hours, regular_hours, overtime_hours, hourly_rate,
			regular_pay, overtime_pay, gross_pay, tax, statutory_deductions,
			absence_deduction, leave_deduction, attendance_deduction, deductions, net_pay,
			status, time_log_ids, time_log_summaries, attendance_summary,
			auto_approval_scheduled_at, generated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23,
			$24, $25
		)
		RETURNING ` + payrollColumns

	created, err := scanPayroll(q.QueryRow(ctx, query,
		record.EmployeeID, record.EmployeeName, record.Period, record.PeriodLabel, record.CalculationBasis,
		record.TotalHours, record.RegularHours, record.OvertimeHours, record.HourlyRate,
		record.RegularPay, record.OvertimePay, record.GrossPay, record.Tax, record.StatutoryDeductions,
		record.AbsenceDeduction, record.LeaveDeduction, record.AttendanceDeduction, record.Deductions, record.NetPay,
		record.Status, nonNilStrings(record.TimeLogIDs), nonNilStrings(record.TimeLogSummaries), attendance,
		record.AutoApprovalScheduledAt, record.GeneratedAt,
	))
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	return r.getOne(ctx, `pr.id = $1`, id)
}

func (r *payrollRepository) GetByCheckoutID(ctx context.Context, checkoutID string) (payroll.PayrollRecord, error) {
	return r.getOne(ctx, `pr.checkout_id = $1`, checkoutID)
}

func (r *payrollRepository) getOne(ctx context.Context, where string, arg string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payrolls pr WHERE ` + where

	p, err := scanPayroll(q.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Period != nil && *filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("pr.period = $%d", argIdx))
		args = append(args, *filter.Period)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM payrolls pr` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	query := `SELECT ` + payrollColumns + ` FROM payrolls pr` + where + ` ORDER BY pr.generated_at DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	records, err := r.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, totalCount, nil
}

func (r *payrollRepository) ListDue(ctx context.Context, now time.Time) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls pr
		WHERE pr.status <> 'paid' AND pr.auto_approval_scheduled_at <= $1
		ORDER BY pr.auto_approval_scheduled_at ASC
	`

	return r.query(ctx, q, query, now)
}

func (r *payrollRepository) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payroll.PayrollRecord, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}
	return records, nil
}

// ========== CHECKOUT ==========

func (r *payrollRepository) AttachCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET checkout_id = $1, checkout_url = $2, status = 'processing', updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, checkoutID, checkoutURL, id)
	if err != nil {
		return fmt.Errorf("failed to attach checkout to payroll %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, id, payroll.ErrIllegalTransition)
	}
	return nil
}

func (r *payrollRepository) UpdateCheckoutStatus(ctx context.Context, id, status string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payrolls SET checkout_status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update checkout status for payroll %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}
	return nil
}

// ========== SETTLEMENT ==========

// Settle writes the recomputed figures guarded by status <> 'paid'. Checkout columns are left alone.
func (r *payrollRepository) Settle(ctx context.Context, record payroll.PayrollRecord) error {
	q := GetQuerier(ctx, r.db)

	attendance, err := json.Marshal(record.AttendanceSummary)
	if err != nil {
		return fmt.Errorf("failed to encode attendance summary: %w", err)
	}

	query := `
		UPDATE payrolls SET
			employee_name = $1, period_label = $2, calculation_basis = $3,
			total_hours = $4, regular_hours = $5, overtime_hours = $6, hourly_rate = $7,
			regular_pay = $8, overtime_pay = $9, gross_pay = $10, tax = $11, statutory_deductions = $12,
			absence_deduction = $13, leave_deduction = $14, attendance_deduction = $15, deductions = $16, net_pay = $17,
			status = $18, time_log_summaries = $19, attendance_summary = $20,
			auto_approved = $21, auto_approved_at = $22, paid_at = $23,
			updated_at = NOW()
		WHERE id = $24 AND status <> 'paid'
	`

	tag, err := q.Exec(ctx, query,
		record.EmployeeName, record.PeriodLabel, record.CalculationBasis,
		record.TotalHours, record.RegularHours, record.OvertimeHours, record.HourlyRate,
		record.RegularPay, record.OvertimePay, record.GrossPay, record.Tax, record.StatutoryDeductions,
		record.AbsenceDeduction, record.LeaveDeduction, record.AttendanceDeduction, record.Deductions, record.NetPay,
		record.Status, nonNilStrings(record.TimeLogSummaries), attendance,
		record.AutoApproved, record.AutoApprovedAt, record.PaidAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle payroll %s: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, record.ID, payroll.ErrPayrollAlreadyPaid)
	}
	return nil
}

// missingOr distinguishes a missing row from a guarded update that matched nothing.
func (r *payrollRepository) missingOr(ctx context.Context, id string, guardErr error) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payrolls WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll %s: %w", id, err)
	}
	if !exists {
		return payroll.ErrPayrollRecordNotFound
	}
	return guardErr
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
