package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leavePaymentRepositoryImpl struct {
	db *database.DB
}

func NewLeavePaymentRepository(db *database.DB) leavepayment.LeavePaymentRepository {
	return &leavePaymentRepositoryImpl{db: db}
}

const leavePaymentColumns = `id, employee_id, payroll_id, leave_type, number_of_days, rate_per_day, amount, date, created_at`

func scanLeavePayment(row pgx.Row) (leavepayment.LeavePayment, error) {
	var lp leavepayment.LeavePayment
	err := row.Scan(
		&lp.ID,
		&lp.EmployeeID,
		&lp.PayrollID,
		&lp.LeaveType,
		&lp.NumberOfDays,
		&lp.RatePerDay,
		&lp.Amount,
		&lp.Date,
		&lp.CreatedAt,
	)
	return lp, err
}

func (r *leavePaymentRepositoryImpl) Create(ctx context.Context, payment leavepayment.LeavePayment) (leavepayment.LeavePayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_payments (employee_id, payroll_id, leave_type, number_of_days, rate_per_day, amount, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + leavePaymentColumns

	created, err := scanLeavePayment(q.QueryRow(ctx, query,
		payment.EmployeeID, payment.PayrollID, payment.LeaveType,
		payment.NumberOfDays, payment.RatePerDay, payment.Amount, payment.Date,
	))
	if err != nil {
		return leavepayment.LeavePayment{}, fmt.Errorf("failed to create leave payment: %w", err)
	}
	return created, nil
}

func (r *leavePaymentRepositoryImpl) GetByID(ctx context.Context, id string) (leavepayment.LeavePayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leavePaymentColumns + ` FROM leave_payments WHERE id = $1`

	lp, err := scanLeavePayment(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leavepayment.LeavePayment{}, leavepayment.ErrLeavePaymentNotFound
		}
		return leavepayment.LeavePayment{}, fmt.Errorf("failed to get leave payment %s: %w", id, err)
	}
	return lp, nil
}

func (r *leavePaymentRepositoryImpl) ListByEmployeeAndPayroll(ctx context.Context, employeeID, payrollID string) ([]leavepayment.LeavePayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leavePaymentColumns + `
		FROM leave_payments
		WHERE employee_id = $1 AND payroll_id = $2
		ORDER BY date DESC
	`

	rows, err := q.Query(ctx, query, employeeID, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave payments: %w", err)
	}
	defer rows.Close()

	payments := []leavepayment.LeavePayment{}
	for rows.Next() {
		lp, err := scanLeavePayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave payment: %w", err)
		}
		payments = append(payments, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave payments: %w", err)
	}
	return payments, nil
}

func (r *leavePaymentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave payment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return leavepayment.ErrLeavePaymentNotFound
	}
	return nil
}
