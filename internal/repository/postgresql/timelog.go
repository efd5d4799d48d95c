package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type timeLogRepositoryImpl struct {
	db *database.DB
}

func NewTimeLogRepository(db *database.DB) timelog.TimeLogRepository {
	return &timeLogRepositoryImpl{db: db}
}

const timeLogColumns = `id, employee_id, time_in, time_out, hours_worked, overtime_hours, hourly_rate,
	is_absent, payroll_id, payroll_linked_at, created_at, updated_at`

func scanTimeLog(row pgx.Row) (timelog.TimeLog, error) {
	var (
		log                   timelog.TimeLog
		hours, overtime, rate decimal.NullDecimal
	)
	err := row.Scan(
		&log.ID,
		&log.EmployeeID,
		&log.TimeIn,
		&log.TimeOut,
		&hours,
		&overtime,
		&rate,
		&log.IsAbsent,
		&log.PayrollID,
		&log.PayrollLinkedAt,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		return timelog.TimeLog{}, err
	}
	log.HoursWorked = nullDecimalPtr(hours)
	log.OvertimeHours = nullDecimalPtr(overtime)
	log.HourlyRate = nullDecimalPtr(rate)
	return log, nil
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func (r *timeLogRepositoryImpl) Create(ctx context.Context, log timelog.TimeLog) (timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_logs (employee_id, time_in, time_out, hours_worked, overtime_hours, hourly_rate, is_absent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + timeLogColumns

	created, err := scanTimeLog(q.QueryRow(ctx, query,
		log.EmployeeID, log.TimeIn, log.TimeOut, log.HoursWorked, log.OvertimeHours, log.HourlyRate, log.IsAbsent,
	))
	if err != nil {
		return timelog.TimeLog{}, fmt.Errorf("failed to create time log: %w", err)
	}
	return created, nil
}

func (r *timeLogRepositoryImpl) GetByID(ctx context.Context, id string) (timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE id = $1`

	log, err := scanTimeLog(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timelog.TimeLog{}, timelog.ErrTimeLogNotFound
		}
		return timelog.TimeLog{}, fmt.Errorf("failed to get time log %s: %w", id, err)
	}
	return log, nil
}

func (r *timeLogRepositoryImpl) GetOpenByEmployee(ctx context.Context, employeeID string) (timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeLogColumns + `
		FROM time_logs
		WHERE employee_id = $1 AND time_out IS NULL AND NOT is_absent
		ORDER BY time_in DESC
		LIMIT 1
	`

	log, err := scanTimeLog(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timelog.TimeLog{}, timelog.ErrNotClockedIn
		}
		return timelog.TimeLog{}, fmt.Errorf("failed to get open time log: %w", err)
	}
	return log, nil
}

func (r *timeLogRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]timelog.TimeLog, error) {
	return r.list(ctx, `WHERE employee_id = $1`, employeeID)
}

func (r *timeLogRepositoryImpl) ListByPayroll(ctx context.Context, payrollID string) ([]timelog.TimeLog, error) {
	return r.list(ctx, `WHERE payroll_id = $1`, payrollID)
}

func (r *timeLogRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeLogColumns + ` FROM time_logs ` + where + ` ORDER BY time_in DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	defer rows.Close()

	logs := []timelog.TimeLog{}
	for rows.Next() {
		log, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time logs: %w", err)
	}
	return logs, nil
}

func (r *timeLogRepositoryImpl) Update(ctx context.Context, log timelog.TimeLog) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET time_in = $1, time_out = $2, hours_worked = $3, overtime_hours = $4, is_absent = $5, updated_at = NOW()
		WHERE id = $6
	`

	tag, err := q.Exec(ctx, query, log.TimeIn, log.TimeOut, log.HoursWorked, log.OvertimeHours, log.IsAbsent, log.ID)
	if err != nil {
		return fmt.Errorf("failed to update time log %s: %w", log.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return timelog.ErrTimeLogNotFound
	}
	return nil
}

// ClaimForPayroll links only rows whose payroll_id is still NULL, so two concurrent runs
// can never claim the same log.
func (r *timeLogRepositoryImpl) ClaimForPayroll(ctx context.Context, payrollID string, ids []string, linkedAt time.Time) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET payroll_id = $1, payroll_linked_at = $2, updated_at = NOW()
		WHERE id = ANY($3::uuid[]) AND payroll_id IS NULL
		RETURNING id
	`

	rows, err := q.Query(ctx, query, payrollID, linkedAt, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to claim time logs: %w", err)
	}

	claimed, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect claimed time logs: %w", err)
	}
	return claimed, nil
}
