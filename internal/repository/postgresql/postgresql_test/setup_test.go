package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL, applies the schema and clears every table.
// Tests are skipped when the variable is not set.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "001_payroll_engine.up.sql"))
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	truncateAllTables(t, db)
	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`TRUNCATE leave_payments, leave_requests, time_logs, payrolls, payroll_settings, employees RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedEmployee(t *testing.T, db *database.DB, name, rate string) string {
	t.Helper()

	var id string
	err := db.QueryRow(context.Background(),
		`INSERT INTO employees (full_name, email, hourly_rate) VALUES ($1, $2, $3) RETURNING id`,
		name, name+"@example.com", rate,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
