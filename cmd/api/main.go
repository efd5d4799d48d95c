package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/xendit"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	leavePaymentService "github.com/cmlabs-hris/payroll-engine/internal/service/leavepayment"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	timeLogService "github.com/cmlabs-hris/payroll-engine/internal/service/timelog"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type repositories struct {
	tx            database.Transactor
	employees     employee.EmployeeRepository
	timeLogs      timelog.TimeLogRepository
	leaveRequests leave.LeaveRequestRepository
	payrolls      payroll.PayrollRepository
	leavePayments leavepayment.LeavePaymentRepository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loc := cfg.Location()

	repos, err := openRepositories(ctx, cfg, loc)
	if err != nil {
		return err
	}
	defer repos.close()

	locker, closeLocker := newLocker(ctx, cfg.Redis)
	defer closeLocker()

	var gateway payment.Gateway
	if cfg.Xendit.APIKey != "" {
		gateway = xendit.NewGateway(xendit.NewClient(cfg.Xendit), cfg.Xendit)
	} else {
		slog.Warn("XENDIT_API_KEY not set, payrolls will be generated without funding checkouts")
	}

	m := metrics.New()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(
		repos.tx,
		repos.payrolls,
		repos.employees,
		repos.timeLogs,
		repos.leavePayments,
		repos.leaveRequests,
		gateway,
		locker,
		m,
		loc,
	).WithLockTTL(cfg.Payroll.LockTTL)
	leavePaymentSvc := leavePaymentService.NewLeavePaymentService(repos.leavePayments, repos.payrolls, locker)
	timeLogSvc := timeLogService.NewTimeLogService(repos.timeLogs, repos.employees, repos.payrolls, loc)

	router := appHTTP.NewRouter(
		logger,
		cfg.CORS,
		JWTService,
		m,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewLeavePaymentHandler(leavePaymentSvc),
		appHTTP.NewTimeLogHandler(timeLogSvc),
		appHTTP.NewWebhookHandler(payrollSvc, xendit.NewWebhookVerifier(cfg.Xendit.WebhookToken)),
	)

	scheduler := cron.NewScheduler(ctx)
	if err := cron.NewPayrollJobs(payrollSvc, cfg.Payroll.AutoSettleInterval).RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("failed to register cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.StorageDriver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, loc *time.Location) (*repositories, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		demo := store.AddEmployee(employee.Employee{
			FullName:   "Demo Employee",
			Email:      "demo@example.com",
			HourlyRate: decimal.NewFromInt(100),
		})
		slog.Warn("Using in-memory storage, data is lost on restart", "demo_employee_id", demo.ID)

		return &repositories{
			tx:            store,
			employees:     store.Employees(),
			timeLogs:      store.TimeLogs(),
			leaveRequests: store.LeaveRequests(),
			payrolls:      store.Payrolls(),
			leavePayments: store.LeavePayments(),
			close:         func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &repositories{
		tx:            postgresql.NewTransactor(db),
		employees:     postgresql.NewEmployeeRepository(db),
		timeLogs:      postgresql.NewTimeLogRepository(db),
		leaveRequests: postgresql.NewLeaveRequestRepository(db, loc),
		payrolls:      postgresql.NewPayrollRepository(db),
		leavePayments: postgresql.NewLeavePaymentRepository(db),
		close:         db.Close,
	}, nil
}

// newLocker prefers Redis so several API instances share settlement locks. Without REDIS_ADDR, or when
// Redis is unreachable at startup, locks fall back to this process.
func newLocker(ctx context.Context, cfg config.RedisConfig) (lock.Locker, func()) {
	if cfg.Addr == "" {
		return lock.NewLocalLocker(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis unreachable, using in-process locks", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return lock.NewLocalLocker(), func() {}
	}

	slog.Info("Using Redis settlement locks", "addr", cfg.Addr)
	return lock.NewRedisLocker(rdb, "payroll-engine:"), func() { _ = rdb.Close() }
}
