// Package lock provides short-lived mutual exclusion keyed by string, backed by Redis or process memory.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when the key is already held by another owner.
var ErrNotAcquired = errors.New("lock already held")

// DefaultTTL bounds how long a crashed holder can block others.
const DefaultTTL = 30 * time.Second

// Unlock releases a held lock. Releasing a lock that expired and was taken by someone else is a no-op.
type Unlock func(ctx context.Context) error

type Locker interface {
	// TryLock acquires key without waiting. It returns ErrNotAcquired when the key is taken.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

// PayrollKey is the lock key guarding settlement of one payroll.
func PayrollKey(payrollID string) string {
	return "payroll:settle:" + payrollID
}

// SweepKey guards the auto-settlement sweep so only one instance runs it at a time.
const SweepKey = "payroll:auto-settle"
