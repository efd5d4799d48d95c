package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJobValidation(t *testing.T) {
	s := NewScheduler(context.Background())
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.AddJob(Job{Name: "zero", Fn: noop}))
	assert.Error(t, s.AddJob(Job{Name: "nil", Interval: time.Second}))
	require.NoError(t, s.AddJob(Job{Name: "ok", Interval: time.Second, Fn: noop}))

	s.Start()
	defer s.Stop()
	assert.Error(t, s.AddJob(Job{Name: "late", Interval: time.Second, Fn: noop}))
	assert.Equal(t, []string{"ok"}, s.Jobs())
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler(context.Background())
	var calls atomic.Int32

	require.NoError(t, s.AddJob(Job{Name: "a", Interval: time.Hour, Fn: func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}}))
	require.NoError(t, s.AddJob(Job{Name: "b", Interval: time.Hour, Fn: func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}}))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := NewScheduler(context.Background())
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, s.AddJob(Job{Name: "slow", Interval: time.Hour, Fn: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	job := s.jobs[0]

	done := make(chan bool)
	go func() {
		ran, _ := s.executeJob(context.Background(), job)
		done <- ran
	}()
	<-started

	ran, err := s.executeJob(context.Background(), job)
	assert.NoError(t, err)
	assert.False(t, ran)

	close(release)
	assert.True(t, <-done)
}

func TestScheduler_StopCancelsJobs(t *testing.T) {
	s := NewScheduler(context.Background())
	cancelled := make(chan struct{})

	require.NoError(t, s.AddJob(Job{Name: "wait", Interval: time.Hour, Timeout: time.Hour, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}}))

	s.Start()
	s.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}

type sweepService struct {
	payroll.PayrollService
	calls  int
	result payroll.SweepResult
	err    error
}

func (s *sweepService) SweepDue(ctx context.Context) (payroll.SweepResult, error) {
	s.calls++
	return s.result, s.err
}

func TestPayrollJobs_Register(t *testing.T) {
	svc := &sweepService{result: payroll.SweepResult{Checked: 2, Settled: []string{"p-1"}, Skipped: 1}}

	s := NewScheduler(context.Background())
	require.NoError(t, NewPayrollJobs(svc, 0).RegisterJobs(s))
	assert.Empty(t, s.Jobs())

	require.NoError(t, NewPayrollJobs(svc, time.Minute).RegisterJobs(s))
	assert.Equal(t, []string{AutoSettleJobName}, s.Jobs())

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, svc.calls)
}

func TestPayrollJobs_SweepError(t *testing.T) {
	svc := &sweepService{err: errors.New("store down")}

	err := NewPayrollJobs(svc, time.Minute).AutoSettleDuePayrolls(context.Background())
	assert.EqualError(t, err, "store down")
}
