package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	name string
	runs chan struct{}
	err  error
}

func newTestJob(name string) *testJob {
	return &testJob{name: name, runs: make(chan struct{}, 8)}
}

func (j *testJob) Name() string        { return j.name }
func (j *testJob) Description() string { return "test job" }
func (j *testJob) Run(ctx context.Context) error {
	j.runs <- struct{}{}
	return j.err
}

func TestScheduler_Register(t *testing.T) {
	s := New(Config{})
	job := newTestJob("a")

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	err := s.Register(job, NewIntervalSchedule(time.Hour))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Hour)), ErrNilJob)
	assert.ErrorIs(t, s.Register(newTestJob("b"), nil), ErrNilSchedule)
}

func TestScheduler_TriggerNow(t *testing.T) {
	s := New(Config{})
	job := newTestJob("manual")
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	// Not running yet.
	assert.ErrorIs(t, s.TriggerNow("manual"), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.ErrorIs(t, s.TriggerNow("unknown"), ErrJobNotFound)

	require.NoError(t, s.TriggerNow("manual"))
	select {
	case <-job.runs:
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not run the job")
	}
}

func TestScheduler_JobPanicIsRecorded(t *testing.T) {
	s := New(Config{})
	job := &panickyJob{done: make(chan struct{}, 1)}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.TriggerNow("panicky"))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	// Stop waits for the in-flight job; the scheduler must survive the panic.
	require.NoError(t, s.Stop())

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.Equal(t, int64(1), infos[0].FailCount)
	require.NotNil(t, infos[0].LastResult)
	assert.False(t, infos[0].LastResult.Success)
}

type panickyJob struct {
	done chan struct{}
}

func (j *panickyJob) Name() string        { return "panicky" }
func (j *panickyJob) Description() string { return "always panics" }
func (j *panickyJob) Run(ctx context.Context) error {
	defer func() { j.done <- struct{}{} }()
	panic(errors.New("boom"))
}

func TestScheduler_StartTwice(t *testing.T) {
	s := New(Config{})
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
}
