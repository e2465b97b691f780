package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	added []backlite.Task
}

func (r *recordingEnqueuer) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	r.added = append(r.added, tasks...)
	// A client-less op; Save on it would panic, so tests only exercise
	// scheduling, not the queue round trip.
	return nil
}

func TestStartStop(t *testing.T) {
	s := NewSetlistSyncScheduler(&recordingEnqueuer{}, "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestStartIsIdempotent(t *testing.T) {
	s := NewSetlistSyncScheduler(&recordingEnqueuer{}, "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.True(t, s.IsRunning())
}

func TestInvalidSchedule(t *testing.T) {
	s := NewSetlistSyncScheduler(&recordingEnqueuer{}, "not a schedule")

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestContextCancellationStops(t *testing.T) {
	s := NewSetlistSyncScheduler(&recordingEnqueuer{}, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
