package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsStartupCheckThenTicks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pref := testPref(5, "viewer@example.com")
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 2}}
	ev := newTestEvaluator(repo, cond, &fakeDispatcher{}, clock)

	s := NewScheduler(ev, 30*time.Minute, 5*time.Second, testLogger(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Wait for the startup timer and the ticker to be armed.
	require.NoError(t, clock.BlockUntilContext(ctx, 2))

	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return cond.callCount() == 1 },
		time.Second, time.Millisecond, "startup check should run after the delay")

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(30 * time.Minute)
	require.Eventually(t, func() bool { return cond.callCount() == 2 },
		time.Second, time.Millisecond, "first interval tick should run a pass")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestSchedulerStopsImmediatelyOnCancelledContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ev := newTestEvaluator(&fakePrefRepo{}, &fakeConditions{}, &fakeDispatcher{}, clock)
	s := NewScheduler(ev, time.Minute, time.Second, testLogger(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not honor a cancelled context")
	}
	assert.Zero(t, (&fakeConditions{}).callCount())
}
