package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lightstrail/aurora-backend/internal/mailer"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePrefRepo struct {
	mu      sync.Mutex
	prefs   []models.AlertPreference
	findErr error
	markErr error
	marked  map[string]time.Time
}

func (f *fakePrefRepo) Upsert(ctx context.Context, userID string, pref *models.AlertPreference) (*models.AlertPreference, error) {
	return pref, nil
}

func (f *fakePrefRepo) GetByUserID(ctx context.Context, userID string) (*models.AlertPreference, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePrefRepo) FindEnabled(ctx context.Context) ([]models.AlertPreference, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.prefs, nil
}

func (f *fakePrefRepo) MarkNotified(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marked == nil {
		f.marked = make(map[string]time.Time)
	}
	f.marked[id.Hex()] = at
	return nil
}

type fakeConditions struct {
	mu       sync.Mutex
	forecast *models.AuroraForecast
	err      error
	calls    int
	block    chan struct{} // when set, Current waits until closed
	started  chan struct{} // when set, closed on first call
}

func (f *fakeConditions) Current(ctx context.Context, lat, lon float64) (*models.AuroraForecast, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()
	if f.started != nil && first {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

func (f *fakeConditions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDispatcher struct {
	mu     sync.Mutex
	sent   []mailer.AlertData
	to     []string
	failTo string
}

func (f *fakeDispatcher) SendKpAlert(to string, data mailer.AlertData) error {
	if to == f.failTo {
		return errors.New("smtp unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	f.to = append(f.to, to)
	return nil
}

func (f *fakeDispatcher) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }

func testPref(threshold float64, email string) models.AlertPreference {
	return models.AlertPreference{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		KpThreshold: threshold,
		Email:       email,
		Location: &models.AlertLocation{
			CityName:  "Tromsø",
			Latitude:  floatPtr(69.65),
			Longitude: floatPtr(18.96),
		},
		IsEnabled: true,
	}
}

func newTestEvaluator(repo *fakePrefRepo, cond *fakeConditions, disp *fakeDispatcher, clock clockwork.Clock) *Evaluator {
	return NewEvaluator(repo, cond, disp, testLogger(), clock, observability.NewMetricsForTesting())
}

func TestEvaluateAllSendsAndStampsAboveThreshold(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pref := testPref(5, "viewer@example.com")
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 6.2, Probability: 75}}
	disp := &fakeDispatcher{}

	ev := newTestEvaluator(repo, cond, disp, clock)
	require.NoError(t, ev.EvaluateAll(context.Background()))

	require.Equal(t, 1, disp.sentCount())
	assert.Equal(t, "viewer@example.com", disp.to[0])
	assert.Equal(t, 6.2, disp.sent[0].KpIndex)
	assert.Equal(t, "Tromsø", disp.sent[0].Location)
	assert.Equal(t, clock.Now(), repo.marked[pref.ID.Hex()])
}

func TestEvaluateAllBelowThresholdSendsNothing(t *testing.T) {
	pref := testPref(7, "viewer@example.com")
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 4.0}}
	disp := &fakeDispatcher{}

	ev := newTestEvaluator(repo, cond, disp, clockwork.NewFakeClock())
	require.NoError(t, ev.EvaluateAll(context.Background()))

	assert.Zero(t, disp.sentCount())
	assert.Empty(t, repo.marked)
}

func TestCooldownSuppressesRepeatNotification(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pref := testPref(5, "viewer@example.com")
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 8}}
	disp := &fakeDispatcher{}
	ev := newTestEvaluator(repo, cond, disp, clock)

	require.NoError(t, ev.EvaluateAll(context.Background()))
	require.Equal(t, 1, disp.sentCount())

	// Simulate the stamp landing in the stored record.
	sentAt := repo.marked[pref.ID.Hex()]
	repo.prefs[0].LastNotificationSent = &sentAt

	clock.Advance(30 * time.Minute)
	require.NoError(t, ev.EvaluateAll(context.Background()))
	assert.Equal(t, 1, disp.sentCount(), "second pass inside the cool-down must not re-send")
}

func TestResendsOnceCooldownElapsed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pref := testPref(5, "viewer@example.com")
	sentAt := clock.Now()
	pref.LastNotificationSent = &sentAt
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 8}}
	disp := &fakeDispatcher{}
	ev := newTestEvaluator(repo, cond, disp, clock)

	clock.Advance(4*time.Hour - time.Minute)
	require.NoError(t, ev.EvaluateAll(context.Background()))
	assert.Zero(t, disp.sentCount())

	clock.Advance(time.Minute)
	require.NoError(t, ev.EvaluateAll(context.Background()))
	assert.Equal(t, 1, disp.sentCount(), "exactly the cool-down boundary is eligible again")
}

func TestClearedStampReArmsEligibility(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pref := testPref(5, "viewer@example.com")
	pref.LastNotificationSent = nil // an upsert resets the stamp
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 6}}
	disp := &fakeDispatcher{}

	ev := newTestEvaluator(repo, cond, disp, clock)
	require.NoError(t, ev.EvaluateAll(context.Background()))
	assert.Equal(t, 1, disp.sentCount())
}

func TestInvalidLocationIsSkippedWithoutFetching(t *testing.T) {
	pref := testPref(5, "viewer@example.com")
	pref.Location = &models.AlertLocation{CityName: "Nowhere"} // no coordinates
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 9}}
	disp := &fakeDispatcher{}

	ev := newTestEvaluator(repo, cond, disp, clockwork.NewFakeClock())
	require.NoError(t, ev.EvaluateAll(context.Background()))

	assert.Zero(t, cond.callCount())
	assert.Zero(t, disp.sentCount())
}

func TestEvaluateOneIgnoresDisabledPreference(t *testing.T) {
	pref := testPref(5, "viewer@example.com")
	pref.IsEnabled = false
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 9}}
	disp := &fakeDispatcher{}

	ev := newTestEvaluator(&fakePrefRepo{}, cond, disp, clockwork.NewFakeClock())
	require.NoError(t, ev.EvaluateOne(context.Background(), &pref))

	assert.Zero(t, cond.callCount())
	assert.Zero(t, disp.sentCount())
}

func TestOneFailingPreferenceDoesNotStopThePass(t *testing.T) {
	prefs := make([]models.AlertPreference, 0, 5)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		prefs = append(prefs, testPref(5, email))
	}
	repo := &fakePrefRepo{prefs: prefs}
	cond := &fakeConditions{forecast: &models.AuroraForecast{KpIndex: 7}}
	disp := &fakeDispatcher{failTo: "c@x.com"}

	ev := newTestEvaluator(repo, cond, disp, clockwork.NewFakeClock())
	require.NoError(t, ev.EvaluateAll(context.Background()))

	assert.Equal(t, 4, disp.sentCount())
	assert.NotContains(t, disp.to, "c@x.com")
	assert.Len(t, repo.marked, 4, "only delivered alerts are stamped")
}

func TestRepositoryFailureAbortsThePass(t *testing.T) {
	repo := &fakePrefRepo{findErr: errors.New("mongo down")}
	ev := newTestEvaluator(repo, &fakeConditions{}, &fakeDispatcher{}, clockwork.NewFakeClock())

	assert.Error(t, ev.EvaluateAll(context.Background()))
}

func TestConcurrentPassIsSkipped(t *testing.T) {
	pref := testPref(5, "viewer@example.com")
	repo := &fakePrefRepo{prefs: []models.AlertPreference{pref}}
	cond := &fakeConditions{
		forecast: &models.AuroraForecast{KpIndex: 7},
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	disp := &fakeDispatcher{}
	ev := newTestEvaluator(repo, cond, disp, clockwork.NewFakeClock())

	done := make(chan error, 1)
	go func() { done <- ev.EvaluateAll(context.Background()) }()
	<-cond.started

	// A second pass while the first is mid-fetch must bail out immediately.
	require.NoError(t, ev.EvaluateAll(context.Background()))
	assert.Equal(t, 1, cond.callCount())

	close(cond.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, disp.sentCount())
}
