package alerts

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lightstrail/aurora-backend/internal/mailer"
	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/lightstrail/aurora-backend/internal/observability"
	"github.com/lightstrail/aurora-backend/internal/repositories"
)

// notificationCooldown is the minimum gap between alert emails for one
// preference, regardless of how often the conditions are re-checked.
const notificationCooldown = 4 * time.Hour

// ConditionsFetcher provides current aurora conditions for a coordinate pair.
type ConditionsFetcher interface {
	Current(ctx context.Context, latitude, longitude float64) (*models.AuroraForecast, error)
}

// Dispatcher delivers alert emails.
type Dispatcher interface {
	SendKpAlert(to string, data mailer.AlertData) error
}

// Evaluator checks enabled alert preferences against live conditions and
// sends notification emails when a user's Kp threshold is met.
type Evaluator struct {
	prefs      repositories.AlertPreferenceRepository
	conditions ConditionsFetcher
	dispatcher Dispatcher
	logger     *slog.Logger
	clock      clockwork.Clock
	metrics    *observability.Metrics

	running atomic.Bool
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(
	prefs repositories.AlertPreferenceRepository,
	conditions ConditionsFetcher,
	dispatcher Dispatcher,
	logger *slog.Logger,
	clock clockwork.Clock,
	metrics *observability.Metrics,
) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{
		prefs:      prefs,
		conditions: conditions,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      clock,
		metrics:    metrics,
	}
}

// EvaluateAll runs one evaluation pass over every enabled preference.
// At most one pass runs at a time; a pass that starts while another is
// still in flight returns immediately.
func (e *Evaluator) EvaluateAll(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Warn("alert evaluation already running, skipping pass")
		if e.metrics != nil {
			e.metrics.EvaluationSkipped.Inc()
		}
		return nil
	}
	defer e.running.Store(false)

	start := e.clock.Now()
	if e.metrics != nil {
		e.metrics.EvaluationPasses.Inc()
		defer func() {
			e.metrics.EvaluationDuration.Observe(e.clock.Since(start).Seconds())
		}()
	}

	prefs, err := e.prefs.FindEnabled(ctx)
	if err != nil {
		e.logger.Error("load enabled alert preferences", "error", err)
		return err
	}

	e.logger.Info("alert evaluation pass", "preferences", len(prefs))

	for i := range prefs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// One bad preference must not stop the rest of the pass.
		if err := e.evaluate(ctx, &prefs[i]); err != nil {
			e.logger.Error("evaluate alert preference",
				"preferenceId", prefs[i].ID.Hex(),
				"email", prefs[i].Email,
				"error", err)
		}
	}
	return nil
}

// EvaluateOne runs the same check for a single preference, used right
// after a user saves their settings. The cool-down still applies.
func (e *Evaluator) EvaluateOne(ctx context.Context, pref *models.AlertPreference) error {
	if !pref.IsEnabled {
		return nil
	}
	return e.evaluate(ctx, pref)
}

func (e *Evaluator) evaluate(ctx context.Context, pref *models.AlertPreference) error {
	if e.metrics != nil {
		e.metrics.PreferencesChecked.Inc()
	}

	if !pref.Location.Valid() {
		e.logger.Warn("skipping preference with invalid location",
			"preferenceId", pref.ID.Hex(), "email", pref.Email)
		return nil
	}

	forecast, err := e.conditions.Current(ctx, *pref.Location.Latitude, *pref.Location.Longitude)
	if err != nil {
		return err
	}

	if forecast.KpIndex < pref.KpThreshold {
		return nil
	}

	now := e.clock.Now()
	if !e.eligible(pref, now) {
		e.logger.Info("kp threshold met but within cool-down",
			"preferenceId", pref.ID.Hex(),
			"kpIndex", forecast.KpIndex,
			"lastNotificationSent", pref.LastNotificationSent)
		return nil
	}

	err = e.dispatcher.SendKpAlert(pref.Email, mailer.AlertData{
		KpIndex:     forecast.KpIndex,
		Location:    pref.Location.CityName,
		Probability: forecast.Probability,
		Time:        now,
	})
	if err != nil {
		if e.metrics != nil {
			e.metrics.NotificationErrors.Inc()
		}
		return err
	}

	if e.metrics != nil {
		e.metrics.NotificationsSent.Inc()
	}
	e.logger.Info("alert email sent",
		"email", pref.Email,
		"kpIndex", forecast.KpIndex,
		"city", pref.Location.CityName)

	// The stamp must land even when the email succeeded, otherwise the
	// next pass re-sends; a stamp failure is surfaced to the caller.
	if err := e.prefs.MarkNotified(ctx, pref.ID, now); err != nil {
		return err
	}
	pref.LastNotificationSent = &now
	return nil
}

// eligible applies the cool-down: a never-notified preference is always
// eligible, otherwise the full window must have elapsed.
func (e *Evaluator) eligible(pref *models.AlertPreference, now time.Time) bool {
	if pref.LastNotificationSent == nil {
		return true
	}
	return now.Sub(*pref.LastNotificationSent) >= notificationCooldown
}
