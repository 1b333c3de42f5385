package spaceweather

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/lightstrail/aurora-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kpFeedBody = `[
		["time_tag","Kp","a_running","station_count"],
		["2026-08-27 21:00:00.000","4.33","27","8"],
		["2026-08-28 00:00:00.000","5.67","48","8"]
	]`
	plasmaFeedBody = `[
		["time_tag","density","speed","temperature"],
		["2026-08-28 00:00:00.000","4.2","486.3","154000"]
	]`
	magFeedBody = `[
		["time_tag","bx_gsm","by_gsm","bz_gsm"],
		["2026-08-28 00:00:00.000","1.1","-2.4","-6.8"]
	]`
	ovationBody = `{"coordinates": [
		[18, 69, 60],
		[19, 70, 45],
		[200, -80, 2],
		[21, 68]
	]}`
)

func TestParseLatestColumnReadsMostRecentRow(t *testing.T) {
	kp, err := parseLatestColumn([]byte(kpFeedBody), "kpIndex", 1)
	require.NoError(t, err)
	assert.Equal(t, 5.67, kp)

	speed, err := parseLatestColumn([]byte(plasmaFeedBody), "solarWind", 2)
	require.NoError(t, err)
	assert.Equal(t, 486.3, speed)

	bz, err := parseLatestColumn([]byte(magFeedBody), "magField", 3)
	require.NoError(t, err)
	assert.Equal(t, -6.8, bz)
}

func TestParseLatestColumnRejectsBadFeeds(t *testing.T) {
	_, err := parseLatestColumn([]byte(`[["header","only"]]`), "kpIndex", 1)
	assert.ErrorIs(t, err, ErrMalformedUpstream)

	_, err = parseLatestColumn([]byte(`not json`), "kpIndex", 1)
	assert.ErrorIs(t, err, ErrMalformedUpstream)

	_, err = parseLatestColumn([]byte(`[["h"],["short"]]`), "kpIndex", 1)
	assert.ErrorIs(t, err, ErrMalformedUpstream)

	_, err = parseLatestColumn([]byte(`[["h","v"],["t","NaN?"]]`), "kpIndex", 1)
	assert.ErrorIs(t, err, ErrMalformedUpstream)
}

func TestParseOvationRejectsEmptyGrid(t *testing.T) {
	var grid OvationGrid
	err := parseOvation([]byte(`{"coordinates": []}`), &grid)
	assert.ErrorIs(t, err, ErrMalformedUpstream)
}

func noaaHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case ovationPath:
		io.WriteString(w, ovationBody)
	case kpIndexPath:
		io.WriteString(w, kpFeedBody)
	case solarWindPath:
		io.WriteString(w, plasmaFeedBody)
	case magFieldPath:
		io.WriteString(w, magFeedBody)
	default:
		http.NotFound(w, r)
	}
}

func quietNoaaHandler(w http.ResponseWriter, r *http.Request) {
	// Calm conditions keep the scaled probabilities under the clamp so the
	// ranking stays observable.
	switch r.URL.Path {
	case ovationPath:
		io.WriteString(w, ovationBody)
	case kpIndexPath:
		io.WriteString(w, `[["time_tag","Kp"],["2026-08-28 00:00:00.000","2.00"]]`)
	case solarWindPath:
		io.WriteString(w, `[["time_tag","density","speed"],["2026-08-28 00:00:00.000","4.2","350.0"]]`)
	case magFieldPath:
		io.WriteString(w, `[["time_tag","bx_gsm","by_gsm","bz_gsm"],["2026-08-28 00:00:00.000","1.1","-2.4","1.5"]]`)
	default:
		http.NotFound(w, r)
	}
}

func TestGeneratePredictionsRanksGridPoints(t *testing.T) {
	s, _ := testService(t, quietNoaaHandler)

	spots, err := s.GeneratePredictions(context.Background())
	require.NoError(t, err)
	require.Len(t, spots, 2, "weak and short grid points are filtered out")

	// Strongest intensity first; grid order is [lon, lat], spots are [lat, lon].
	assert.Equal(t, []float64{69, 18}, spots[0].Coordinates)
	assert.Equal(t, []float64{70, 19}, spots[1].Coordinates)
	assert.Greater(t, spots[0].Probability, spots[1].Probability)

	for _, spot := range spots {
		assert.Equal(t, 2.0, spot.KpIndex)
		assert.Equal(t, 350.0, spot.SolarWindSpeed)
		assert.Equal(t, 1.5, spot.BzComponent)
		assert.LessOrEqual(t, spot.Probability, 100)
		assert.Greater(t, spot.Probability, minSpotProbability)
	}
}

func TestGeneratePredictionsFailsWhenNothingQualifies(t *testing.T) {
	s, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == ovationPath {
			io.WriteString(w, `{"coordinates": [[10, 50, 1]]}`)
			return
		}
		noaaHandler(w, r)
	})

	_, err := s.GeneratePredictions(context.Background())
	assert.EqualError(t, err, "generate predictions: no valid viewing spots found")
}

func TestSortByDistanceOrdersNearestFirst(t *testing.T) {
	spots := []models.ViewingSpot{
		{ID: "far", Coordinates: []float64{60, 10}},
		{ID: "near", Coordinates: []float64{69, 18}},
	}
	SortByDistance(spots, 69.65, 18.96)
	assert.Equal(t, "near", spots[0].ID)
	assert.Equal(t, "far", spots[1].ID)
}

func TestGeneratePredictionsSurvivesUpstreamOutageViaCache(t *testing.T) {
	healthy := true
	s, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		noaaHandler(w, r)
	})

	_, err := s.GeneratePredictions(context.Background())
	require.NoError(t, err)

	healthy = false

	spots, err := s.GeneratePredictions(context.Background())
	require.NoError(t, err, "cached feeds cover the outage")
	assert.NotEmpty(t, spots)
}
