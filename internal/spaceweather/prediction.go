package spaceweather

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lightstrail/aurora-backend/internal/geo"
	"github.com/lightstrail/aurora-backend/internal/models"
)

const (
	maxViewingSpots      = 10
	minSpotProbability   = 30
	typicalWindSpeedBase = 300
	typicalWindSpeedSpan = 500
)

// GeneratePredictions builds the ranked list of aurora viewing spots from
// the OVATION grid, weighted by the current Kp index, solar wind speed and
// Bz component. Ground weather enrichment happens at the handler edge.
func (s *Service) GeneratePredictions(ctx context.Context) ([]models.ViewingSpot, error) {
	noaa, err := s.fetchNOAA(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate predictions: %w", err)
	}

	cond := noaa.Conditions
	spots := make([]models.ViewingSpot, 0, maxViewingSpots)
	for i, point := range noaa.Ovation.Coordinates {
		if len(point) < 3 {
			continue
		}
		base := point[2]
		probability := gridProbability(base, cond)
		if probability <= minSpotProbability || base <= 0 {
			continue
		}

		spots = append(spots, models.ViewingSpot{
			ID:             fmt.Sprintf("spot-%d", i),
			Coordinates:    []float64{point[1], point[0]}, // grid is [lon, lat, intensity]
			Probability:    int(probability + 0.5),
			KpIndex:        cond.KpIndex,
			SolarWindSpeed: cond.WindSpeed,
			BzComponent:    cond.BzComponent,
			UpdatedAt:      s.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}

	sort.Slice(spots, func(i, j int) bool {
		return spots[i].Probability > spots[j].Probability
	})
	if len(spots) > maxViewingSpots {
		spots = spots[:maxViewingSpots]
	}

	if len(spots) == 0 {
		return nil, errors.New("no valid viewing spots found")
	}
	return spots, nil
}

// SortByDistance reorders spots nearest-first relative to the given
// coordinates.
func SortByDistance(spots []models.ViewingSpot, latitude, longitude float64) {
	sort.SliceStable(spots, func(i, j int) bool {
		di := geo.Distance(latitude, longitude, spots[i].Coordinates[0], spots[i].Coordinates[1])
		dj := geo.Distance(latitude, longitude, spots[j].Coordinates[0], spots[j].Coordinates[1])
		return di < dj
	})
}

// gridProbability scales a grid point's base intensity by the live solar
// conditions and clamps to 0..100.
func gridProbability(base float64, cond SolarConditions) float64 {
	probability := base

	probability *= 1 + cond.KpIndex/9

	normalizedWind := (cond.WindSpeed - typicalWindSpeedBase) / typicalWindSpeedSpan
	probability *= 1 + normalizedWind

	if cond.BzComponent < 0 {
		probability *= 1 + (-cond.BzComponent)/10
	}

	if probability < 0 {
		return 0
	}
	if probability > 100 {
		return 100
	}
	return probability
}
