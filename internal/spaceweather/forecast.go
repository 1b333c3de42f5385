package spaceweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/lightstrail/aurora-backend/internal/models"
	"golang.org/x/sync/errgroup"
)

// auroras.live ?type=all response, reduced to the fields we consume.
type auroraLiveResponse struct {
	Ace struct {
		Kp    flexFloat `json:"kp"`
		Bz    flexFloat `json:"bz"`
		Speed flexFloat `json:"speed"`
	} `json:"ace"`
	Probability struct {
		Value flexFloat `json:"value"`
		Lat   flexFloat `json:"lat"`
		Long  flexFloat `json:"long"`
	} `json:"probability"`
}

// Open-Meteo forecast response, reduced to the fields we consume.
type openMeteoResponse struct {
	Current struct {
		Temperature   flexFloat `json:"temperature_2m"`
		Precipitation flexFloat `json:"precipitation"`
		WindSpeed     flexFloat `json:"wind_speed_10m"`
		CloudCover    flexFloat `json:"cloud_cover"`
		IsDay         flexFloat `json:"is_day"`
	} `json:"current"`
	Daily struct {
		UVIndexMax []flexFloat `json:"uv_index_max"`
	} `json:"daily"`
}

// Current fetches the merged aurora and ground-weather conditions for one
// coordinate pair and computes the visibility probability.
func (s *Service) Current(ctx context.Context, latitude, longitude float64) (*models.AuroraForecast, error) {
	var aurora auroraLiveResponse
	var weather openMeteoResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.fetchAuroraLive(gctx, latitude, longitude, &aurora)
	})
	g.Go(func() error {
		return s.fetchOpenMeteo(gctx, latitude, longitude, &weather)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uvMax := 0.0
	for _, uv := range weather.Daily.UVIndexMax {
		if float64(uv) > uvMax {
			uvMax = float64(uv)
		}
	}

	forecast := &models.AuroraForecast{
		KpIndex:       float64(aurora.Ace.Kp),
		Bz:            float64(aurora.Ace.Bz),
		Speed:         float64(aurora.Ace.Speed),
		Latitude:      float64(aurora.Probability.Lat),
		Longitude:     float64(aurora.Probability.Long),
		Temperature:   float64(weather.Current.Temperature),
		Precipitation: float64(weather.Current.Precipitation),
		WindSpeed:     float64(weather.Current.WindSpeed),
		CloudCover:    float64(weather.Current.CloudCover),
		UVIndex:       uvMax,
		IsDay:         weather.Current.IsDay != 0,
	}
	forecast.Probability = visibilityProbability(forecast)

	return forecast, nil
}

func (s *Service) fetchAuroraLive(ctx context.Context, latitude, longitude float64, out *auroraLiveResponse) error {
	params := url.Values{
		"type":     {"all"},
		"lat":      {fmt.Sprintf("%f", latitude)},
		"long":     {fmt.Sprintf("%f", longitude)},
		"forecast": {"false"},
		"threeday": {"false"},
	}
	data, err := s.getJSON(ctx, s.auroraBaseURL+"?"+params.Encode())
	if err != nil {
		return fmt.Errorf("auroras.live: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed("auroras.live", err)
	}
	if out.Ace.Kp == 0 && out.Ace.Speed == 0 {
		return malformed("auroras.live", errors.New("missing ace block"))
	}
	return nil
}

func (s *Service) fetchOpenMeteo(ctx context.Context, latitude, longitude float64, out *openMeteoResponse) error {
	params := url.Values{
		"latitude":      {fmt.Sprintf("%f", latitude)},
		"longitude":     {fmt.Sprintf("%f", longitude)},
		"current":       {"temperature_2m,precipitation,wind_speed_10m,cloud_cover,is_day"},
		"daily":         {"uv_index_max"},
		"forecast_days": {"1"},
	}
	data, err := s.getJSON(ctx, s.meteoBaseURL+"/forecast?"+params.Encode())
	if err != nil {
		return fmt.Errorf("open-meteo: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed("open-meteo", err)
	}
	return nil
}

// visibilityProbability applies the weighted-sum heuristic over current
// conditions and clamps the result to 0..100. Daylight zeroes the score
// before the nighttime bonus is considered.
func visibilityProbability(f *models.AuroraForecast) int {
	probability := 0

	if f.KpIndex >= 5 && f.Bz < 0 {
		probability += 40
	}
	if f.Speed > 400 && f.Temperature < -10 {
		probability += 30
	}
	if f.Precipitation < 10 && f.WindSpeed > 10 {
		probability += 20
	}
	if f.UVIndex > 6 {
		probability += 10
	}
	if f.CloudCover > 50 {
		probability -= 20
	}

	if f.IsDay {
		probability = 0
	} else {
		probability += 10
	}

	if probability < 0 {
		return 0
	}
	if probability > 100 {
		return 100
	}
	return probability
}
