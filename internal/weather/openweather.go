package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Conditions are the current ground-weather values used to enrich
// viewing-spot predictions.
type Conditions struct {
	Temperature float64
	CloudCover  float64
	IsNight     bool
}

// Client calls the OpenWeather current-weather and reverse-geocoding APIs.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CurrentConditions fetches the current weather for a coordinate pair.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (Conditions, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	var resp currentWeatherResponse
	if err := c.getJSON(ctx, c.baseURL+"/data/2.5/weather?"+params.Encode(), &resp); err != nil {
		return Conditions{}, err
	}

	isNight := false
	if len(resp.Weather) > 0 {
		isNight = strings.Contains(resp.Weather[0].Icon, "n")
	}

	return Conditions{
		Temperature: resp.Main.Temp,
		CloudCover:  resp.Clouds.All,
		IsNight:     isNight,
	}, nil
}

// LocationName reverse-geocodes a coordinate pair to "City, CC". Falls
// back to a formatted coordinate string when nothing is found.
func (c *Client) LocationName(ctx context.Context, lat, lon float64) string {
	params := url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"limit": {"1"},
		"appid": {c.apiKey},
	}

	var places []reverseGeocodeResult
	if err := c.getJSON(ctx, c.baseURL+"/geo/1.0/reverse?"+params.Encode(), &places); err != nil {
		c.logger.Warn("reverse geocode failed", "error", err)
		return FormatCoordinates(lat, lon)
	}
	if len(places) == 0 || places[0].Name == "" {
		return FormatCoordinates(lat, lon)
	}
	return fmt.Sprintf("%s, %s", places[0].Name, places[0].Country)
}

// FormatCoordinates renders a coordinate pair as a display string.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.2f°N, %.2f°E", lat, lon)
}

func (c *Client) getJSON(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openweather status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// OpenWeather API response types.

type currentWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		Icon string `json:"icon"`
	} `json:"weather"`
}

type reverseGeocodeResult struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
