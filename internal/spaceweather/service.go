package spaceweather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lightstrail/aurora-backend/internal/observability"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

// Options configures a space-weather Service.
type Options struct {
	AuroraAPIBaseURL string
	OpenMeteoBaseURL string
	NOAABaseURL      string
	Timeout          time.Duration
	CacheFresh       time.Duration
	CacheStale       time.Duration
	Logger           *slog.Logger
	Clock            clockwork.Clock
	Metrics          *observability.Metrics
}

// Service fetches and merges space-weather data from auroras.live,
// Open-Meteo and the NOAA SWPC feeds. All upstream payloads pass through
// explicit parse functions; the NOAA feeds sit behind a TTL cache with
// stale fallback.
type Service struct {
	httpClient    *http.Client
	auroraBaseURL string
	meteoBaseURL  string
	noaaBaseURL   string
	logger        *slog.Logger
	clock         clockwork.Clock
	cache         *ttlCache
	metrics       *observability.Metrics
}

// NewService creates a space-weather Service.
func NewService(opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		httpClient:    &http.Client{Timeout: opts.Timeout},
		auroraBaseURL: opts.AuroraAPIBaseURL,
		meteoBaseURL:  opts.OpenMeteoBaseURL,
		noaaBaseURL:   opts.NOAABaseURL,
		logger:        opts.Logger,
		clock:         opts.Clock,
		cache:         newTTLCache(opts.CacheFresh, opts.CacheStale, opts.Clock),
		metrics:       opts.Metrics,
	}
}

// getJSON issues one GET and returns the raw body on a 200 response.
func (s *Service) getJSON(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}

// getCached serves a feed through the TTL cache: fresh hit → cached bytes;
// otherwise up to maxRetries fetch attempts with linear backoff; on total
// failure a stale entry is served if one exists.
func (s *Service) getCached(ctx context.Context, key, fullURL string) ([]byte, error) {
	if data, ok := s.cache.getFresh(key); ok {
		return data, nil
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		data, err := s.getJSON(ctx, fullURL)
		if err == nil {
			s.cache.put(key, data)
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i < maxRetries-1 {
			s.clock.Sleep(retryDelay * time.Duration(i+1))
		}
	}

	if data, ok := s.cache.getStale(key); ok {
		s.logger.Warn("serving stale cache", "feed", key, "error", lastErr)
		return data, nil
	}

	if s.metrics != nil {
		s.metrics.UpstreamErrors.WithLabelValues(key).Inc()
	}
	return nil, fmt.Errorf("fetch %s: %w", key, lastErr)
}
