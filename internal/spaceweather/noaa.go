package spaceweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// NOAA SWPC feed paths, relative to the configured base URL.
const (
	ovationPath   = "/json/ovation_aurora_latest.json"
	kpIndexPath   = "/products/noaa-planetary-k-index.json"
	solarWindPath = "/products/solar-wind/plasma-2-hour.json"
	magFieldPath  = "/products/solar-wind/mag-2-hour.json"
)

// OvationGrid is the OVATION aurora model output: grid points of
// [longitude, latitude, aurora intensity].
type OvationGrid struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// SolarConditions are the latest values extracted from the NOAA feeds.
type SolarConditions struct {
	KpIndex     float64
	WindSpeed   float64
	BzComponent float64
}

// noaaData bundles one synchronized pull of all four feeds.
type noaaData struct {
	Ovation    OvationGrid
	Conditions SolarConditions
}

// fetchNOAA pulls the four SWPC feeds through the cache in parallel and
// parses each into typed records.
func (s *Service) fetchNOAA(ctx context.Context) (*noaaData, error) {
	var (
		ovation  OvationGrid
		kp       float64
		wind, bz float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.getCached(gctx, "ovation", s.noaaBaseURL+ovationPath)
		if err != nil {
			return err
		}
		return parseOvation(data, &ovation)
	})
	g.Go(func() error {
		data, err := s.getCached(gctx, "kpIndex", s.noaaBaseURL+kpIndexPath)
		if err != nil {
			return err
		}
		kp, err = parseLatestColumn(data, "kpIndex", 1)
		return err
	})
	g.Go(func() error {
		data, err := s.getCached(gctx, "solarWind", s.noaaBaseURL+solarWindPath)
		if err != nil {
			return err
		}
		wind, err = parseLatestColumn(data, "solarWind", 2)
		return err
	})
	g.Go(func() error {
		data, err := s.getCached(gctx, "magField", s.noaaBaseURL+magFieldPath)
		if err != nil {
			return err
		}
		bz, err = parseLatestColumn(data, "magField", 3)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &noaaData{
		Ovation: ovation,
		Conditions: SolarConditions{
			KpIndex:     kp,
			WindSpeed:   wind,
			BzComponent: bz,
		},
	}, nil
}

func parseOvation(data []byte, out *OvationGrid) error {
	if err := json.Unmarshal(data, out); err != nil {
		return malformed("ovation", err)
	}
	if len(out.Coordinates) == 0 {
		return malformed("ovation", errors.New("empty coordinate grid"))
	}
	return nil
}

// parseLatestColumn reads a NOAA products feed (header row followed by
// string-valued data rows) and returns the requested column of the most
// recent row as a float.
func parseLatestColumn(data []byte, feed string, column int) (float64, error) {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, malformed(feed, err)
	}
	if len(rows) < 2 {
		return 0, malformed(feed, errors.New("no data rows"))
	}

	latest := rows[len(rows)-1]
	if column >= len(latest) {
		return 0, malformed(feed, fmt.Errorf("row has %d columns, need %d", len(latest), column+1))
	}

	value, err := strconv.ParseFloat(latest[column], 64)
	if err != nil {
		return 0, malformed(feed, err)
	}
	return value, nil
}
