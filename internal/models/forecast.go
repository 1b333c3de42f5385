package models

// AuroraForecast is the merged space-weather and ground-weather picture for
// one coordinate pair. Numeric fields are parsed once at the upstream
// boundary; display units are attached at the handler edge.
type AuroraForecast struct {
	KpIndex       float64 `json:"kpIndex"`
	Bz            float64 `json:"bz"`
	Speed         float64 `json:"speed"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"windSpeed"`
	UVIndex       float64 `json:"uvIndex"`
	CloudCover    float64 `json:"cloudCover"`
	IsDay         bool    `json:"isDay"`
	Probability   int     `json:"probability"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// ViewingSpot is one ranked aurora-viewing location from the prediction
// pipeline, enriched with ground weather.
type ViewingSpot struct {
	ID             string    `json:"id"`
	Coordinates    []float64 `json:"coordinates"` // [lat, lon]
	Probability    int       `json:"probability"`
	KpIndex        float64   `json:"kpIndex"`
	SolarWindSpeed float64   `json:"solarWindSpeed"`
	BzComponent    float64   `json:"bzComponent"`
	Location       string    `json:"location"`
	Temperature    float64   `json:"temperature"`
	CloudCover     float64   `json:"cloudCover"`
	Visibility     float64   `json:"visibility"`
	Rating         float64   `json:"rating"`
	UpdatedAt      string    `json:"updatedAt"`
}
