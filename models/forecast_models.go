package models

import "time"

// HolidayRecord is a single calendar holiday, from the external provider or
// the built-in fallback table.
type HolidayRecord struct {
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
	IsPublic bool      `json:"is_public"`
}

// WeatherRecord is the forecast summary for one day at a location.
type WeatherRecord struct {
	Date     time.Time `json:"date"`
	Summary  string    `json:"summary"`
	TempMaxC *float64  `json:"temp_max_c,omitempty"`
	TempMinC *float64  `json:"temp_min_c,omitempty"`
}

// Location identifies where weather is fetched for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// TrendItem is an estimated per-product unit demand over some window.
// UnitsEstimate is derived from revenue divided by unit price and falls back
// to 1 when the price is zero or unknown.
type TrendItem struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	UnitsEstimate float64 `json:"unitsEstimate"`
}

// ProductForecast is one row of the smoothed demand forecast.
type ProductForecast struct {
	ProductID           string  `json:"productId"`
	ProductName         string  `json:"productName"`
	DemandForecastUnits float64 `json:"demandForecastUnits"`
	ConfidenceScore     float64 `json:"confidenceScore"`
}

// HeadsUpItem is a product-level demand alert parsed out of the completion
// service's response. The validate tags are the structural contract the
// untrusted response must meet per item.
type HeadsUpItem struct {
	ProductID   string `json:"productId" validate:"required"`
	ProductName string `json:"productName" validate:"required"`
	DemandLevel string `json:"demandLevel" validate:"required,oneof=high medium low"`
	Anomaly     bool   `json:"anomaly"`
	Rationale   string `json:"rationale"`
}

// DateRange is an inclusive start / exclusive-or-inclusive end pair, as
// documented on each use.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AIInsightsRequest is the body of the AI heads-up endpoint: context signals
// the caller already has in hand.
type AIInsightsRequest struct {
	Holidays           []HolidayRecord `json:"holidays"`
	Weather            []WeatherRecord `json:"weather"`
	HistoricalTrending []TrendItem     `json:"historicalTrending"`
}
