package forecast

import (
	"sort"
	"time"

	"app/models"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one calendar-month bucket of estimated unit demand.
type SeriesPoint struct {
	PeriodKey string  `json:"periodKey"` // "YYYY-MM"
	Value     float64 `json:"value"`
}

// UnitEstimate approximates units sold from a line total and a unit price.
// With no usable price the estimate is 1 — a documented fallback, not an
// error. The division runs on decimals so 125.00/25.00 is exactly 5.
func UnitEstimate(lineTotal, unitPrice float64) float64 {
	if unitPrice <= 0 {
		return 1
	}
	units, _ := decimal.NewFromFloat(lineTotal).Div(decimal.NewFromFloat(unitPrice)).Float64()
	if units < 0 {
		return 0
	}
	return units
}

// BuildMonthlySeries buckets line items into per-product monthly demand
// series, ordered ascending by period. Items whose order date cannot be
// resolved are dropped silently as incomplete data.
func BuildMonthlySeries(orders []models.SalesOrder, items []models.OrderItem, prices map[string]float64) map[string][]SeriesPoint {
	orderDates := make(map[string]time.Time, len(orders))
	for _, o := range orders {
		orderDates[o.ID] = o.OrderDate
	}

	buckets := make(map[string]map[string]float64)
	for _, item := range items {
		date, ok := orderDates[item.OrderID]
		if !ok {
			continue
		}
		period := date.Format("2006-01")
		if buckets[item.ProductID] == nil {
			buckets[item.ProductID] = make(map[string]float64)
		}
		buckets[item.ProductID][period] += UnitEstimate(item.LineTotal, prices[item.ProductID])
	}

	series := make(map[string][]SeriesPoint, len(buckets))
	for productID, byPeriod := range buckets {
		points := make([]SeriesPoint, 0, len(byPeriod))
		for period, value := range byPeriod {
			points = append(points, SeriesPoint{PeriodKey: period, Value: value})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].PeriodKey < points[j].PeriodKey })
		series[productID] = points
	}
	return series
}
