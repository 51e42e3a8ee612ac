package forecast

import (
	"sort"
	"time"

	"app/models"
)

// HistoricalWindow derives the year-over-year comparison window: the center
// is exactly one calendar year before today (AddDate, not 365 days, so leap
// years are handled), and the window spans seven days either side of it,
// inclusive at both ends.
func HistoricalWindow(today time.Time) (center, start, end time.Time) {
	center = today.AddDate(-1, 0, 0)
	return center, center.AddDate(0, 0, -7), center.AddDate(0, 0, 7)
}

// BuildTrendItems aggregates line items into per-product unit estimates,
// sorted descending by units. Items with no resolvable order date are
// dropped. An empty result is a valid outcome, not an error.
func BuildTrendItems(orders []models.SalesOrder, items []models.OrderItem, prices map[string]float64) []models.TrendItem {
	orderDates := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		orderDates[o.ID] = struct{}{}
	}

	units := make(map[string]float64)
	names := make(map[string]string)
	for _, item := range items {
		if _, ok := orderDates[item.OrderID]; !ok {
			continue
		}
		units[item.ProductID] += UnitEstimate(item.LineTotal, prices[item.ProductID])
		if item.ProductName != nil && names[item.ProductID] == "" {
			names[item.ProductID] = *item.ProductName
		}
	}

	trending := make([]models.TrendItem, 0, len(units))
	for productID, u := range units {
		name := names[productID]
		if name == "" {
			name = productID
		}
		trending = append(trending, models.TrendItem{ProductID: productID, ProductName: name, UnitsEstimate: u})
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].UnitsEstimate != trending[j].UnitsEstimate {
			return trending[i].UnitsEstimate > trending[j].UnitsEstimate
		}
		return trending[i].ProductName < trending[j].ProductName
	})
	return trending
}
