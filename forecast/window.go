package forecast

import (
	"sort"
	"time"

	"app/models"
)

// HorizonDays is the forecast horizon applied to calendar and weather
// signals before they reach the AI prompt.
const HorizonDays = 7

// UpcomingLimit caps the unrestricted display view of holidays.
const UpcomingLimit = 10

// HorizonWindow returns [todayMidnight, todayMidnight+days): inclusive of
// the lower bound, exclusive of the upper.
func HorizonWindow(today time.Time, days int) (time.Time, time.Time) {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return start, start.AddDate(0, 0, days)
}

// FilterHolidays keeps holidays with start <= date < end.
func FilterHolidays(holidays []models.HolidayRecord, start, end time.Time) []models.HolidayRecord {
	out := make([]models.HolidayRecord, 0, len(holidays))
	for _, h := range holidays {
		if !h.Date.Before(start) && h.Date.Before(end) {
			out = append(out, h)
		}
	}
	return out
}

// FilterWeather keeps records with start <= date < end.
func FilterWeather(records []models.WeatherRecord, start, end time.Time) []models.WeatherRecord {
	out := make([]models.WeatherRecord, 0, len(records))
	for _, w := range records {
		if !w.Date.Before(start) && w.Date.Before(end) {
			out = append(out, w)
		}
	}
	return out
}

// UpcomingHolidays is the display view: the soonest holidays on or after
// today, unrestricted by the forecast horizon. It is intentionally distinct
// from FilterHolidays and the two must never be conflated.
func UpcomingHolidays(holidays []models.HolidayRecord, today time.Time, limit int) []models.HolidayRecord {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	out := make([]models.HolidayRecord, 0, len(holidays))
	for _, h := range holidays {
		if !h.Date.Before(start) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
