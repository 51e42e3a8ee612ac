package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"app/cache"
	"app/models"
)

// WeatherService fetches daily forecasts from Open-Meteo. Results are cached
// per location and day with a short TTL because forecasts update intraday.
// On any upstream failure the service degrades to an empty list.
type WeatherService struct {
	client     *http.Client
	cache      *cache.Cache
	baseURL    string
	geocodeURL string
	ttl        time.Duration
}

func NewWeatherService(c *cache.Cache, baseURL, geocodeURL string, ttl time.Duration) *WeatherService {
	return &WeatherService{
		client:     &http.Client{Timeout: providerTimeout},
		cache:      c,
		baseURL:    baseURL,
		geocodeURL: geocodeURL,
		ttl:        ttl,
	}
}

// Resolve turns request parameters into a Location. Explicit coordinates win;
// otherwise a place name is geocoded. Returns false when no location can be
// determined, in which case weather is simply skipped.
func (s *WeatherService) Resolve(ctx context.Context, lat, lon, place string) (models.Location, bool) {
	if lat != "" && lon != "" {
		latF, errLat := strconv.ParseFloat(lat, 64)
		lonF, errLon := strconv.ParseFloat(lon, 64)
		if errLat == nil && errLon == nil {
			return models.Location{Latitude: latF, Longitude: lonF}, true
		}
		log.Printf("ignoring unparseable coordinates lat=%q lon=%q", lat, lon)
	}
	if place != "" {
		loc, err := s.geocode(ctx, place)
		if err != nil {
			log.Printf("geocoding degraded for %q: %v", place, err)
			return models.Location{}, false
		}
		return loc, true
	}
	return models.Location{}, false
}

// Fetch returns up to days of daily forecast records for loc.
func (s *WeatherService) Fetch(ctx context.Context, loc models.Location, days int) []models.WeatherRecord {
	key := fmt.Sprintf("weather:%.3f:%.3f:%s", loc.Latitude, loc.Longitude, time.Now().UTC().Format("2006-01-02"))
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.WeatherRecord)
	}

	records, err := s.fetchForecast(ctx, loc, days)
	if err != nil {
		log.Printf("weather provider degraded for %.3f,%.3f, returning no weather: %v", loc.Latitude, loc.Longitude, err)
		return []models.WeatherRecord{}
	}

	s.cache.Set(key, records, s.ttl)
	return records
}

type openMeteoForecast struct {
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *WeatherService) fetchForecast(ctx context.Context, loc models.Location, days int) ([]models.WeatherRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	params.Set("forecast_days", strconv.Itoa(days))
	params.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var raw openMeteoForecast
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	records := make([]models.WeatherRecord, 0, len(raw.Daily.Time))
	for i, dayStr := range raw.Daily.Time {
		date, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			continue
		}
		rec := models.WeatherRecord{Date: date, Summary: summaryForCode(codeAt(raw.Daily.WeatherCode, i))}
		if i < len(raw.Daily.TempMax) {
			v := raw.Daily.TempMax[i]
			rec.TempMaxC = &v
		}
		if i < len(raw.Daily.TempMin) {
			v := raw.Daily.TempMin[i]
			rec.TempMinC = &v
		}
		records = append(records, rec)
	}
	return records, nil
}

func codeAt(codes []int, i int) int {
	if i < len(codes) {
		return codes[i]
	}
	return -1
}

// summaryForCode maps WMO weather codes to short human summaries.
func summaryForCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code >= 1 && code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
	} `json:"results"`
}

func (s *WeatherService) geocode(ctx context.Context, place string) (models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("name", place)
	params.Set("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geocodeURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return models.Location{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Location{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var raw geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.Location{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(raw.Results) == 0 {
		return models.Location{}, fmt.Errorf("no geocoding match for %q", place)
	}

	r := raw.Results[0]
	return models.Location{Latitude: r.Latitude, Longitude: r.Longitude, Name: r.Name}, nil
}
