package signals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"app/cache"
	"app/models"

	"github.com/stretchr/testify/assert"
)

func TestHolidayFetchParsesProviderResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/PublicHolidays/2025/US", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2025-07-04","localName":"Independence Day","name":"Independence Day","types":["Public"]},
			{"date":"2025-10-13","localName":"Columbus Day","name":"Columbus Day","types":["Optional"]}
		]`))
	}))
	defer srv.Close()

	s := NewHolidayService(cache.New(), srv.URL, time.Hour)
	holidays := s.Fetch(context.Background(), "US", []int{2025})

	if assert.Len(t, holidays, 2) {
		assert.Equal(t, "Independence Day", holidays[0].Name)
		assert.True(t, holidays[0].IsPublic)
		assert.False(t, holidays[1].IsPublic)
	}
}

func TestHolidayFetchUsesCacheOnSecondCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"date":"2025-01-01","localName":"New Year's Day","name":"New Year's Day","types":["Public"]}]`))
	}))
	defer srv.Close()

	s := NewHolidayService(cache.New(), srv.URL, time.Hour)
	first := s.Fetch(context.Background(), "US", []int{2025})
	second := s.Fetch(context.Background(), "US", []int{2025})

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "hit must not reach the provider")
	assert.Equal(t, first, second)
}

func TestHolidayFetchFallsBackOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := cache.New()
	s := NewHolidayService(c, srv.URL, time.Hour)
	holidays := s.Fetch(context.Background(), "US", []int{2025, 2026})

	if assert.NotEmpty(t, holidays, "fallback table must kick in") {
		assert.Equal(t, "New Year's Day", holidays[0].Name)
	}
	assert.Equal(t, 0, c.Len(), "degraded results are not cached")
}

func TestHolidayFallbackForUnknownRegion(t *testing.T) {
	holidays := staticHolidays("ZZ", []int{2025})
	assert.Len(t, holidays, len(genericStaticHolidays))
}

func TestWeatherFetchParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{"daily":{
			"time":["2025-11-06","2025-11-07"],
			"weather_code":[0,61],
			"temperature_2m_max":[12.5,9.0],
			"temperature_2m_min":[4.0,2.5]
		}}`))
	}))
	defer srv.Close()

	s := NewWeatherService(cache.New(), srv.URL, srv.URL, time.Hour)
	records := s.Fetch(context.Background(), locNYC(), 7)

	if assert.Len(t, records, 2) {
		assert.Equal(t, "clear", records[0].Summary)
		assert.Equal(t, "rain", records[1].Summary)
		assert.Equal(t, 12.5, *records[0].TempMaxC)
	}
}

func TestWeatherFetchDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWeatherService(cache.New(), srv.URL, srv.URL, time.Hour)
	records := s.Fetch(context.Background(), locNYC(), 7)

	assert.NotNil(t, records)
	assert.Empty(t, records, "weather failure is degraded, never fatal")
}

func TestResolvePrefersCoordinates(t *testing.T) {
	s := NewWeatherService(cache.New(), "http://unused", "http://unused", time.Hour)

	loc, ok := s.Resolve(context.Background(), "40.71", "-74.00", "ignored")
	assert.True(t, ok)
	assert.Equal(t, 40.71, loc.Latitude)
	assert.Equal(t, -74.00, loc.Longitude)
}

func TestResolveGeocodesPlaceName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Yangon", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"results":[{"latitude":16.87,"longitude":96.20,"name":"Yangon"}]}`))
	}))
	defer srv.Close()

	s := NewWeatherService(cache.New(), srv.URL, srv.URL, time.Hour)
	loc, ok := s.Resolve(context.Background(), "", "", "Yangon")

	assert.True(t, ok)
	assert.Equal(t, "Yangon", loc.Name)
	assert.Equal(t, 16.87, loc.Latitude)
}

func TestResolveWithNothingGiven(t *testing.T) {
	s := NewWeatherService(cache.New(), "http://unused", "http://unused", time.Hour)
	_, ok := s.Resolve(context.Background(), "", "", "")
	assert.False(t, ok)
}

func locNYC() models.Location {
	return models.Location{Latitude: 40.713, Longitude: -74.006, Name: "New York"}
}
