package config

import "time"

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	JWTSecret    string
	GeminiAPIKey string
	ListenAddr   string

	// Signal provider endpoints. Overridable for tests and self-hosted mirrors.
	HolidayAPIBase string
	WeatherAPIBase string
	GeocodeAPIBase string

	// Region used for holiday lookups when a merchant has no explicit region.
	DefaultRegion string

	// Holiday calendars rarely change; weather forecasts update intraday.
	HolidayCacheTTL time.Duration
	WeatherCacheTTL time.Duration
}

// AppConfig holds the application-wide configuration
var AppConfig Config
