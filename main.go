package main

import (
	"log"
	"os"
	"time"

	"app/ai"
	"app/cache"
	"app/config"
	"app/database"
	"app/handlers"
	"app/routes"
	"app/signals"
	"app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	// Set up the application configuration
	config.AppConfig.JWTSecret = jwtSecret
	config.AppConfig.GeminiAPIKey = geminiAPIKey
	config.AppConfig.ListenAddr = envOr("LISTEN_ADDR", ":3000")
	config.AppConfig.HolidayAPIBase = envOr("HOLIDAY_API_BASE", "https://date.nager.at")
	config.AppConfig.WeatherAPIBase = envOr("WEATHER_API_BASE", "https://api.open-meteo.com")
	config.AppConfig.GeocodeAPIBase = envOr("GEOCODE_API_BASE", "https://geocoding-api.open-meteo.com")
	config.AppConfig.DefaultRegion = envOr("HOLIDAY_REGION", "US")
	config.AppConfig.HolidayCacheTTL = envDurationOr("HOLIDAY_CACHE_TTL", 24*time.Hour)
	config.AppConfig.WeatherCacheTTL = envDurationOr("WEATHER_CACHE_TTL", 3*time.Hour)

	// Initialize database
	database.Connect(databaseURL)
	defer database.Close()

	// Shared signal cache with an hourly sweep of expired entries
	signalCache := cache.New()
	stopSweeper := signalCache.StartSweeper(time.Hour)
	defer stopSweeper()

	// Wire handler dependencies
	handlers.Store = store.NewPGStore(database.GetDB())
	handlers.Holidays = signals.NewHolidayService(signalCache, config.AppConfig.HolidayAPIBase, config.AppConfig.HolidayCacheTTL)
	handlers.Weather = signals.NewWeatherService(signalCache, config.AppConfig.WeatherAPIBase, config.AppConfig.GeocodeAPIBase, config.AppConfig.WeatherCacheTTL)
	handlers.AI = ai.NewClient(config.AppConfig.GeminiAPIKey)

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	log.Fatal(app.Listen(config.AppConfig.ListenAddr))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s, using default: %v", key, err)
		return fallback
	}
	return d
}
