package routes

import (
	"app/handlers"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Forecast Routes ---
	forecast := api.Group("/forecast", middleware.JWTMiddleware, middleware.MerchantRequired)
	forecast.Get("/context/:merchantId", handlers.HandleGetForecastContext)
	forecast.Get("/generate/:merchantId", handlers.HandleGenerateForecast)
	forecast.Get("/historical/:merchantId", handlers.HandleGetHistoricalTrending)
	forecast.Post("/ai/:merchantId", handlers.HandleGenerateAIInsights)
	forecast.Get("/holidays/:merchantId", handlers.HandleGetHolidays)
}
