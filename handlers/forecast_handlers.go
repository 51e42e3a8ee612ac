package handlers

import (
	"context"
	"log"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"app/ai"
	"app/config"
	"app/forecast"
	"app/middleware"
	"app/models"
	"app/store"
	"app/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// HolidaySource and WeatherSource are the signal-provider contracts the
// handlers consume. Fetch never fails; degradation happens inside the
// implementation.
type HolidaySource interface {
	Fetch(ctx context.Context, region string, years []int) []models.HolidayRecord
}

type WeatherSource interface {
	Resolve(ctx context.Context, lat, lon, place string) (models.Location, bool)
	Fetch(ctx context.Context, loc models.Location, days int) []models.WeatherRecord
}

// Completer invokes the completion service with a prompt.
type Completer interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Wired in main; tests substitute fakes.
var (
	Store    store.SalesStore
	Holidays HolidaySource
	Weather  WeatherSource
	AI       Completer
)

// timeNow is swapped in tests to pin "today".
var timeNow = time.Now

// storageTimeout bounds database reads the same way the signal providers
// bound their HTTP calls.
const storageTimeout = 10 * time.Second

// requireTenant checks that the authenticated merchant matches the path
// tenant; the heavier ownership verification happens upstream. When it
// returns false the response has already been written.
func requireTenant(c *fiber.Ctx) (string, bool) {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
		return "", false
	}
	merchantID := c.Params("merchantId")
	if merchantID == "" || merchantID != claims.UserID {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Forbidden"})
		return "", false
	}
	return merchantID, true
}

// HandleGetForecastContext returns holiday and weather signals for the
// merchant: the unrestricted upcoming holiday view for display plus the
// horizon-windowed views that feed the AI input. The two fetches run
// concurrently; both complete (success or fallback) before fusion.
// GET /api/v1/forecast/context/:merchantId
func HandleGetForecastContext(c *fiber.Ctx) error {
	if _, ok := requireTenant(c); !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	today := timeNow().UTC()
	years := []int{today.Year(), today.Year() + 1}

	loc, hasLoc := Weather.Resolve(ctx, c.Query("lat"), c.Query("lon"), c.Query("place_id"))

	var holidays []models.HolidayRecord
	weather := []models.WeatherRecord{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		holidays = Holidays.Fetch(gctx, config.AppConfig.DefaultRegion, years)
		return nil
	})
	g.Go(func() error {
		if hasLoc {
			weather = Weather.Fetch(gctx, loc, forecast.HorizonDays)
		}
		return nil
	})
	_ = g.Wait()

	start, end := forecast.HorizonWindow(today, forecast.HorizonDays)
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"holidays":         forecast.UpcomingHolidays(holidays, today, forecast.UpcomingLimit),
		"holidaysInWindow": forecast.FilterHolidays(holidays, start, end),
		"weather":          forecast.FilterWeather(weather, start, end),
		"location":         loc,
	}})
}

// HandleGenerateForecast produces the baseline smoothed demand forecast per
// product from the last twelve months of sales.
// GET /api/v1/forecast/generate/:merchantId
func HandleGenerateForecast(c *fiber.Ctx) error {
	merchantID, ok := requireTenant(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	today := timeNow().UTC()

	orders, err := Store.OrdersBetween(ctx, merchantID, today.AddDate(-1, 0, 0), today)
	if err != nil {
		log.Printf("Error fetching orders for forecast: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch sales data"})
	}

	orderIDs := make([]string, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	items, err := Store.LineItemsForOrders(ctx, orderIDs)
	if err != nil {
		log.Printf("Error fetching line items for forecast: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch sales data"})
	}
	prices, err := Store.ProductPrices(ctx, merchantID)
	if err != nil {
		log.Printf("Error fetching prices for forecast: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch product data"})
	}
	products, err := Store.Products(ctx, merchantID)
	if err != nil {
		log.Printf("Error fetching products for forecast: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch product data"})
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	series := forecast.BuildMonthlySeries(orders, items, prices)
	results := make([]models.ProductForecast, 0, len(series))
	for productID, points := range series {
		r := forecast.Smooth(points, forecast.DefaultAlpha)
		name := names[productID]
		if name == "" {
			name = productID
		}
		results = append(results, models.ProductForecast{
			ProductID:           productID,
			ProductName:         name,
			DemandForecastUnits: r.PointForecast,
			ConfidenceScore:     r.Confidence,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ProductName < results[j].ProductName })

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"forecast": results}})
}

// HandleGetHistoricalTrending estimates unit demand in the same window one
// year ago. An optional date query overrides "today" as the anchor.
// GET /api/v1/forecast/historical/:merchantId
func HandleGetHistoricalTrending(c *fiber.Ctx) error {
	merchantID, ok := requireTenant(c)
	if !ok {
		return nil
	}

	today := timeNow().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := utils.ParseFlexibleDate(dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid date format"})
		}
		today = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	_, start, end := forecast.HistoricalWindow(today)

	orders, err := Store.OrdersBetween(ctx, merchantID, start, end)
	if err != nil {
		log.Printf("Error fetching historical orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch historical data"})
	}
	orderIDs := make([]string, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	items, err := Store.LineItemsForOrders(ctx, orderIDs)
	if err != nil {
		log.Printf("Error fetching historical line items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch historical data"})
	}
	prices, err := Store.ProductPrices(ctx, merchantID)
	if err != nil {
		log.Printf("Error fetching prices for historical trending: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch product data"})
	}

	trending := forecast.BuildTrendItems(orders, items, prices)

	data := fiber.Map{
		"dateRange":          models.DateRange{Start: start, End: end},
		"historicalTrending": trending,
	}
	if len(trending) == 0 {
		data["message"] = "No transactions found in the year-over-year window"
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// HandleGenerateAIInsights fuses the posted signals with recent trending and
// asks the completion service for product-level heads-up alerts. A response
// that cannot be parsed is a distinct failure carrying the raw text; it is
// not retried.
// POST /api/v1/forecast/ai/:merchantId
func HandleGenerateAIInsights(c *fiber.Ctx) error {
	merchantID, ok := requireTenant(c)
	if !ok {
		return nil
	}

	var req models.AIInsightsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	storeCtx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	today := timeNow().UTC()
	start, end := forecast.HorizonWindow(today, forecast.HorizonDays)

	products, err := Store.Products(storeCtx, merchantID)
	if err != nil {
		log.Printf("Error fetching products for AI insights: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch product data"})
	}
	trending, err := recentTrending(storeCtx, merchantID, today)
	if err != nil {
		log.Printf("Error computing recent trending: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch sales data"})
	}

	prompt := ai.BuildPrompt(
		products,
		trending,
		req.HistoricalTrending,
		forecast.FilterHolidays(req.Holidays, start, end),
		forecast.FilterWeather(req.Weather, start, end),
		models.DateRange{Start: start, End: end},
	)

	// The completion call carries its own, longer deadline.
	raw, err := AI.Invoke(context.Background(), prompt)
	if err != nil {
		log.Printf("Error from completion service: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "message": "Completion service unavailable"})
	}

	insights, err := ai.ExtractInsights(raw)
	if err != nil {
		log.Printf("Completion response parse failure: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": "Completion response could not be parsed",
			"raw":     excerpt(raw, 500),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"insights": fiber.Map{
			"headsUp": insights.HeadsUp,
			"window":  ai.WindowLabel(start, end),
			"notes":   insights.Notes,
		},
	}})
}

// HandleGetHolidays returns the holiday calendar for the requested year and
// the one after it, for display.
// GET /api/v1/forecast/holidays/:merchantId
func HandleGetHolidays(c *fiber.Ctx) error {
	if _, ok := requireTenant(c); !ok {
		return nil
	}

	today := timeNow().UTC()
	year := today.Year()
	if yearStr := c.Query("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 1900 || parsed > 9999 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid year"})
		}
		year = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	holidays := Holidays.Fetch(ctx, config.AppConfig.DefaultRegion, []int{year, year + 1})
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"currentDate": today.Format("2006-01-02"),
		"holidays":    holidays,
	}})
}

// recentTrending aggregates the last fourteen days of sales into TrendItems
// for the prompt's current-trend section.
func recentTrending(ctx context.Context, merchantID string, today time.Time) ([]models.TrendItem, error) {
	orders, err := Store.OrdersBetween(ctx, merchantID, today.AddDate(0, 0, -14), today)
	if err != nil {
		return nil, err
	}
	orderIDs := make([]string, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	items, err := Store.LineItemsForOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	prices, err := Store.ProductPrices(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return forecast.BuildTrendItems(orders, items, prices), nil
}

// excerpt truncates s to at most max bytes without splitting a rune.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
