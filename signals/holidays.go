package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"app/cache"
	"app/models"
)

const providerTimeout = 10 * time.Second

// HolidayService fetches public holidays from the Nager.Date API, consulting
// the shared TTL cache first. Upstream failure is never fatal: the service
// degrades to a built-in static table and logs the degradation.
type HolidayService struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	ttl     time.Duration
}

func NewHolidayService(c *cache.Cache, baseURL string, ttl time.Duration) *HolidayService {
	return &HolidayService{
		client:  &http.Client{Timeout: providerTimeout},
		cache:   c,
		baseURL: baseURL,
		ttl:     ttl,
	}
}

// Fetch returns all holidays for the region across the given years.
func (s *HolidayService) Fetch(ctx context.Context, region string, years []int) []models.HolidayRecord {
	if len(years) == 0 {
		return []models.HolidayRecord{}
	}

	key := fmt.Sprintf("holidays:%s:%d-%d", region, years[0], years[len(years)-1])
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.HolidayRecord)
	}

	holidays := make([]models.HolidayRecord, 0)
	for _, year := range years {
		yearHolidays, err := s.fetchYear(ctx, region, year)
		if err != nil {
			log.Printf("holiday provider degraded for %s/%d, using static fallback: %v", region, year, err)
			return staticHolidays(region, years)
		}
		holidays = append(holidays, yearHolidays...)
	}

	s.cache.Set(key, holidays, s.ttl)
	return holidays
}

// nagerHoliday mirrors the relevant fields of the Nager.Date v3 response.
type nagerHoliday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Types     []string `json:"types"`
}

func (s *HolidayService) fetchYear(ctx context.Context, region string, year int) ([]models.HolidayRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", s.baseURL, year, region)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("holiday provider returned status %d", resp.StatusCode)
	}

	var raw []nagerHoliday
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode holiday response: %w", err)
	}

	holidays := make([]models.HolidayRecord, 0, len(raw))
	for _, h := range raw {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		name := h.Name
		if h.LocalName != "" {
			name = h.LocalName
		}
		holidays = append(holidays, models.HolidayRecord{
			Date:     date,
			Name:     name,
			IsPublic: isPublicType(h.Types),
		})
	}
	return holidays, nil
}

func isPublicType(types []string) bool {
	for _, t := range types {
		if t == "Public" {
			return true
		}
	}
	return false
}

type annualHoliday struct {
	month time.Month
	day   int
	name  string
}

// Fixed-date holidays only; movable feasts are not worth approximating in a
// degraded path.
var staticHolidayTable = map[string][]annualHoliday{
	"US": {
		{time.January, 1, "New Year's Day"},
		{time.June, 19, "Juneteenth"},
		{time.July, 4, "Independence Day"},
		{time.November, 11, "Veterans Day"},
		{time.December, 25, "Christmas Day"},
	},
	"GB": {
		{time.January, 1, "New Year's Day"},
		{time.December, 25, "Christmas Day"},
		{time.December, 26, "Boxing Day"},
	},
}

var genericStaticHolidays = []annualHoliday{
	{time.January, 1, "New Year's Day"},
	{time.December, 25, "Christmas Day"},
}

// staticHolidays materializes the fallback table for the requested years.
func staticHolidays(region string, years []int) []models.HolidayRecord {
	table, ok := staticHolidayTable[region]
	if !ok {
		table = genericStaticHolidays
	}

	holidays := make([]models.HolidayRecord, 0, len(table)*len(years))
	for _, year := range years {
		for _, h := range table {
			holidays = append(holidays, models.HolidayRecord{
				Date:     time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC),
				Name:     h.name,
				IsPublic: true,
			})
		}
	}
	return holidays
}
