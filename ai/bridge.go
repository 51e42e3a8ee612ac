package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"app/models"

	"github.com/go-playground/validator/v10"
)

// MaxPromptProducts bounds the catalog section of the prompt regardless of
// tenant size.
const MaxPromptProducts = 300

// ParseError is returned when the completion response contains no JSON in
// any accepted shape. It carries the raw text for diagnostics and is never
// retried automatically.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "completion response did not contain valid JSON"
}

// Insights is the structured payload parsed out of the completion response.
type Insights struct {
	HeadsUp []models.HeadsUpItem `json:"headsUp"`
	Notes   []string             `json:"notes"`
}

var validate = validator.New()

// BuildPrompt renders a bounded, deterministic prompt from the fused
// signals. Products are deduplicated by exact name and capped at
// MaxPromptProducts.
func BuildPrompt(products []models.Product, trending, historical []models.TrendItem, holidays []models.HolidayRecord, weather []models.WeatherRecord, window models.DateRange) string {
	var b strings.Builder

	b.WriteString("You are an expert retail demand analyst for a multi-shop business.\n")
	fmt.Fprintf(&b, "Forecast window: %s to %s.\n\n", window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	b.WriteString("Catalog:\n")
	seen := make(map[string]bool, len(products))
	count := 0
	for _, p := range products {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		fmt.Fprintf(&b, "- %s (id %s)\n", p.Name, p.ID)
		count++
		if count >= MaxPromptProducts {
			break
		}
	}

	b.WriteString("\nRecent trending (estimated units):\n")
	writeTrend(&b, trending)

	b.WriteString("\nSame window last year (estimated units):\n")
	writeTrend(&b, historical)

	b.WriteString("\nHolidays in window:\n")
	if len(holidays) == 0 {
		b.WriteString("- none\n")
	}
	for _, h := range holidays {
		fmt.Fprintf(&b, "- %s: %s\n", h.Date.Format("2006-01-02"), h.Name)
	}

	b.WriteString("\nWeather in window:\n")
	if len(weather) == 0 {
		b.WriteString("- unavailable\n")
	}
	for _, w := range weather {
		fmt.Fprintf(&b, "- %s: %s\n", w.Date.Format("2006-01-02"), w.Summary)
	}

	b.WriteString(`
Respond with a single minified JSON object and nothing else, in this exact shape:
{"headsUp":[{"productId":"string","productName":"string","demandLevel":"high|medium|low","anomaly":false,"rationale":"string"}],"notes":["string"]}
`)
	return b.String()
}

func writeTrend(b *strings.Builder, items []models.TrendItem) {
	if len(items) == 0 {
		b.WriteString("- no data\n")
		return
	}
	for _, t := range items {
		fmt.Fprintf(b, "- %s: %.1f\n", t.ProductName, t.UnitsEstimate)
	}
}

// ExtractInsights parses the completion response. Three shapes are accepted
// in priority order: raw JSON, a json-labeled code fence, and an unlabeled
// code fence. Whole-payload parse success is the hard gate; after it,
// individual items failing structural validation are dropped with a note
// rather than failing the request.
func ExtractInsights(raw string) (*Insights, error) {
	for _, candidate := range jsonCandidates(raw) {
		var parsed Insights
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		return sanitize(&parsed), nil
	}
	return nil, &ParseError{Raw: raw}
}

// jsonCandidates returns the payloads to attempt, most specific first.
func jsonCandidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	candidates := []string{trimmed}

	if fenced, ok := insideFence(trimmed, "```json"); ok {
		candidates = append(candidates, fenced)
	}
	if fenced, ok := insideFence(trimmed, "```"); ok {
		candidates = append(candidates, fenced)
	}
	return candidates
}

func insideFence(text, opener string) (string, bool) {
	start := strings.Index(text, opener)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(opener):]
	// Skip any language tag up to the end of the opening line.
	if idx := strings.Index(rest, "\n"); idx >= 0 {
		rest = rest[idx+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func sanitize(parsed *Insights) *Insights {
	valid := make([]models.HeadsUpItem, 0, len(parsed.HeadsUp))
	dropped := 0
	for _, item := range parsed.HeadsUp {
		if err := validate.Struct(item); err != nil {
			dropped++
			continue
		}
		valid = append(valid, item)
	}
	parsed.HeadsUp = valid
	if parsed.Notes == nil {
		parsed.Notes = []string{}
	}
	if dropped > 0 {
		parsed.Notes = append(parsed.Notes, fmt.Sprintf("discarded %d malformed heads-up item(s)", dropped))
	}
	return parsed
}

// WindowLabel formats the forecast window for the response payload. The end
// shown is the last included day.
func WindowLabel(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
}
