package forecast

import "math"

// DefaultAlpha is the smoothing factor used by the forecast endpoint.
const DefaultAlpha = 0.5

// Result is an immutable point forecast with a confidence score in
// [0.5, 0.95].
type Result struct {
	PointForecast float64 `json:"pointForecast"`
	Confidence    float64 `json:"confidence"`
}

// Smooth runs simple exponential smoothing over an ordered series. The level
// starts at the first point and the final level, rounded and floored at zero,
// is the point forecast. An empty series yields the defined floor {0, 0.5}.
func Smooth(series []SeriesPoint, alpha float64) Result {
	if len(series) == 0 {
		return Result{PointForecast: 0, Confidence: 0.5}
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	level := series[0].Value
	for _, p := range series[1:] {
		level = alpha*p.Value + (1-alpha)*level
	}

	point := math.Round(level)
	if point < 0 {
		point = 0
	}
	return Result{PointForecast: point, Confidence: confidence(series)}
}

// confidence maps the coefficient of variation of the raw series onto
// [0.5, 0.95]: a flat series scores 0.95, a highly dispersed one 0.5.
func confidence(series []SeriesPoint) float64 {
	cv := coefficientOfVariation(series)
	c := 0.95 - 0.35*cv
	if c < 0.5 {
		return 0.5
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

func coefficientOfVariation(series []SeriesPoint) float64 {
	n := len(series)
	if n == 0 {
		return 1
	}

	var sum float64
	for _, p := range series {
		sum += p.Value
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 1
	}
	if n == 1 {
		// A single observation has zero variance by definition.
		return 0
	}

	var ss float64
	for _, p := range series {
		d := p.Value - mean
		ss += d * d
	}
	stddev := math.Sqrt(ss / float64(n-1))
	return stddev / mean
}
