package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func points(vals ...float64) []SeriesPoint {
	out := make([]SeriesPoint, len(vals))
	for i, v := range vals {
		out[i] = SeriesPoint{PeriodKey: "2024-01", Value: v}
	}
	return out
}

func TestSmoothConstantSeries(t *testing.T) {
	for _, alpha := range []float64{0.1, 0.5, 1.0} {
		r := Smooth(points(10, 10, 10), alpha)
		assert.Equal(t, 10.0, r.PointForecast, "alpha=%v", alpha)
		assert.Equal(t, 0.95, r.Confidence, "zero variance must score max confidence")
	}
}

func TestSmoothEmptySeries(t *testing.T) {
	r := Smooth(nil, 0.5)
	assert.Equal(t, 0.0, r.PointForecast)
	assert.Equal(t, 0.5, r.Confidence)
}

func TestSmoothSinglePoint(t *testing.T) {
	r := Smooth(points(42), 0.5)
	assert.Equal(t, 42.0, r.PointForecast)
	assert.Equal(t, 0.95, r.Confidence, "single observation has zero variance")
}

func TestSmoothLevelUpdate(t *testing.T) {
	// S0=10, S1=0.5*20+0.5*10=15, S2=0.5*30+0.5*15=22.5 -> rounds to 23
	r := Smooth(points(10, 20, 30), 0.5)
	assert.Equal(t, 23.0, r.PointForecast)
}

func TestSmoothZeroMeanSeries(t *testing.T) {
	r := Smooth(points(0, 0, 0), 0.5)
	assert.Equal(t, 0.0, r.PointForecast)
	// mean of zero is treated as cv=1: 0.95 - 0.35 = 0.60
	assert.InDelta(t, 0.60, r.Confidence, 1e-9)
}

func TestConfidenceClampedAtFloor(t *testing.T) {
	// Highly dispersed series: cv well above (0.95-0.5)/0.35.
	r := Smooth(points(1, 1, 1, 1, 1, 200), 0.5)
	assert.Equal(t, 0.5, r.Confidence)
}

func TestSmoothInvalidAlphaFallsBackToDefault(t *testing.T) {
	want := Smooth(points(10, 20, 30), DefaultAlpha)
	got := Smooth(points(10, 20, 30), -3)
	assert.Equal(t, want, got)
}
