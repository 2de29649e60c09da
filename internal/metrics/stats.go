// Package metrics derives the per-vault analytics fields from normalized
// venue documents and fills. Every calculator is a pure function: the same
// inputs always produce the same row, and malformed inputs degrade to zero
// values instead of errors.
package metrics

import (
	"math"

	"github.com/vault-analytics/internal/venue"
)

const (
	msPerDay           = int64(24 * 60 * 60 * 1000)
	daysPerYear        = 365.0
	annualRiskFreeRate = 0.05
	dailyRiskFreeRate  = annualRiskFreeRate / daysPerYear
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 standard deviation; 0 for fewer than 2 samples.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// populationStdDev is the n standard deviation; 0 for fewer than 2 samples.
func populationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// dailyReturns computes step-over-step returns, skipping steps whose
// starting value is zero.
func dailyReturns(series []venue.Point) []float64 {
	returns := make([]float64, 0, len(series))
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (series[i].Value-prev)/prev)
	}
	return returns
}

// pctChange is the percent change between the first and last point of a
// bucket's accountValueHistory; 0 with fewer than 2 points or a zero start.
func pctChange(bucket venue.Document) float64 {
	series := bucket.Series("accountValueHistory")
	if len(series) >= 2 && series[0].Value != 0 {
		return (series[len(series)-1].Value - series[0].Value) / series[0].Value * 100.0
	}
	return 0.0
}
