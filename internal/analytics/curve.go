package analytics

import (
	session "roastlog/internal/session/domain"
)

// RatePoint is the rate of rise leading up to a recorded boundary, in
// degrees per minute. Gaps in the series are spanned: the rate is computed
// between consecutive present readings.
type RatePoint struct {
	BoundaryIndex int
	Seconds       int
	RatePerMinute float64
}

// RateOfRise derives the rate-of-rise curve from a dense series.
func RateOfRise(series []session.SeriesPoint) []RatePoint {
	var rates []RatePoint
	prev := -1
	for i, point := range series {
		if point.Value == nil {
			continue
		}
		if prev >= 0 {
			dt := point.Seconds - series[prev].Seconds
			if dt > 0 {
				delta := *point.Value - *series[prev].Value
				rates = append(rates, RatePoint{
					BoundaryIndex: point.BoundaryIndex,
					Seconds:       point.Seconds,
					RatePerMinute: delta / float64(dt) * 60,
				})
			}
		}
		prev = i
	}
	return rates
}

// Summary describes a roast curve for status displays and reports.
type Summary struct {
	ReadingCount      int
	MaxValue          float64
	MaxSeconds        int
	FinalValue        float64
	FinalSeconds      int
	PeakRatePerMinute float64
}

// Summarize condenses a dense series into a curve summary. The zero Summary
// is returned for a series without any readings.
func Summarize(series []session.SeriesPoint) Summary {
	var summary Summary
	for _, point := range series {
		if point.Value == nil {
			continue
		}
		value := *point.Value
		summary.ReadingCount++
		if summary.ReadingCount == 1 || value > summary.MaxValue {
			summary.MaxValue = value
			summary.MaxSeconds = point.Seconds
		}
		summary.FinalValue = value
		summary.FinalSeconds = point.Seconds
	}
	for _, rate := range RateOfRise(series) {
		if rate.RatePerMinute > summary.PeakRatePerMinute {
			summary.PeakRatePerMinute = rate.RatePerMinute
		}
	}
	return summary
}
