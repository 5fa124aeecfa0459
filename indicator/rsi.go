package indicator

import (
	"fmt"

	"github.com/dnldd/papertrade/shared"
	"github.com/markcheno/go-talib"
)

const (
	// DefaultRSIPeriod is the standard lookback period for the rsi.
	DefaultRSIPeriod = 14
	// TrendWindow is the number of recent rsi values used for trend classification.
	TrendWindow = 5
	// MinClassifiablePoints is the minimum rsi series length required before
	// a trend classification can be acted on.
	MinClassifiablePoints = 3

	// Trend classification thresholds on the net change of the window.
	strongChangeThreshold = 5
	mildChangeThreshold   = 2
	// volatileRangeThreshold is the window range beyond which a directionless
	// series is considered volatile.
	volatileRangeThreshold = 10
)

// RelativeStrengthIndex computes the Wilder-smoothed rsi series, bounded to
// [0, 100], for the provided closes ordered ascending by date. The returned
// series excludes the warm-up values of the period.
func RelativeStrengthIndex(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: rsi period must be positive, got %d", shared.ErrInvalidInput, period)
	}
	if len(closes) <= period {
		return nil, fmt.Errorf("%w: rsi requires at least %d closes for %d-period, got %d",
			shared.ErrDataUnavailable, period+1, period, len(closes))
	}

	series := talib.Rsi(closes, period)

	return series[period:], nil
}

// ClassifyTrend classifies the provided recent rsi values. The change rules
// are evaluated before the range rule, so a series with both a directional
// net change and a high range resolves to the change-based label.
func ClassifyTrend(recent []float64) shared.RSITrend {
	if len(recent) < 2 {
		return shared.UnknownTrend
	}

	change := recent[len(recent)-1] - recent[0]
	switch {
	case change > strongChangeThreshold:
		return shared.StronglyBullishTrend
	case change > mildChangeThreshold:
		return shared.BullishTrend
	case change < -strongChangeThreshold:
		return shared.StronglyBearishTrend
	case change < -mildChangeThreshold:
		return shared.BearishTrend
	}

	min, max := recent[0], recent[0]
	for idx := range recent {
		if recent[idx] < min {
			min = recent[idx]
		}
		if recent[idx] > max {
			max = recent[idx]
		}
	}

	if max-min > volatileRangeThreshold {
		return shared.VolatileTrend
	}

	return shared.NeutralTrend
}

// RecentTrend classifies the trailing trend window of the provided rsi series.
func RecentTrend(series []float64) shared.RSITrend {
	if len(series) > TrendWindow {
		series = series[len(series)-TrendWindow:]
	}

	return ClassifyTrend(series)
}
