package decision

import (
	"github.com/dnldd/papertrade/shared"
)

const (
	// RSI level thresholds.
	stronglyOversoldRSI   = 25
	oversoldRSI           = 30
	overboughtRSI         = 70
	stronglyOverboughtRSI = 75

	// Sentiment value thresholds.
	strongSentiment = 0.5
	mildSentiment   = 0.2

	// News volume thresholds.
	sufficientNewsCount = 3
	highVolumeNewsCount = 5
)

// RSIContext carries the current rsi value and its recent trend.
type RSIContext struct {
	Current float64
	Trend   shared.RSITrend
}

// SentimentContext carries today's average sentiment, news count and trend.
type SentimentContext struct {
	Value float64
	Count int
	Trend shared.SentimentTrend
}

// Decide fuses the provided rsi and sentiment contexts into a trading signal.
// It is deterministic and performs no i/o. The rules overlap, so they are
// evaluated strictly in order with the first match winning.
func Decide(rsi RSIContext, sentiment SentimentContext) shared.Signal {
	stronglyOversold := rsi.Current < stronglyOversoldRSI
	oversold := rsi.Current < oversoldRSI
	stronglyOverbought := rsi.Current > stronglyOverboughtRSI
	overbought := rsi.Current > overboughtRSI

	strongBullish := sentiment.Value > strongSentiment
	bullish := sentiment.Value > mildSentiment
	strongBearish := sentiment.Value < -strongSentiment
	bearish := sentiment.Value < -mildSentiment

	sufficientNews := sentiment.Count >= sufficientNewsCount
	highVolumeNews := sentiment.Count >= highVolumeNewsCount

	switch {
	case stronglyOversold && strongBullish && sufficientNews && rsi.Trend.Bullish():
		return shared.StrongBuy

	case oversold && sufficientNews && (bullish || sentiment.Trend == shared.ImprovingSentiment):
		return shared.Buy

	case stronglyOverbought && strongBearish && sufficientNews && rsi.Trend.Bearish():
		return shared.StrongSell

	case overbought && sufficientNews && (bearish || sentiment.Trend == shared.DeterioratingSentiment):
		return shared.Sell

	// Trend confirmation entries fire on strong directional agreement between
	// the indicator and sentiment trends, independent of rsi levels.
	case rsi.Trend == shared.StronglyBullishTrend && sentiment.Trend == shared.ImprovingSentiment && highVolumeNews:
		return shared.Buy

	case rsi.Trend == shared.StronglyBearishTrend && sentiment.Trend == shared.DeterioratingSentiment && highVolumeNews:
		return shared.Sell

	default:
		return shared.Hold
	}
}
