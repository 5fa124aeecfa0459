package shared

// SentimentTrend represents the day-over-day direction of news sentiment.
type SentimentTrend int

const (
	ImprovingSentiment SentimentTrend = iota
	DeterioratingSentiment
	NeutralSentiment
)

// String stringifies the provided sentiment trend.
func (t SentimentTrend) String() string {
	switch t {
	case ImprovingSentiment:
		return "improving sentiment"
	case DeterioratingSentiment:
		return "deteriorating sentiment"
	case NeutralSentiment:
		return "neutral sentiment"
	default:
		return "unknown sentiment"
	}
}

// SentimentWindow aggregates the sentiment samples of a symbol over a window.
type SentimentWindow struct {
	Avg   float64
	Count int
}

// SentimentSummary summarizes today's news sentiment for a symbol. The trend
// is derived from a comparison against the prior day's window.
type SentimentSummary struct {
	Symbol       string
	AvgSentiment float64
	NewsCount    int
	Trend        SentimentTrend
}
