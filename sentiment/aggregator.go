package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/rs/zerolog"
)

// trendDelta is the day-over-day average change required before a sentiment
// trend is marked improving or deteriorating.
const trendDelta = 0.3

// AggregatorConfig represents the sentiment aggregator configuration.
type AggregatorConfig struct {
	// Store represents the sentiment sample store.
	Store shared.SentimentStorer
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *AggregatorConfig) Validate() error {
	var errs error

	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("sentiment store cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Aggregator summarizes per-symbol news sentiment.
type Aggregator struct {
	cfg *AggregatorConfig
}

// NewAggregator initializes a new sentiment aggregator.
func NewAggregator(cfg *AggregatorConfig) (*Aggregator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Aggregator{cfg: cfg}, nil
}

// classifyTrend classifies the day-over-day sentiment direction.
func classifyTrend(today shared.SentimentWindow, yesterday shared.SentimentWindow) shared.SentimentTrend {
	switch {
	case today.Avg > yesterday.Avg+trendDelta:
		return shared.ImprovingSentiment
	case today.Avg < yesterday.Avg-trendDelta:
		return shared.DeterioratingSentiment
	default:
		return shared.NeutralSentiment
	}
}

// Summarize computes the average sentiment and news count of the provided
// symbol for the day containing asOf. Windows with no samples default to a
// zero average and count. Only today's figures are returned as the primary
// sentiment, the prior day is used solely for the trend comparison.
func (a *Aggregator) Summarize(ctx context.Context, symbol string, asOf time.Time) (shared.SentimentSummary, error) {
	if symbol == "" {
		return shared.SentimentSummary{}, fmt.Errorf("%w: symbol cannot be an empty string", shared.ErrInvalidInput)
	}

	todayStart, todayEnd := shared.DayWindow(asOf)
	today, err := a.cfg.Store.QuerySentimentWindow(ctx, symbol, todayStart, todayEnd)
	if err != nil {
		return shared.SentimentSummary{}, fmt.Errorf("querying today's sentiment for %s: %w", symbol, err)
	}

	yesterday, err := a.cfg.Store.QuerySentimentWindow(ctx, symbol, todayStart.AddDate(0, 0, -1), todayStart)
	if err != nil {
		return shared.SentimentSummary{}, fmt.Errorf("querying yesterday's sentiment for %s: %w", symbol, err)
	}

	summary := shared.SentimentSummary{
		Symbol:       symbol,
		AvgSentiment: today.Avg,
		NewsCount:    today.Count,
		Trend:        classifyTrend(today, yesterday),
	}

	a.cfg.Logger.Debug().Msgf("sentiment for %s: avg %.2f across %d items (%s)",
		symbol, summary.AvgSentiment, summary.NewsCount, summary.Trend.String())

	return summary, nil
}
