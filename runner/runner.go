package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/papertrade/decision"
	"github.com/dnldd/papertrade/indicator"
	"github.com/dnldd/papertrade/position"
	"github.com/dnldd/papertrade/sentiment"
	"github.com/dnldd/papertrade/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// DefaultLookbackDays is the default market data lookback used to seed the rsi.
const DefaultLookbackDays = 60

// RunnerConfig represents the daily runner configuration.
type RunnerConfig struct {
	// Watchlist represents the tracked symbols.
	Watchlist []string
	// Fetcher represents the market data provider.
	Fetcher shared.MarketFetcher
	// Sentiment represents the sentiment aggregator.
	Sentiment *sentiment.Aggregator
	// Lifecycle represents the position lifecycle manager.
	Lifecycle *position.Manager
	// Positions represents the position store, used for reporting views.
	Positions position.Storer
	// Trades represents the trade ledger, used for reporting views.
	Trades position.TradeRecorder
	// Capital is the total simulated capital, used for utilization reporting.
	Capital float64
	// RSIPeriod is the rsi lookback period.
	RSIPeriod int
	// LookbackDays is the market data lookback in days.
	LookbackDays int
	// Now returns the current exchange-local time. Defaults to shared.NewYorkTime.
	Now func() (time.Time, *time.Location, error)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *RunnerConfig) Validate() error {
	var errs error

	if len(cfg.Watchlist) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no symbols provided for the daily runner"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("market fetcher cannot be nil"))
	}
	if cfg.Sentiment == nil {
		errs = errors.Join(errs, fmt.Errorf("sentiment aggregator cannot be nil"))
	}
	if cfg.Lifecycle == nil {
		errs = errors.Join(errs, fmt.Errorf("lifecycle manager cannot be nil"))
	}
	if cfg.Positions == nil {
		errs = errors.Join(errs, fmt.Errorf("position store cannot be nil"))
	}
	if cfg.Trades == nil {
		errs = errors.Join(errs, fmt.Errorf("trade ledger cannot be nil"))
	}
	if cfg.Capital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("capital must be positive"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Runner executes the per-symbol daily cycle.
type Runner struct {
	cfg     *RunnerConfig
	running atomic.Bool
}

// NewRunner initializes a new daily runner.
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.RSIPeriod == 0 {
		cfg.RSIPeriod = indicator.DefaultRSIPeriod
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.Now == nil {
		cfg.Now = shared.NewYorkTime
	}

	return &Runner{cfg: cfg}, nil
}

// evaluation carries the per-symbol decision context for a cycle. Failed
// evaluations degrade to a hold with zeroed context.
type evaluation struct {
	signal     shared.Signal
	rsiCurrent float64
	sentiment  shared.SentimentSummary
}

// evaluateSymbol fuses the symbol's rsi and sentiment trends into a signal.
// Any failure degrades to a hold, never an error.
func (r *Runner) evaluateSymbol(ctx context.Context, symbol string, asOf time.Time) evaluation {
	eval := evaluation{signal: shared.Hold}

	closes, err := r.cfg.Fetcher.FetchDailyCloses(ctx, symbol, r.cfg.LookbackDays)
	if err != nil {
		r.cfg.Logger.Warn().Msgf("holding %s, fetching daily closes: %v", symbol, err)
		return eval
	}

	series, err := indicator.RelativeStrengthIndex(closes, r.cfg.RSIPeriod)
	if err != nil {
		r.cfg.Logger.Warn().Msgf("holding %s, computing rsi: %v", symbol, err)
		return eval
	}
	if len(series) < indicator.MinClassifiablePoints {
		err = fmt.Errorf("%w: rsi series has %d points, need %d",
			shared.ErrInsufficientData, len(series), indicator.MinClassifiablePoints)
		r.cfg.Logger.Warn().Msgf("holding %s: %v", symbol, err)
		return eval
	}

	summary, err := r.cfg.Sentiment.Summarize(ctx, symbol, asOf)
	if err != nil {
		r.cfg.Logger.Error().Msgf("holding %s, summarizing sentiment: %v", symbol, err)
		return eval
	}

	eval.rsiCurrent = series[len(series)-1]
	eval.sentiment = summary
	eval.signal = decision.Decide(
		decision.RSIContext{Current: eval.rsiCurrent, Trend: indicator.RecentTrend(series)},
		decision.SentimentContext{Value: summary.AvgSentiment, Count: summary.NewsCount, Trend: summary.Trend},
	)

	return eval
}

// symbolResult reports the outcome of processing one symbol.
type symbolResult struct {
	price     float64
	processed bool
	opened    bool
	closed    bool
}

// processSymbol runs the exit check then the entry check for the provided
// symbol. Failures are contained here so one symbol never aborts the run.
func (r *Runner) processSymbol(ctx context.Context, symbol string, asOf time.Time) (result symbolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.cfg.Logger.Error().Msgf("recovered from panic processing %s: %v", symbol, rec)
			result.processed = false
		}
	}()

	price, err := r.cfg.Fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		r.cfg.Logger.Warn().Msgf("skipping %s, fetching quote: %v", symbol, err)
		return result
	}
	result.price = price

	eval := r.evaluateSymbol(ctx, symbol, asOf)

	closed, err := r.cfg.Lifecycle.ManageExit(ctx, symbol, price, eval.signal, eval.sentiment.AvgSentiment)
	if err != nil {
		r.cfg.Logger.Error().Msgf("exit check for %s: %v", symbol, err)
		return result
	}
	result.closed = closed

	opened, err := r.cfg.Lifecycle.ManageEntry(ctx, symbol, price, eval.signal,
		eval.rsiCurrent, eval.sentiment.AvgSentiment)
	if err != nil {
		r.cfg.Logger.Error().Msgf("entry check for %s: %v", symbol, err)
		return result
	}
	result.opened = opened
	result.processed = true

	return result
}

// RunDailyCycle executes one full cycle over the watchlist. Only one cycle may
// be in flight at a time, a concurrent call fails without running. Weekends
// skip the cycle entirely.
func (r *Runner) RunDailyCycle(ctx context.Context) (*RunSummary, error) {
	if !r.running.CAS(false, true) {
		return nil, fmt.Errorf("daily cycle already in flight")
	}
	defer r.running.Store(false)

	now, _, err := r.cfg.Now()
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{Date: now}
	if shared.IsWeekend(now) {
		summary.Weekend = true
		r.cfg.Logger.Info().Msg("market closed for the weekend, skipping daily cycle")
		return summary, nil
	}

	prices := make(map[string]float64, len(r.cfg.Watchlist))
	for _, symbol := range r.cfg.Watchlist {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		result := r.processSymbol(ctx, symbol, now)
		if result.price > 0 {
			prices[symbol] = result.price
		}

		switch {
		case result.processed:
			summary.Evaluated++
		default:
			summary.Skipped++
		}
		if result.opened {
			summary.EntriesOpened++
		}
		if result.closed {
			summary.ExitsClosed++
		}
	}

	err = r.report(ctx, summary, prices)
	if err != nil {
		r.cfg.Logger.Error().Msgf("building run summary: %v", err)
	}

	r.cfg.Logger.Info().Msgf("daily cycle done: %d evaluated, %d skipped, %d opened, "+
		"%d closed, %d open positions, unrealized pnl %.2f, capital utilization %.2f%%",
		summary.Evaluated, summary.Skipped, summary.EntriesOpened, summary.ExitsClosed,
		summary.OpenPositions, summary.UnrealizedPNL, summary.CapitalUtilization)

	return summary, nil
}

// report fills the reporting views of the provided run summary.
func (r *Runner) report(ctx context.Context, summary *RunSummary, prices map[string]float64) error {
	open, err := r.cfg.Positions.AllOpen(ctx)
	if err != nil {
		return fmt.Errorf("fetching open positions: %w", err)
	}

	summary.OpenPositions = len(open)

	var capitalUsed float64
	for _, pos := range open {
		capitalUsed += pos.CapitalUsed()

		price, ok := prices[pos.Symbol]
		if !ok {
			continue
		}
		summary.UnrealizedPNL += pos.UnrealizedPNL(price)
	}

	summary.CapitalUtilization = capitalUsed / r.cfg.Capital * 100

	start, end := shared.DayWindow(summary.Date)
	trades, err := r.cfg.Trades.TradesByRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetching today's trades: %w", err)
	}

	summary.Trades = trades

	return nil
}
