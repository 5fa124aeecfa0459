package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dnldd/papertrade/broker"
	"github.com/dnldd/papertrade/database"
	"github.com/dnldd/papertrade/fetch"
	"github.com/dnldd/papertrade/position"
	"github.com/dnldd/papertrade/runner"
	"github.com/dnldd/papertrade/sentiment"
	"github.com/dnldd/papertrade/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// DefaultRunAt is the default local time the daily cycle fires, shortly
// after the new york close.
const DefaultRunAt = "16:15"

// PaperConfig represents the configuration struct for the paper trading service.
type PaperConfig struct {
	// Watchlist represents the tracked symbols.
	Watchlist []string
	// FMPAPIkey is the FMP service API Key.
	FMPAPIKey string
	// DBEndpoint is the rqlite connection endpoint.
	DBEndpoint string
	// DBUser is the rqlite user.
	DBUser string
	// DBPass is the rqlite user pass.
	DBPass string
	// Capital is the simulated capital funding the account.
	Capital float64
	// RiskPercent is the per-trade capital risk percentage.
	RiskPercent float64
	// RunAt is the local time of day the daily cycle fires.
	RunAt string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *PaperConfig) Validate() error {
	var errs error

	if len(cfg.Watchlist) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no symbols provided for paper trading service"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.DBEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("database endpoint cannot be an empty string"))
	}
	if cfg.Capital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("capital must be positive"))
	}
	if cfg.RiskPercent <= 0 || cfg.RiskPercent > 100 {
		errs = errors.Join(errs, fmt.Errorf("risk percent must be in (0, 100]"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Paper represents the paper trading service.
type Paper struct {
	cfg          *PaperConfig
	db           *database.Database
	broker       *broker.Paper
	runner       *runner.Runner
	jobScheduler *gocron.Scheduler
	logger       *zerolog.Logger
}

// NewPaper initializes a new paper trading service.
func NewPaper(ctx context.Context, cfg *PaperConfig) (*Paper, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "paper").Logger()

	if cfg.RunAt == "" {
		cfg.RunAt = DefaultRunAt
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, fmt.Errorf("fetching new york time: %v", err)
	}

	jobScheduler := gocron.NewScheduler(loc)

	dbLogger := logger.With().Str("component", "database").Logger()
	db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
		Endpoint: cfg.DBEndpoint,
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Logger:   &dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating database: %v", err)
	}

	fmp := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey, BaseURL: fetch.BaseURL})

	brokerLogger := logger.With().Str("component", "broker").Logger()
	paperBroker, err := broker.NewPaper(&broker.PaperConfig{
		Capital: cfg.Capital,
		Logger:  &brokerLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating paper broker: %v", err)
	}

	aggregatorLogger := logger.With().Str("component", "sentimentaggregator").Logger()
	aggregator, err := sentiment.NewAggregator(&sentiment.AggregatorConfig{
		Store:  db,
		Logger: &aggregatorLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sentiment aggregator: %v", err)
	}

	lifecycleLogger := logger.With().Str("component", "lifecyclemanager").Logger()
	lifecycle, err := position.NewManager(&position.ManagerConfig{
		Positions: db,
		Trades:    db,
		Broker:    paperBroker,
		Sizer:     &position.Sizer{Capital: cfg.Capital, RiskPercent: cfg.RiskPercent},
		Logger:    &lifecycleLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle manager: %v", err)
	}

	runnerLogger := logger.With().Str("component", "dailyrunner").Logger()
	dailyRunner, err := runner.NewRunner(&runner.RunnerConfig{
		Watchlist: cfg.Watchlist,
		Fetcher:   fmp,
		Sentiment: aggregator,
		Lifecycle: lifecycle,
		Positions: db,
		Trades:    db,
		Capital:   cfg.Capital,
		Logger:    &runnerLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating daily runner: %v", err)
	}

	service := &Paper{
		cfg:          cfg,
		db:           db,
		broker:       paperBroker,
		runner:       dailyRunner,
		jobScheduler: jobScheduler,
		logger:       &logger,
	}

	return service, nil
}

// RunNow triggers a daily cycle immediately, outside the schedule.
func (p *Paper) RunNow(ctx context.Context) error {
	summary, err := p.runner.RunDailyCycle(ctx)
	if err != nil {
		return fmt.Errorf("running daily cycle: %w", err)
	}

	p.logSummary(summary)

	return nil
}

// logSummary emits the end-of-cycle report.
func (p *Paper) logSummary(summary *runner.RunSummary) {
	if summary.Weekend {
		p.logger.Info().Msgf("%s is a weekend, no cycle run", summary.Date)
		return
	}

	p.logger.Info().Msgf("cycle for %s: %d evaluated, %d skipped, %d entries, %d exits, "+
		"%d open positions, unrealized pnl %.2f, capital utilization %.2f%%, cash %s",
		summary.Date, summary.Evaluated, summary.Skipped, summary.EntriesOpened,
		summary.ExitsClosed, summary.OpenPositions, summary.UnrealizedPNL,
		summary.CapitalUtilization, p.broker.Cash().StringFixed(2))
}

// runCycle executes a scheduled daily cycle. A cycle failure shuts the
// service down, leaving open positions untouched for the next start.
func (p *Paper) runCycle(ctx context.Context) {
	summary, err := p.runner.RunDailyCycle(ctx)
	if err != nil {
		p.logger.Error().Msgf("running daily cycle: %v", err)
		p.cfg.Cancel()
		return
	}

	p.logSummary(summary)
}

// Run handles the lifecycle processes of the paper trading service.
func (p *Paper) Run(ctx context.Context) error {
	_, err := p.jobScheduler.Every(1).Day().At(p.cfg.RunAt).Do(func() {
		p.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling daily cycle: %v", err)
	}

	p.jobScheduler.StartAsync()
	p.logger.Info().Msgf("daily cycle scheduled at %s for %d symbols",
		p.cfg.RunAt, len(p.cfg.Watchlist))

	<-ctx.Done()
	p.jobScheduler.Stop()

	return nil
}
