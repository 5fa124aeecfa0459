package service

import (
	"context"
	"testing"
	"time"

	"github.com/dnldd/papertrade/position"
	"github.com/dnldd/papertrade/runner"
	"github.com/dnldd/papertrade/sentiment"
	"github.com/dnldd/papertrade/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

// Stub collaborators for exercising the scheduled cycle path without a live
// market data provider or database.
type stubFetcher struct{}

func (stubFetcher) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	return 0, shared.ErrDataUnavailable
}

func (stubFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookbackDays int) ([]float64, error) {
	return nil, shared.ErrDataUnavailable
}

type stubSentiments struct{}

func (stubSentiments) QuerySentimentWindow(ctx context.Context, symbol string, start time.Time, end time.Time) (shared.SentimentWindow, error) {
	return shared.SentimentWindow{}, nil
}

type stubStore struct{}

func (stubStore) FindOpen(ctx context.Context, symbol string) (*position.Position, error) {
	return nil, nil
}

func (stubStore) Save(ctx context.Context, pos *position.Position) error {
	return nil
}

func (stubStore) AllOpen(ctx context.Context) ([]*position.Position, error) {
	return nil, nil
}

type stubLedger struct{}

func (stubLedger) Record(ctx context.Context, trade *position.Trade) error {
	return nil
}

func (stubLedger) TradesByRange(ctx context.Context, start time.Time, end time.Time) ([]*position.Trade, error) {
	return nil, nil
}

type stubBroker struct{}

func (stubBroker) PlaceOrder(ctx context.Context, req *shared.OrderRequest) error {
	return nil
}

func TestRunCycleCancelsOnFailure(t *testing.T) {
	aggregator, err := sentiment.NewAggregator(&sentiment.AggregatorConfig{
		Store:  stubSentiments{},
		Logger: &log.Logger,
	})
	assert.NoError(t, err)

	lifecycle, err := position.NewManager(&position.ManagerConfig{
		Positions: stubStore{},
		Trades:    stubLedger{},
		Broker:    stubBroker{},
		Sizer:     &position.Sizer{Capital: 100000, RiskPercent: 2},
		Logger:    &log.Logger,
	})
	assert.NoError(t, err)

	weekday := time.Date(2024, 6, 12, 16, 10, 0, 0, time.UTC)
	dailyRunner, err := runner.NewRunner(&runner.RunnerConfig{
		Watchlist: []string{"AAPL"},
		Fetcher:   stubFetcher{},
		Sentiment: aggregator,
		Lifecycle: lifecycle,
		Positions: stubStore{},
		Trades:    stubLedger{},
		Capital:   100000,
		Now: func() (time.Time, *time.Location, error) {
			return weekday, weekday.Location(), nil
		},
		Logger: &log.Logger,
	})
	assert.NoError(t, err)

	var cancelled bool
	paper := &Paper{
		cfg: &PaperConfig{
			Watchlist:   []string{"AAPL"},
			FMPAPIKey:   "key",
			DBEndpoint:  "http://localhost:4001",
			Capital:     100000,
			RiskPercent: 2,
			Cancel:      func() { cancelled = true },
		},
		runner: dailyRunner,
		logger: &log.Logger,
	}

	// Ensure a failed scheduled cycle shuts the service down.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paper.runCycle(ctx)
	assert.True(t, cancelled)
}

func TestPaperConfigValidate(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name    string
		cfg     PaperConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: PaperConfig{
				Watchlist:   []string{"AAPL", "MSFT"},
				FMPAPIKey:   "key",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
				Cancel:      cancel,
			},
			wantErr: false,
		},
		{
			name:    "missing everything",
			cfg:     PaperConfig{},
			wantErr: true,
		},
		{
			name: "no watchlist",
			cfg: PaperConfig{
				FMPAPIKey:   "key",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
				Cancel:      cancel,
			},
			wantErr: true,
		},
		{
			name: "risk percent out of range",
			cfg: PaperConfig{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "key",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 120,
				Cancel:      cancel,
			},
			wantErr: true,
		},
		{
			name: "non-positive capital",
			cfg: PaperConfig{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "key",
				DBEndpoint:  "http://localhost:4001",
				Capital:     0,
				RiskPercent: 2,
				Cancel:      cancel,
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
