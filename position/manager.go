package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/rs/zerolog"
)

const (
	// Risk band multiples per entry signal strength. Strong buys carry a
	// tighter stop and a higher target reflecting higher conviction.
	buyStopLossMultiple       = 0.95
	buyTargetMultiple         = 1.10
	strongBuyStopLossMultiple = 0.96
	strongBuyTargetMultiple   = 1.12

	// Entry suppression thresholds on strongly negative sentiment.
	buySuppressionSentiment       = -0.8
	strongBuySuppressionSentiment = -0.9

	// Sentiment thresholds past which a strategy exit is tagged as news driven.
	sellNewsSentiment       = -0.5
	strongSellNewsSentiment = -0.8
)

// Storer defines the requirements for persisting positions.
type Storer interface {
	// FindOpen returns the open position for the provided symbol, or nil
	// when there is none.
	FindOpen(ctx context.Context, symbol string) (*Position, error)
	// Save persists the provided position, replacing any prior state for
	// its id.
	Save(ctx context.Context, pos *Position) error
	// AllOpen returns every open position.
	AllOpen(ctx context.Context) ([]*Position, error)
}

// TradeRecorder defines the requirements for the append-only trade ledger.
type TradeRecorder interface {
	// Record appends the provided trade to the ledger.
	Record(ctx context.Context, trade *Trade) error
	// TradesByRange returns ledger entries created within [start, end).
	TradesByRange(ctx context.Context, start time.Time, end time.Time) ([]*Trade, error)
}

// ExitCommitter is an optional store capability persisting a sold position
// and its exit trade as a single write, so a partial failure never leaves a
// sold position without its ledger row.
type ExitCommitter interface {
	// CommitExit persists the provided sold position and its exit trade
	// together.
	CommitExit(ctx context.Context, pos *Position, trade *Trade) error
}

// ManagerConfig represents the position lifecycle manager configuration.
type ManagerConfig struct {
	// Positions represents the position store.
	Positions Storer
	// Trades represents the trade ledger.
	Trades TradeRecorder
	// Broker represents the order gateway.
	Broker shared.OrderPlacer
	// Sizer computes entry quantities.
	Sizer *Sizer
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Positions == nil {
		errs = errors.Join(errs, fmt.Errorf("position store cannot be nil"))
	}
	if cfg.Trades == nil {
		errs = errors.Join(errs, fmt.Errorf("trade ledger cannot be nil"))
	}
	if cfg.Broker == nil {
		errs = errors.Join(errs, fmt.Errorf("broker gateway cannot be nil"))
	}
	if cfg.Sizer == nil {
		errs = errors.Join(errs, fmt.Errorf("sizer cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager drives positions through entries, stop adjustments and exits.
type Manager struct {
	cfg *ManagerConfig
}

// NewManager initializes a new position lifecycle manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Manager{cfg: cfg}, nil
}

// exitReason evaluates the exit conditions for the provided open position in
// priority order, the first match wins. Strategy exits driven by strongly
// negative sentiment are tagged as news driven.
func exitReason(pos *Position, price float64, signal shared.Signal, sentiment float64) shared.ExitReason {
	switch {
	case price <= pos.StopLoss:
		return shared.StopLoss
	case price >= pos.Target:
		return shared.TargetHit
	case signal == shared.Sell:
		if sentiment < sellNewsSentiment {
			return shared.StrategyNews
		}
		return shared.Strategy
	case signal == shared.StrongSell:
		if sentiment < strongSellNewsSentiment {
			return shared.StrategyNews
		}
		return shared.Strategy
	default:
		return shared.NoExit
	}
}

// riskBands returns the stop loss and target for an entry at the provided
// price and signal strength.
func riskBands(price float64, signal shared.Signal) (float64, float64) {
	if signal == shared.StrongBuy {
		return price * strongBuyStopLossMultiple, price * strongBuyTargetMultiple
	}

	return price * buyStopLossMultiple, price * buyTargetMultiple
}

// commitExit persists the provided sold position and its exit trade, in one
// write when the store supports it.
func (m *Manager) commitExit(ctx context.Context, pos *Position, trade *Trade) error {
	if committer, ok := m.cfg.Positions.(ExitCommitter); ok {
		return committer.CommitExit(ctx, pos, trade)
	}

	err := m.cfg.Positions.Save(ctx, pos)
	if err != nil {
		return fmt.Errorf("persisting closed position: %w", err)
	}

	err = m.cfg.Trades.Record(ctx, trade)
	if err != nil {
		return fmt.Errorf("recording exit trade: %w", err)
	}

	return nil
}

// ManageExit applies the breakeven stop ratchet and closes the symbol's open
// position when an exit condition is met. The broker order is placed before
// any state is committed, a failed order leaves the position open for the
// next run. It returns whether a position was closed.
func (m *Manager) ManageExit(ctx context.Context, symbol string, price float64,
	signal shared.Signal, sentiment float64) (bool, error) {
	pos, err := m.cfg.Positions.FindOpen(ctx, symbol)
	if err != nil {
		return false, fmt.Errorf("finding open position for %s: %w", symbol, err)
	}
	if pos == nil {
		return false, nil
	}

	if pos.ApplyBreakevenStop(price) {
		err = m.cfg.Positions.Save(ctx, pos)
		if err != nil {
			return false, fmt.Errorf("persisting ratcheted stop loss for %s: %w", symbol, err)
		}

		m.cfg.Logger.Info().Msgf("raised %s stop loss to breakeven %.2f", symbol, pos.StopLoss)
	}

	reason := exitReason(pos, price, signal, sentiment)
	if reason == shared.NoExit {
		return false, nil
	}

	order := &shared.OrderRequest{
		Symbol:    symbol,
		Action:    shared.SellAction,
		Quantity:  pos.Quantity,
		Price:     price,
		OrderType: shared.MarketOrder,
		Product:   shared.DeliveryProduct,
	}
	err = m.cfg.Broker.PlaceOrder(ctx, order)
	if err != nil {
		return false, fmt.Errorf("placing sell order for %s: %w", symbol, err)
	}

	err = pos.Close(price, reason)
	if err != nil {
		return false, fmt.Errorf("closing position for %s: %w", symbol, err)
	}

	trade, err := NewExitTrade(pos, sentiment)
	if err != nil {
		return false, fmt.Errorf("creating exit trade for %s: %w", symbol, err)
	}

	err = m.commitExit(ctx, pos, trade)
	if err != nil {
		return false, fmt.Errorf("committing exit for %s: %w", symbol, err)
	}

	m.cfg.Logger.Info().Msgf("closed %s position (%s) @ %.2f, pnl %.2f (%.2f%%)",
		symbol, reason.String(), price, pos.ProfitLoss, pos.ProfitLossPercent)

	return true, nil
}

// ManageEntry opens a new position for the symbol when the signal calls for
// one and no position is already open. Strongly negative sentiment suppresses
// the entry, and a zero sized entry is skipped silently. It returns whether a
// position was opened.
func (m *Manager) ManageEntry(ctx context.Context, symbol string, price float64,
	signal shared.Signal, rsiAtEntry float64, sentiment float64) (bool, error) {
	if !signal.BuySignal() {
		return false, nil
	}

	switch {
	case signal == shared.Buy && sentiment < buySuppressionSentiment:
		m.cfg.Logger.Warn().Msgf("suppressing %s buy, sentiment %.2f is strongly negative",
			symbol, sentiment)
		return false, nil
	case signal == shared.StrongBuy && sentiment < strongBuySuppressionSentiment:
		m.cfg.Logger.Warn().Msgf("suppressing %s strong buy, sentiment %.2f is strongly negative",
			symbol, sentiment)
		return false, nil
	}

	existing, err := m.cfg.Positions.FindOpen(ctx, symbol)
	if err != nil {
		return false, fmt.Errorf("finding open position for %s: %w", symbol, err)
	}
	if existing != nil {
		return false, nil
	}

	quantity, err := m.cfg.Sizer.Size(price, SignalMultiplier(signal))
	if err != nil {
		return false, fmt.Errorf("sizing entry for %s: %w", symbol, err)
	}
	if quantity == 0 {
		m.cfg.Logger.Debug().Msgf("sized %s entry to zero @ %.2f, skipping", symbol, price)
		return false, nil
	}

	order := &shared.OrderRequest{
		Symbol:    symbol,
		Action:    shared.BuyAction,
		Quantity:  quantity,
		Price:     price,
		OrderType: shared.MarketOrder,
		Product:   shared.DeliveryProduct,
	}
	err = m.cfg.Broker.PlaceOrder(ctx, order)
	if err != nil {
		return false, fmt.Errorf("placing buy order for %s: %w", symbol, err)
	}

	stopLoss, target := riskBands(price, signal)
	pos, err := NewPosition(symbol, price, quantity, stopLoss, target, signal)
	if err != nil {
		return false, fmt.Errorf("creating position for %s: %w", symbol, err)
	}

	err = m.cfg.Positions.Save(ctx, pos)
	if err != nil {
		return false, fmt.Errorf("persisting new position for %s: %w", symbol, err)
	}

	trade, err := NewEntryTrade(pos, rsiAtEntry, sentiment)
	if err != nil {
		return false, fmt.Errorf("creating entry trade for %s: %w", symbol, err)
	}

	err = m.cfg.Trades.Record(ctx, trade)
	if err != nil {
		return false, fmt.Errorf("recording entry trade for %s: %w", symbol, err)
	}

	m.cfg.Logger.Info().Msgf("opened %s position (%s) x%d @ %.2f with stoploss %.2f and target %.2f",
		symbol, signal.String(), quantity, price, stopLoss, target)

	return true, nil
}
