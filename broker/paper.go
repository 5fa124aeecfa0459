package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dnldd/papertrade/shared"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaperConfig represents the configuration for the paper broker.
type PaperConfig struct {
	// Capital is the initial simulated cash funding the account.
	Capital float64
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *PaperConfig) Validate() error {
	var errs error

	if cfg.Capital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("capital must be positive"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Paper simulates a broker gateway. Every accepted order fills immediately at
// its provided price against a cash ledger, no orders reach a real exchange.
type Paper struct {
	cfg     *PaperConfig
	cash    decimal.Decimal
	initial decimal.Decimal
	mtx     sync.Mutex
}

// Ensure the paper broker implements the OrderPlacer interface.
var _ shared.OrderPlacer = (*Paper)(nil)

// NewPaper initializes a new paper broker funded with the configured capital.
func NewPaper(cfg *PaperConfig) (*Paper, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	cash := decimal.NewFromFloat(cfg.Capital)

	return &Paper{
		cfg:     cfg,
		cash:    cash,
		initial: cash,
	}, nil
}

// PlaceOrder fills the provided order against the simulated cash balance.
// Buys exceeding the available cash are rejected.
func (p *Paper) PlaceOrder(ctx context.Context, req *shared.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: order request cannot be nil", shared.ErrInvalidInput)
	}
	if req.Symbol == "" {
		return fmt.Errorf("%w: order symbol cannot be an empty string", shared.ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: order quantity must be positive, got %d", shared.ErrInvalidInput, req.Quantity)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: order price must be positive, got %v", shared.ErrInvalidInput, req.Price)
	}

	notional := decimal.NewFromFloat(req.Price).Mul(decimal.NewFromInt(int64(req.Quantity)))

	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch req.Action {
	case shared.BuyAction:
		if notional.GreaterThan(p.cash) {
			return fmt.Errorf("%w: insufficient cash for %s buy, need %s have %s",
				shared.ErrExternalService, req.Symbol, notional.StringFixed(2), p.cash.StringFixed(2))
		}
		p.cash = p.cash.Sub(notional)
	case shared.SellAction:
		p.cash = p.cash.Add(notional)
	default:
		return fmt.Errorf("%w: unknown order action: %s", shared.ErrInvalidInput, req.Action.String())
	}

	p.cfg.Logger.Info().Msgf("filled %s %s x%d @ %.2f, cash balance %s",
		req.Action.String(), req.Symbol, req.Quantity, req.Price, p.cash.StringFixed(2))

	return nil
}

// Cash returns the current simulated cash balance.
func (p *Paper) Cash() decimal.Decimal {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.cash
}

// RealizedGain returns the change of the cash balance since funding.
func (p *Paper) RealizedGain() decimal.Decimal {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.cash.Sub(p.initial)
}
