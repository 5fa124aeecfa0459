package position

import (
	"fmt"

	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/google/uuid"
)

// breakevenTrigger is the unrealized gain multiple past which the stop loss
// ratchets up to the entry price.
const breakevenTrigger = 1.03

// Position represents a simulated equity holding managed through its
// lifecycle. At most one open (unsold) position exists per symbol. A sold
// position is immutable and is never deleted.
type Position struct {
	ID                string
	Symbol            string
	BuyPrice          float64
	Quantity          int
	BuyDate           time.Time
	StopLoss          float64
	Target            float64
	SignalStrength    shared.Signal
	Sold              bool
	SellPrice         float64
	SellDate          time.Time
	ExitReason        shared.ExitReason
	ProfitLoss        float64
	ProfitLossPercent float64
}

// NewPosition opens a new position with the provided entry details.
func NewPosition(symbol string, price float64, quantity int, stopLoss float64,
	target float64, strength shared.Signal) (*Position, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be an empty string", shared.ErrInvalidInput)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: entry price must be positive, got %v", shared.ErrInvalidInput, price)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidInput, quantity)
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	pos := &Position{
		ID:             uuid.New().String(),
		Symbol:         symbol,
		BuyPrice:       price,
		Quantity:       quantity,
		BuyDate:        now,
		StopLoss:       stopLoss,
		Target:         target,
		SignalStrength: strength,
	}

	return pos, nil
}

// ApplyBreakevenStop raises the stop loss to the entry price once the current
// price shows more than a 3% unrealized gain. The stop loss never lowers. It
// returns whether the stop loss changed.
func (p *Position) ApplyBreakevenStop(currentPrice float64) bool {
	if p.Sold {
		return false
	}

	if currentPrice > p.BuyPrice*breakevenTrigger && p.StopLoss < p.BuyPrice {
		p.StopLoss = p.BuyPrice
		return true
	}

	return false
}

// Close marks the position sold at the provided price and computes its
// realized profit and loss.
func (p *Position) Close(price float64, reason shared.ExitReason) error {
	if p.Sold {
		return fmt.Errorf("position %s for %s is already sold", p.ID, p.Symbol)
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return err
	}

	p.Sold = true
	p.SellPrice = price
	p.SellDate = now
	p.ExitReason = reason
	p.ProfitLoss = (price - p.BuyPrice) * float64(p.Quantity)
	p.ProfitLossPercent = (price/p.BuyPrice - 1) * 100

	return nil
}

// UnrealizedPNL returns the open profit and loss at the provided price.
func (p *Position) UnrealizedPNL(currentPrice float64) float64 {
	if p.Sold {
		return 0
	}

	return (currentPrice - p.BuyPrice) * float64(p.Quantity)
}

// CapitalUsed returns the capital committed to the position at entry.
func (p *Position) CapitalUsed() float64 {
	return p.BuyPrice * float64(p.Quantity)
}
