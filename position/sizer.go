package position

import (
	"fmt"
	"math"

	"github.com/dnldd/papertrade/shared"
)

const (
	// strongBuyMultiplier scales up sizing for high conviction entries.
	strongBuyMultiplier = 1.5
	// buyMultiplier is the baseline sizing multiplier.
	buyMultiplier = 1.0
)

// SignalMultiplier returns the sizing multiplier for the provided signal
// strength. Non-buy signals size to zero.
func SignalMultiplier(signal shared.Signal) float64 {
	switch signal {
	case shared.StrongBuy:
		return strongBuyMultiplier
	case shared.Buy:
		return buyMultiplier
	default:
		return 0
	}
}

// Sizer computes risk-based position quantities from the configured capital.
type Sizer struct {
	// Capital is the total simulated capital available to the strategy.
	Capital float64
	// RiskPercent is the percentage of capital risked per entry.
	RiskPercent float64
}

// Size returns the quantity to purchase at the provided price. A quantity of
// zero means the entry should be skipped, it is not an error.
func (s *Sizer) Size(price float64, multiplier float64) (int, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive, got %v", shared.ErrInvalidInput, price)
	}

	riskAmount := s.Capital * s.RiskPercent / 100
	quantity := int(math.Floor(riskAmount * multiplier / price))

	return quantity, nil
}
