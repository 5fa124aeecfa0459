package position

import (
	"fmt"
	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/google/uuid"
)

// Trade represents an append-only ledger entry recording an entry or an exit
// event. A round-trip position produces exactly two trades. Trades are never
// mutated after creation.
type Trade struct {
	ID                string
	Symbol            string
	Action            shared.Action
	Price             float64
	Quantity          int
	ExitReason        shared.ExitReason
	RSIAtEntry        float64
	NewsSentiment     float64
	CapitalUsed       float64
	ProfitLoss        float64
	ProfitLossPercent float64
	SignalStrength    shared.Signal
	CreatedOn         time.Time
}

// NewEntryTrade records the entry event of the provided position.
func NewEntryTrade(pos *Position, rsiAtEntry float64, newsSentiment float64) (*Trade, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: position cannot be nil", shared.ErrInvalidInput)
	}

	trade := &Trade{
		ID:             uuid.New().String(),
		Symbol:         pos.Symbol,
		Action:         shared.BuyAction,
		Price:          pos.BuyPrice,
		Quantity:       pos.Quantity,
		RSIAtEntry:     rsiAtEntry,
		NewsSentiment:  newsSentiment,
		CapitalUsed:    pos.CapitalUsed(),
		SignalStrength: pos.SignalStrength,
		CreatedOn:      pos.BuyDate,
	}

	return trade, nil
}

// NewExitTrade records the exit event of the provided sold position.
func NewExitTrade(pos *Position, newsSentiment float64) (*Trade, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: position cannot be nil", shared.ErrInvalidInput)
	}
	if !pos.Sold {
		return nil, fmt.Errorf("%w: exit trade requires a sold position, %s is still open",
			shared.ErrInvalidInput, pos.ID)
	}

	trade := &Trade{
		ID:                uuid.New().String(),
		Symbol:            pos.Symbol,
		Action:            shared.SellAction,
		Price:             pos.SellPrice,
		Quantity:          pos.Quantity,
		ExitReason:        pos.ExitReason,
		NewsSentiment:     newsSentiment,
		CapitalUsed:       pos.CapitalUsed(),
		ProfitLoss:        pos.ProfitLoss,
		ProfitLossPercent: pos.ProfitLossPercent,
		SignalStrength:    pos.SignalStrength,
		CreatedOn:         pos.SellDate,
	}

	return trade, nil
}
