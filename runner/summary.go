package runner

import (
	"time"

	"github.com/dnldd/papertrade/position"
)

// RunSummary reports the outcome of a daily cycle. It is a read-only
// reporting view, not part of the decision core.
type RunSummary struct {
	// Date is the time the cycle ran.
	Date time.Time
	// Weekend indicates the cycle was skipped for the weekend.
	Weekend bool
	// Evaluated is the number of symbols fully processed.
	Evaluated int
	// Skipped is the number of symbols skipped or failed.
	Skipped int
	// EntriesOpened is the number of positions opened this cycle.
	EntriesOpened int
	// ExitsClosed is the number of positions closed this cycle.
	ExitsClosed int
	// OpenPositions is the number of open positions after the cycle.
	OpenPositions int
	// UnrealizedPNL is the aggregate open profit and loss at current prices.
	UnrealizedPNL float64
	// CapitalUtilization is the percentage of capital committed to open positions.
	CapitalUtilization float64
	// Trades lists the ledger entries recorded today.
	Trades []*position.Trade
}
