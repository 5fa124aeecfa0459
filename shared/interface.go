package shared

import (
	"context"
	"time"
)

const (
	// MarketOrder is the order type used for all simulated orders.
	MarketOrder = "MARKET"
	// DeliveryProduct is the product type used for all simulated orders.
	DeliveryProduct = "CNC"
)

// OrderRequest describes an order submitted to the broker gateway.
type OrderRequest struct {
	Symbol    string
	Action    Action
	Quantity  int
	Price     float64
	OrderType string
	Product   string
}

// MarketFetcher defines the requirements for fetching market data.
type MarketFetcher interface {
	// FetchQuote fetches the current price for the provided symbol.
	FetchQuote(ctx context.Context, symbol string) (float64, error)
	// FetchDailyCloses fetches end-of-day closes for the provided symbol,
	// ascending by date, covering up to the provided lookback in days.
	FetchDailyCloses(ctx context.Context, symbol string, lookbackDays int) ([]float64, error)
}

// SentimentStorer defines the requirements for querying sentiment samples.
type SentimentStorer interface {
	// QuerySentimentWindow aggregates sentiment samples for the provided
	// symbol within [start, end).
	QuerySentimentWindow(ctx context.Context, symbol string, start time.Time, end time.Time) (SentimentWindow, error)
}

// OrderPlacer defines the requirements for placing broker orders.
type OrderPlacer interface {
	// PlaceOrder places the provided order. It must complete, or be known
	// to have failed, before any position state is committed.
	PlaceOrder(ctx context.Context, req *OrderRequest) error
}
