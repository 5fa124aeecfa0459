package shared

// Signal represents a discrete trading signal produced by fusing an rsi trend
// with a news sentiment trend.
type Signal int

const (
	StrongBuy Signal = iota
	Buy
	Hold
	Sell
	StrongSell
)

// String stringifies the provided signal.
func (s Signal) String() string {
	switch s {
	case StrongBuy:
		return "strong buy"
	case Buy:
		return "buy"
	case Hold:
		return "hold"
	case Sell:
		return "sell"
	case StrongSell:
		return "strong sell"
	default:
		return "unknown"
	}
}

// BuySignal asserts whether the signal calls for a position entry.
func (s Signal) BuySignal() bool {
	return s == Buy || s == StrongBuy
}

// SellSignal asserts whether the signal calls for a position exit.
func (s Signal) SellSignal() bool {
	return s == Sell || s == StrongSell
}
