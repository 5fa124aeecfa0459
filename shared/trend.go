package shared

// RSITrend represents the recent trend of a market's rsi series.
type RSITrend int

const (
	StronglyBullishTrend RSITrend = iota
	BullishTrend
	NeutralTrend
	VolatileTrend
	BearishTrend
	StronglyBearishTrend
	UnknownTrend
)

// String stringifies the provided rsi trend.
func (t RSITrend) String() string {
	switch t {
	case StronglyBullishTrend:
		return "strongly bullish trend"
	case BullishTrend:
		return "bullish trend"
	case NeutralTrend:
		return "neutral trend"
	case VolatileTrend:
		return "volatile trend"
	case BearishTrend:
		return "bearish trend"
	case StronglyBearishTrend:
		return "strongly bearish trend"
	case UnknownTrend:
		return "unknown trend"
	default:
		return "unknown trend"
	}
}

// Bullish asserts whether the trend is a bullish variant.
func (t RSITrend) Bullish() bool {
	return t == StronglyBullishTrend || t == BullishTrend
}

// Bearish asserts whether the trend is a bearish variant.
func (t RSITrend) Bearish() bool {
	return t == StronglyBearishTrend || t == BearishTrend
}
