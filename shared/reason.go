package shared

// ExitReason represents the reason a position was closed.
type ExitReason int

const (
	NoExit ExitReason = iota
	StopLoss
	TargetHit
	Strategy
	StrategyNews
)

// String stringifies the provided exit reason.
func (r ExitReason) String() string {
	switch r {
	case NoExit:
		return "no exit"
	case StopLoss:
		return "stop loss"
	case TargetHit:
		return "target hit"
	case Strategy:
		return "strategy"
	case StrategyNews:
		return "strategy news"
	default:
		return "unknown"
	}
}

// Action represents the side of an order or trade.
type Action int

const (
	BuyAction Action = iota
	SellAction
)

// String stringifies the provided action.
func (a Action) String() string {
	switch a {
	case BuyAction:
		return "buy"
	case SellAction:
		return "sell"
	default:
		return "unknown"
	}
}
