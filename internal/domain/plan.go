package domain

// PositionPlan holds the risk parameters computed once per accepted signal.
// It is not persisted on its own; its values feed the resulting Trade.
type PositionPlan struct {
	EntryPrice float64 // Price the position is planned at
	TakeProfit float64 // Fixed profit target
	StopLoss   float64 // Trailing stop level, floored relative to entry
	Quantity   float64 // Base-currency quantity (notional / entry price)
}

// Signal is an ephemeral entry decision. It is never persisted.
type Signal struct {
	BarIndex int // Index of the bar the decision was evaluated on
}
