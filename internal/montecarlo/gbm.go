package montecarlo

import "math"

// TerminalPrice returns the price of asset at horizon T years given one
// standard normal draw z:
//
//	S(T) = S0 · exp((r − σ²/2)·T + σ·√T·z)
//
// Non-finite inputs propagate into the result.
func TerminalPrice(asset Asset, riskFreeRate, timeHorizon, z float64) float64 {
	sigma := asset.Volatility
	drift := (riskFreeRate - 0.5*sigma*sigma) * timeHorizon
	diffusion := sigma * math.Sqrt(timeHorizon) * z
	return asset.Spot * math.Exp(drift+diffusion)
}

// BasketPathValue simulates one path: every asset receives its own draw, and
// the weighted terminal prices are summed. The value is not discounted.
func BasketPathValue(basket Basket, riskFreeRate, timeHorizon float64, draw func() float64) float64 {
	var total float64
	for _, asset := range basket {
		total += asset.Weight * TerminalPrice(asset, riskFreeRate, timeHorizon, draw())
	}
	return total
}

// DiscountFactor returns exp(−r·T).
func DiscountFactor(riskFreeRate, timeHorizon float64) float64 {
	return math.Exp(-riskFreeRate * timeHorizon)
}
