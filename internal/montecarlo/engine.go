package montecarlo

import "math"

// Estimate is the outcome of one simulation run.
type Estimate struct {
	// Value is the discounted mean basket value.
	Value float64
	// StdError is the discounted standard error of the mean. It is zero when
	// fewer than two paths were simulated.
	StdError float64
	// Paths is the number of simulated paths.
	Paths int
}

// Engine runs basket simulations against a single NormalSource.
// An Engine is not safe for concurrent use.
type Engine struct {
	normal *NormalSource
}

// NewEngine returns an engine drawing from src.
func NewEngine(src *NormalSource) *Engine {
	return &Engine{normal: src}
}

// Simulate returns the discounted expected basket value estimated from
// pathCount independent paths. A non-positive pathCount yields NaN.
func (e *Engine) Simulate(basket Basket, riskFreeRate, timeHorizon float64, pathCount int) float64 {
	return e.SimulateWithStats(basket, riskFreeRate, timeHorizon, pathCount).Value
}

// SimulateWithStats is Simulate plus the standard error of the estimate.
func (e *Engine) SimulateWithStats(basket Basket, riskFreeRate, timeHorizon float64, pathCount int) Estimate {
	if pathCount <= 0 {
		return Estimate{Value: math.NaN()}
	}

	// Welford accumulation keeps the variance stable for large path counts.
	// After a non-finite path value the estimate is a plain sum, so an
	// overflow stays +Inf or -Inf.
	var mean, m2, sum float64
	finite := true
	for i := 1; i <= pathCount; i++ {
		v := BasketPathValue(basket, riskFreeRate, timeHorizon, e.normal.Next)
		sum += v
		if finite && (math.IsInf(v, 0) || math.IsNaN(v)) {
			finite = false
		}
		if finite {
			delta := v - mean
			mean += delta / float64(i)
			m2 += delta * (v - mean)
		}
	}

	df := DiscountFactor(riskFreeRate, timeHorizon)
	if !finite {
		est := Estimate{Value: df * sum / float64(pathCount), Paths: pathCount}
		if pathCount > 1 {
			est.StdError = math.Abs(est.Value)
		}
		return est
	}
	est := Estimate{Value: df * mean, Paths: pathCount}
	if pathCount > 1 {
		variance := m2 / float64(pathCount-1)
		est.StdError = df * math.Sqrt(variance/float64(pathCount))
	}
	return est
}
