// Package backtest replays a strategy against an agent.Environment and
// scores the resulting equity curve: total return, annualized Sharpe
// and Sortino ratios, and max drawdown.
package backtest

import (
	"math"

	"github.com/uhyunpark/lobsim/pkg/app/agent"
)

// periodsPerYear annualizes Sharpe/Sortino against 252 trading days.
const periodsPerYear = 252.0

// Strategy chooses the next action given the current observation.
type Strategy func(agent.Observation) agent.Action

// Result carries the equity curve and the derived performance metrics
// from one backtest run.
type Result struct {
	EquityCurve  []float64
	TotalReturn  float64
	SharpeRatio  float64
	SortinoRatio float64
	MaxDrawdown  float64
	TotalTrades  int
}

// Run drives env for steps iterations: observe, ask strategy for an
// action, execute it, and record the resulting portfolio value. The
// equity curve always has steps+1 points: the starting value, then one
// more after each step.
func Run(env *agent.Environment, strategy Strategy, steps int) Result {
	equity := make([]float64, 0, steps+1)
	equity = append(equity, env.PortfolioValue())

	for i := 0; i < steps; i++ {
		obs := env.Observe()
		action := strategy(obs)
		env.Step(action)
		equity = append(equity, env.PortfolioValue())
	}

	return calculateMetrics(equity, env.TotalTrades())
}

func calculateMetrics(equity []float64, totalTrades int) Result {
	result := Result{EquityCurve: equity, TotalTrades: totalTrades}

	if len(equity) < 2 {
		return result
	}

	result.TotalReturn = (equity[len(equity)-1] - equity[0]) / equity[0]

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i]-prev)/prev)
	}

	if len(returns) > 0 {
		mean := meanOf(returns)
		stdDev := math.Sqrt(varianceOf(returns, mean))
		if stdDev > 0 {
			result.SharpeRatio = mean / stdDev * math.Sqrt(periodsPerYear)
		}

		var downsideVariance float64
		var downsideCount int
		for _, r := range returns {
			if r < 0 {
				downsideVariance += r * r
				downsideCount++
			}
		}
		if downsideCount > 0 {
			downsideDev := math.Sqrt(downsideVariance / float64(downsideCount))
			if downsideDev > 0 {
				result.SortinoRatio = mean / downsideDev * math.Sqrt(periodsPerYear)
			}
		}
	}

	result.MaxDrawdown = maxDrawdown(equity)
	return result
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func varianceOf(xs []float64, mean float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

func maxDrawdown(equity []float64) float64 {
	peak := equity[0]
	var maxDD float64
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak == 0 {
			continue
		}
		dd := (peak - e) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
