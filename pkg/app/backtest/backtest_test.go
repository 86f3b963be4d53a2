package backtest

import (
	"testing"

	"github.com/uhyunpark/lobsim/pkg/app/agent"
	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

func holdStrategy(agent.Observation) agent.Action { return agent.Hold }

func TestRunProducesEquityCurveWithStepsPlusOnePoints(t *testing.T) {
	book := orderbook.New()
	env := agent.New(book, 10000)

	result := Run(env, holdStrategy, 20)

	if len(result.EquityCurve) != 21 {
		t.Fatalf("expected 21 equity points for 20 steps, got %d", len(result.EquityCurve))
	}
}

func TestRunWithHoldOnlyYieldsZeroReturn(t *testing.T) {
	book := orderbook.New()
	env := agent.New(book, 10000)

	result := Run(env, holdStrategy, 10)

	if result.TotalReturn != 0 {
		t.Fatalf("expected zero total return for an all-HOLD strategy, got %v", result.TotalReturn)
	}
	if result.MaxDrawdown != 0 {
		t.Fatalf("expected zero drawdown with flat equity, got %v", result.MaxDrawdown)
	}
}

func TestMaxDrawdownTracksPeakToTrough(t *testing.T) {
	equity := []float64{100, 120, 90, 110}
	got := maxDrawdown(equity)
	want := (120.0 - 90.0) / 120.0
	if got != want {
		t.Fatalf("expected drawdown %v, got %v", want, got)
	}
}

func TestCalculateMetricsDegenerateSinglePoint(t *testing.T) {
	result := calculateMetrics([]float64{1000}, 0)
	if result.SharpeRatio != 0 || result.SortinoRatio != 0 || result.TotalReturn != 0 {
		t.Fatalf("expected all-zero metrics for a single equity point, got %+v", result)
	}
}

func TestBuyThenHoldStrategyAccumulatesTrades(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 100000, orderbook.Sell, orderbook.Limit)
	env := agent.New(book, 100000)

	step := 0
	strategy := func(agent.Observation) agent.Action {
		step++
		if step == 1 {
			return agent.BuyMarket
		}
		return agent.Hold
	}

	result := Run(env, strategy, 5)
	if result.TotalTrades == 0 {
		t.Fatalf("expected at least one trade after a BUY_MARKET step")
	}
}
