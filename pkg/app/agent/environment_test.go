package agent

import (
	"testing"

	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

func TestBuyLimitAggressiveAtMidDoesNotCrossWhenBelowAsk(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 50, orderbook.Sell, orderbook.Limit)
	book.AddOrder(99, 50, orderbook.Buy, orderbook.Limit) // establishes a best bid

	env := New(book, 10000)
	env.StepQuantity(BuyLimitAggressive, 10) // mid of (99,100) = 99, below the ask at 100

	if env.Position().Quantity != 0 {
		t.Fatalf("expected no fill when the aggressive price does not cross, got qty=%d", env.Position().Quantity)
	}
}

func TestBuyMarketOpensLongPosition(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 50, orderbook.Sell, orderbook.Limit)

	env := New(book, 10000)
	env.StepQuantity(BuyMarket, 10)

	pos := env.Position()
	if pos.Quantity != 10 {
		t.Fatalf("expected long position of 10, got %d", pos.Quantity)
	}
	if pos.AvgPrice != 100 {
		t.Fatalf("expected avg price 100, got %v", pos.AvgPrice)
	}
}

func TestSellMarketClosesLongThenOpensShort(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 50, orderbook.Sell, orderbook.Limit)
	book.AddOrder(99, 50, orderbook.Buy, orderbook.Limit)

	env := New(book, 10000)
	env.StepQuantity(BuyMarket, 10) // +10 long @100

	book.AddOrder(100, 50, orderbook.Buy, orderbook.Limit) // liquidity for the sell to hit
	env.StepQuantity(SellMarket, 15)                       // close 10 long, open 5 short

	pos := env.Position()
	if pos.Quantity != -5 {
		t.Fatalf("expected a 5-unit short position after overshooting the close, got %d", pos.Quantity)
	}
}

func TestCancelAllClearsActiveOrders(t *testing.T) {
	book := orderbook.New()
	// No resting ask, so BuyLimitAtBid needs a bid to reference; use a
	// price far from any cross so the order rests.
	book.AddOrder(90, 10, orderbook.Buy, orderbook.Limit)

	env := New(book, 10000)
	env.StepQuantity(BuyLimitAtBid, 5)
	if len(env.Observe().ActiveOrders) == 0 {
		t.Fatalf("expected an active order after BuyLimitAtBid")
	}

	env.StepQuantity(CancelAll, 0)
	if len(env.Observe().ActiveOrders) != 0 {
		t.Fatalf("expected CancelAll to clear active orders")
	}
}

func TestHoldProducesZeroPnLChange(t *testing.T) {
	book := orderbook.New()
	env := New(book, 10000)

	r := env.Step(Hold)
	if r.PnLChange != 0 {
		t.Fatalf("expected zero PnL change on HOLD, got %v", r.PnLChange)
	}
}

func TestInventoryPenaltyScalesWithAbsolutePosition(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 50, orderbook.Sell, orderbook.Limit)

	env := New(book, 10000, WithInventoryPenalty(0.5))
	r := env.StepQuantity(BuyMarket, 10)

	if r.InventoryPenalty != -5 {
		t.Fatalf("expected inventory penalty -5 (0.5 * 10), got %v", r.InventoryPenalty)
	}
}

func TestResetClearsPositionAndCash(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(100, 50, orderbook.Sell, orderbook.Limit)

	env := New(book, 10000)
	env.StepQuantity(BuyMarket, 10)
	env.Reset()

	if env.Position().Quantity != 0 {
		t.Fatalf("expected position cleared after Reset")
	}
	if env.Observe().Cash != 10000 {
		t.Fatalf("expected cash restored to initial value after Reset, got %v", env.Observe().Cash)
	}
}

func TestPruneTerminalOrdersRunsEveryTenActions(t *testing.T) {
	book := orderbook.New()
	book.AddOrder(90, 1000, orderbook.Buy, orderbook.Limit)

	env := New(book, 10000)
	for i := 0; i < 9; i++ {
		env.StepQuantity(BuyLimitAtBid, 1)
	}
	before := len(env.Observe().ActiveOrders)
	env.StepQuantity(BuyLimitAtBid, 1) // 10th action triggers prune
	after := len(env.Observe().ActiveOrders)

	if before == 0 || after == 0 {
		t.Fatalf("expected resting limit orders to remain active (non-terminal), before=%d after=%d", before, after)
	}
}
