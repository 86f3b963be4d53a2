package orderbook

import "math"

const depthLadderSize = 10

// PriceLevelView is a read-only snapshot of one resting price for the
// depth ladder.
type PriceLevelView struct {
	Price    int64
	Quantity uint64
}

// MarketState is the projector's output: everything a market-making
// agent or an external observer needs, recomputed on demand from the
// book's current resting state and its bounded trade history. Nothing
// here is cached between calls.
type MarketState struct {
	BestBid            int64
	BestAsk            int64
	HasBestBid         bool
	HasBestAsk         bool
	Spread             int64
	Mid                int64
	BidDepth           []PriceLevelView
	AskDepth           []PriceLevelView
	LastTradePrice     int64
	HasLastTrade       bool
	VWAP               float64
	PriceVolatility    float64
	OrderFlowImbalance float64
}

// MarketState recomputes the full projection from the book's current
// resting state and its bounded trade history: VWAP over cumulative
// price*quantity / cumulative quantity, population stddev of the
// bounded recent-trade ring for volatility, and a simple top-of-book
// imbalance ratio.
func (ob *OrderBook) MarketState() MarketState {
	var ms MarketState

	ms.BestBid, ms.HasBestBid = ob.BestBid()
	ms.BestAsk, ms.HasBestAsk = ob.BestAsk()
	if ms.HasBestBid && ms.HasBestAsk {
		ms.Spread = ms.BestAsk - ms.BestBid
		ms.Mid = (ms.BestBid + ms.BestAsk) / 2
	}

	ms.BidDepth = ob.depthLadder(Buy)
	ms.AskDepth = ob.depthLadder(Sell)

	if ob.recentCount > 0 {
		lastIdx := (ob.recentHead - 1 + maxRecentTrades) % maxRecentTrades
		ms.LastTradePrice = ob.recentPrices[lastIdx]
		ms.HasLastTrade = true
	}

	if ob.cumVolume > 0 {
		ms.VWAP = float64(ob.cumNotional) / float64(ob.cumVolume)
	}
	ms.PriceVolatility = ob.recentPriceVolatility()

	ms.OrderFlowImbalance = orderFlowImbalance(topOfBookQty(ms.BidDepth), topOfBookQty(ms.AskDepth))

	return ms
}

// depthLadder returns up to depthLadderSize resting prices on side,
// best price first.
func (ob *OrderBook) depthLadder(side Side) []PriceLevelView {
	levels := ob.levels(side)
	prices := make([]int64, 0, len(levels))
	for p := range levels {
		prices = append(prices, p)
	}
	if side == Buy {
		sortDesc(prices)
	} else {
		sortAsc(prices)
	}
	if len(prices) > depthLadderSize {
		prices = prices[:depthLadderSize]
	}
	out := make([]PriceLevelView, len(prices))
	for i, p := range prices {
		out[i] = PriceLevelView{Price: p, Quantity: levels[p].TotalQuantity}
	}
	return out
}

func sortAsc(xs []int64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func sortDesc(xs []int64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] < xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// recentPriceVolatility is the population standard deviation of trade
// prices in the recent-trade ring (no sample-size correction).
func (ob *OrderBook) recentPriceVolatility() float64 {
	n := ob.recentCount
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(ob.recentPrices[i])
	}
	mean := sum / float64(n)

	var sumSq float64
	for i := 0; i < n; i++ {
		d := float64(ob.recentPrices[i]) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// topOfBookQty returns the resting quantity at the best price of a
// depth ladder, or zero if that side is empty.
func topOfBookQty(ladder []PriceLevelView) uint64 {
	if len(ladder) == 0 {
		return 0
	}
	return ladder[0].Quantity
}

// orderFlowImbalance is (bidQty - askQty) / (bidQty + askQty) at the
// top of book, in [-1, 1]; zero when both sides are empty.
func orderFlowImbalance(bidQty, askQty uint64) float64 {
	total := bidQty + askQty
	if total == 0 {
		return 0
	}
	return (float64(bidQty) - float64(askQty)) / float64(total)
}
