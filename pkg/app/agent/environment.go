// Package agent wraps an orderbook.OrderBook in a small discrete
// action/observation/reward contract so a trading strategy — human,
// scripted, or RL — can drive it one step at a time.
package agent

import (
	"math"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

// Action is one of the eight moves available to the environment's
// strategy on each step.
type Action int8

const (
	Hold Action = iota
	BuyMarket
	SellMarket
	BuyLimitAtBid
	SellLimitAtAsk
	BuyLimitAggressive
	SellLimitAggressive
	CancelAll
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "HOLD"
	case BuyMarket:
		return "BUY_MARKET"
	case SellMarket:
		return "SELL_MARKET"
	case BuyLimitAtBid:
		return "BUY_LIMIT_AT_BID"
	case SellLimitAtAsk:
		return "SELL_LIMIT_AT_ASK"
	case BuyLimitAggressive:
		return "BUY_LIMIT_AGGRESSIVE"
	case SellLimitAggressive:
		return "SELL_LIMIT_AGGRESSIVE"
	case CancelAll:
		return "CANCEL_ALL"
	default:
		return "UNKNOWN"
	}
}

// pruneEvery controls how often Step sweeps the active-order list for
// orders that have reached a terminal state.
const pruneEvery = 10

// Position is the agent's current inventory and running PnL.
type Position struct {
	Quantity      int64 // positive = long, negative = short
	AvgPrice      float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// Observation is what a strategy sees before choosing its next Action.
type Observation struct {
	MarketState    orderbook.MarketState
	Position       Position
	ActiveOrders   []uint64
	PortfolioValue float64
	Cash           float64
}

// Reward decomposes the scalar feedback for one action into its
// pnl_change/inventory_penalty/spread_capture components, plus their
// sum.
type Reward struct {
	PnLChange        float64
	InventoryPenalty float64
	SpreadCapture    float64
	Total            float64
}

// Environment drives one participant's view of an orderbook.OrderBook:
// it submits orders on the strategy's behalf, tracks the resulting
// position and cash, and scores each action with a reward.
type Environment struct {
	book  *orderbook.OrderBook
	owner common.Address

	position     Position
	activeOrders []uint64
	cash         float64
	initialCash  float64

	inventoryPenaltyCoef float64
	spreadCaptureReward  float64

	totalTrades int
	totalVolume float64

	defaultQuantity uint64
	actionCount     int
}

// Option configures a new Environment.
type Option func(*Environment)

// WithInventoryPenalty overrides the per-unit inventory penalty
// coefficient (default 0.01).
func WithInventoryPenalty(coef float64) Option {
	return func(e *Environment) { e.inventoryPenaltyCoef = coef }
}

// WithSpreadCaptureReward overrides the spread-capture reward weight
// (default 1.0; unused until spread capture is computed from fills).
func WithSpreadCaptureReward(reward float64) Option {
	return func(e *Environment) { e.spreadCaptureReward = reward }
}

// WithDefaultQuantity overrides the order quantity used when a
// strategy's Step call does not specify one (default 100).
func WithDefaultQuantity(qty uint64) Option {
	return func(e *Environment) { e.defaultQuantity = qty }
}

// WithOwner sets the owner label attached to every order this
// environment submits, so trades can be attributed back to it.
func WithOwner(owner common.Address) Option {
	return func(e *Environment) { e.owner = owner }
}

// New wraps book for a single participant with initialCash starting
// capital. The environment registers a trade callback on book for its
// lifetime; it must not be discarded while book is still in use, or
// stale closures will keep firing into a dead Environment.
func New(book *orderbook.OrderBook, initialCash float64, opts ...Option) *Environment {
	e := &Environment{
		book:                 book,
		cash:                 initialCash,
		initialCash:          initialCash,
		inventoryPenaltyCoef: 0.01,
		spreadCaptureReward:  1.0,
		defaultQuantity:      100,
		activeOrders:         make([]uint64, 0, 100),
	}
	for _, opt := range opts {
		opt(e)
	}
	book.RegisterTradeCallback(e.onTrade)
	return e
}

// onTrade updates position/cash if trade involves one of our active
// orders: close the opposing side first at the trade price, then open
// any remainder at the new average price.
func (e *Environment) onTrade(t orderbook.Trade) {
	isBuy, isOurs := false, false
	for _, id := range e.activeOrders {
		if id == t.BuyID {
			isBuy, isOurs = true, true
			break
		}
		if id == t.SellID {
			isBuy, isOurs = false, true
			break
		}
	}
	if !isOurs {
		return
	}

	e.totalTrades++
	e.totalVolume += float64(t.Quantity)

	price := float64(t.Price)
	qty := int64(t.Quantity)

	if isBuy {
		if e.position.Quantity < 0 {
			closeQty := min64(qty, -e.position.Quantity)
			pnl := float64(closeQty) * (e.position.AvgPrice - price)
			e.position.RealizedPnL += pnl
			e.cash += pnl
			e.position.Quantity += closeQty

			if qty > closeQty {
				newQty := qty - closeQty
				e.position.AvgPrice = price
				e.position.Quantity += newQty
				e.cash -= float64(newQty) * price
			}
		} else {
			totalCost := float64(e.position.Quantity)*e.position.AvgPrice + float64(qty)*price
			e.position.Quantity += qty
			e.position.AvgPrice = totalCost / float64(e.position.Quantity)
			e.cash -= float64(qty) * price
		}
	} else {
		if e.position.Quantity > 0 {
			closeQty := min64(qty, e.position.Quantity)
			pnl := float64(closeQty) * (price - e.position.AvgPrice)
			e.position.RealizedPnL += pnl
			e.cash += pnl + float64(closeQty)*e.position.AvgPrice
			e.position.Quantity -= closeQty

			if qty > closeQty {
				newQty := qty - closeQty
				e.position.AvgPrice = price
				e.position.Quantity -= newQty
				e.cash += float64(newQty) * price
			}
		} else {
			totalValue := float64(-e.position.Quantity)*e.position.AvgPrice + float64(qty)*price
			e.position.Quantity -= qty
			e.position.AvgPrice = totalValue / float64(-e.position.Quantity)
			e.cash += float64(qty) * price
		}
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Observe recomputes the current observation from the live book.
func (e *Environment) Observe() Observation {
	ms := e.book.MarketState()
	pos := e.position
	if pos.Quantity != 0 && ms.HasBestBid && ms.HasBestAsk {
		if pos.Quantity > 0 {
			pos.UnrealizedPnL = float64(pos.Quantity) * (float64(ms.Mid) - pos.AvgPrice)
		} else {
			pos.UnrealizedPnL = -float64(pos.Quantity) * (pos.AvgPrice - float64(ms.Mid))
		}
	}
	return Observation{
		MarketState:    ms,
		Position:       pos,
		ActiveOrders:   append([]uint64(nil), e.activeOrders...),
		Cash:           e.cash,
		PortfolioValue: e.portfolioValue(pos),
	}
}

func (e *Environment) portfolioValue(pos Position) float64 {
	value := e.cash + pos.RealizedPnL
	if mid, ok := e.book.Mid(); ok && pos.Quantity != 0 {
		value += float64(pos.Quantity) * float64(mid)
	}
	return value
}

// Step executes action with a default quantity and returns the
// resulting reward.
func (e *Environment) Step(action Action) Reward {
	return e.StepQuantity(action, e.defaultQuantity)
}

// StepQuantity executes action with an explicit quantity: fetch best
// bid/ask only when the action needs them, submit the corresponding
// order, and prune terminal orders from the active list every
// pruneEvery calls.
func (e *Environment) StepQuantity(action Action, quantity uint64) Reward {
	previousPnL := e.position.RealizedPnL + e.position.UnrealizedPnL

	switch action {
	case Hold:
		// no-op
	case CancelAll:
		for _, id := range e.activeOrders {
			e.book.CancelOrder(id)
		}
		e.activeOrders = e.activeOrders[:0]
	default:
		bestBid, hasBid := e.book.BestBid()
		bestAsk, hasAsk := e.book.BestAsk()

		switch action {
		case BuyMarket:
			if hasAsk {
				e.submit(bestAsk, quantity, orderbook.Buy, orderbook.Market)
			}
		case SellMarket:
			if hasBid {
				e.submit(bestBid, quantity, orderbook.Sell, orderbook.Market)
			}
		case BuyLimitAtBid:
			if hasBid {
				e.submit(bestBid, quantity, orderbook.Buy, orderbook.Limit)
			}
		case SellLimitAtAsk:
			if hasAsk {
				e.submit(bestAsk, quantity, orderbook.Sell, orderbook.Limit)
			}
		case BuyLimitAggressive:
			if hasBid && hasAsk {
				e.submit((bestBid+bestAsk)/2, quantity, orderbook.Buy, orderbook.Limit)
			}
		case SellLimitAggressive:
			if hasBid && hasAsk {
				e.submit((bestBid+bestAsk)/2, quantity, orderbook.Sell, orderbook.Limit)
			}
		}
	}

	e.actionCount++
	if e.actionCount%pruneEvery == 0 {
		e.pruneTerminalOrders()
	}

	return e.calculateReward(previousPnL)
}

func (e *Environment) submit(price int64, quantity uint64, side orderbook.Side, typ orderbook.Type) {
	id, err := e.book.AddOrderAs(price, quantity, side, typ, e.owner)
	if err != nil {
		return
	}
	e.activeOrders = append(e.activeOrders, id)
}

// pruneTerminalOrders drops order IDs the book no longer considers
// live, compacting activeOrders in place with a single read/write
// sweep.
func (e *Environment) pruneTerminalOrders() {
	writeIdx := 0
	for _, id := range e.activeOrders {
		if upd, ok := e.book.GetOrder(id); ok && !upd.Status.Terminal() {
			e.activeOrders[writeIdx] = id
			writeIdx++
		}
	}
	e.activeOrders = e.activeOrders[:writeIdx]
}

func (e *Environment) calculateReward(previousPnL float64) Reward {
	currentPnL := e.position.RealizedPnL + e.position.UnrealizedPnL
	var r Reward
	r.PnLChange = currentPnL - previousPnL
	r.InventoryPenalty = -e.inventoryPenaltyCoef * math.Abs(float64(e.position.Quantity))
	r.SpreadCapture = 0 // reserved: not yet attributed from individual fills
	r.Total = r.PnLChange + r.InventoryPenalty + r.SpreadCapture
	return r
}

// Reset clears position, cash, and bookkeeping back to initial state.
// It does not touch the underlying order book or cancel orders there —
// callers that want a clean book should cancel first.
func (e *Environment) Reset() {
	e.position = Position{}
	e.activeOrders = e.activeOrders[:0]
	e.cash = e.initialCash
	e.totalTrades = 0
	e.totalVolume = 0
	e.actionCount = 0
}

func (e *Environment) Position() Position   { return e.position }
func (e *Environment) TotalTrades() int     { return e.totalTrades }
func (e *Environment) TotalVolume() float64 { return e.totalVolume }
func (e *Environment) PortfolioValue() float64 {
	return e.portfolioValue(e.position)
}
