// Package orderbook implements a single-instrument limit order book
// matching engine: pooled orders and price levels, strict price-time
// priority matching, and the trade/order-update/state-update callback
// contract consumed by the agent environment and observation surface.
package orderbook

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/lobsim/pkg/app/core/market"
)

const maxRecentTrades = 100

// TradeFunc, OrderFunc and StateFunc are the three callback shapes the
// engine invokes synchronously, in registration order, on the
// submitting goroutine. Listeners must not call AddOrder/CancelOrder/
// ModifyOrder — the engine guards against that with ErrReentrant.
type TradeFunc func(Trade)
type OrderFunc func(OrderUpdate)
type StateFunc func(*OrderBook)

// OrderBook owns the bid/ask price-indexed levels, the order-ID index,
// the pools backing both, and the bounded recent-trade ring feeding
// VWAP/volatility. Exactly one goroutine may call its mutating methods
// at a time; there is no internal locking.
type OrderBook struct {
	orderPool      *orderPool
	priceLevelPool *priceLevelPool

	bids    map[int64]*PriceLevel
	asks    map[int64]*PriceLevel
	bidHeap maxPriceHeap
	askHeap minPriceHeap

	ordersByID map[uint64]*Order
	nextID     uint64

	recentPrices [maxRecentTrades]int64
	recentQtys   [maxRecentTrades]uint64
	recentHead   int // next write index
	recentCount  int

	cumVolume   uint64
	cumNotional int64

	tradeListeners []TradeFunc
	orderListeners []OrderFunc
	stateListeners []StateFunc

	inCallback bool

	now func() int64 // injectable clock for tests; defaults to wall-clock ns

	market *market.Market // nil means no tick/lot/size/notional validation
}

// Option configures a new OrderBook.
type Option func(*OrderBook)

// WithBlockSize overrides the pool block size (default 4096).
func WithBlockSize(n int) Option {
	return func(ob *OrderBook) {
		ob.orderPool = newOrderPool(n)
		ob.priceLevelPool = newPriceLevelPool(n)
	}
}

// WithClock overrides the nanosecond clock used to timestamp orders and
// trades; intended for deterministic tests.
func WithClock(clock func() int64) Option {
	return func(ob *OrderBook) { ob.now = clock }
}

// WithMarket attaches tick/lot/size/notional validation to every
// submitted order. Without it, the engine only rejects zero quantity
// and non-positive limit prices.
func WithMarket(m *market.Market) Option {
	return func(ob *OrderBook) { ob.market = m }
}

func New(opts ...Option) *OrderBook {
	ob := &OrderBook{
		orderPool:      newOrderPool(defaultBlockSize),
		priceLevelPool: newPriceLevelPool(defaultBlockSize),
		bids:           make(map[int64]*PriceLevel),
		asks:           make(map[int64]*PriceLevel),
		ordersByID:     make(map[uint64]*Order),
		now:            func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(ob)
	}
	heap.Init(&ob.bidHeap)
	heap.Init(&ob.askHeap)
	return ob
}

// RegisterTradeCallback, RegisterOrderCallback and RegisterStateCallback
// add a listener to the corresponding list. Listeners fire in
// registration order.
func (ob *OrderBook) RegisterTradeCallback(fn TradeFunc) { ob.tradeListeners = append(ob.tradeListeners, fn) }
func (ob *OrderBook) RegisterOrderCallback(fn OrderFunc) { ob.orderListeners = append(ob.orderListeners, fn) }
func (ob *OrderBook) RegisterStateCallback(fn StateFunc) { ob.stateListeners = append(ob.stateListeners, fn) }

func (ob *OrderBook) notifyTrade(t Trade) {
	ob.inCallback = true
	defer func() { ob.inCallback = false }()
	for _, fn := range ob.tradeListeners {
		fn(t)
	}
}

func (ob *OrderBook) notifyOrder(u OrderUpdate) {
	ob.inCallback = true
	defer func() { ob.inCallback = false }()
	for _, fn := range ob.orderListeners {
		fn(u)
	}
}

func (ob *OrderBook) notifyState() {
	ob.inCallback = true
	defer func() { ob.inCallback = false }()
	for _, fn := range ob.stateListeners {
		fn(ob)
	}
}

// BestBid returns the highest resting buy price, if any.
func (ob *OrderBook) BestBid() (int64, bool) { return ob.bidHeap.peek() }

// BestAsk returns the lowest resting sell price, if any.
func (ob *OrderBook) BestAsk() (int64, bool) { return ob.askHeap.peek() }

// Mid returns the integer average of best bid and best ask, or zero if
// either side is empty.
func (ob *OrderBook) Mid() (int64, bool) {
	bid, ok1 := ob.BestBid()
	ask, ok2 := ob.BestAsk()
	if !ok1 || !ok2 {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread returns best ask minus best bid, or zero if either side is
// empty.
func (ob *OrderBook) Spread() (int64, bool) {
	bid, ok1 := ob.BestBid()
	ask, ok2 := ob.BestAsk()
	if !ok1 || !ok2 {
		return 0, false
	}
	return ask - bid, true
}

// VolumeAtPrice returns the resting total quantity at price on side.
func (ob *OrderBook) VolumeAtPrice(price int64, side Side) uint64 {
	if l, ok := ob.levels(side)[price]; ok {
		return l.TotalQuantity
	}
	return 0
}

// GetOrder returns a snapshot of a live order, if present.
func (ob *OrderBook) GetOrder(id uint64) (OrderUpdate, bool) {
	o, ok := ob.ordersByID[id]
	if !ok {
		return OrderUpdate{}, false
	}
	return o.toUpdate(), true
}

func (ob *OrderBook) levels(side Side) map[int64]*PriceLevel {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) oppositeLevels(side Side) map[int64]*PriceLevel {
	if side == Buy {
		return ob.asks
	}
	return ob.bids
}

func (ob *OrderBook) bestOpposite(side Side) (int64, bool) {
	if side == Buy {
		return ob.BestAsk()
	}
	return ob.BestBid()
}

func (ob *OrderBook) getOrCreateLevel(price int64, side Side) *PriceLevel {
	levels := ob.levels(side)
	if l, ok := levels[price]; ok {
		return l
	}
	l := ob.priceLevelPool.allocate(price)
	levels[price] = l
	if side == Buy {
		heap.Push(&ob.bidHeap, price)
	} else {
		heap.Push(&ob.askHeap, price)
	}
	return l
}

func (ob *OrderBook) removeLevelIfEmpty(price int64, side Side) {
	levels := ob.levels(side)
	l, ok := levels[price]
	if !ok || !l.empty() {
		return
	}
	delete(levels, price)
	ob.priceLevelPool.release(l)
	if side == Buy {
		ob.removeBidPrice(price)
	} else {
		ob.removeAskPrice(price)
	}
}

func (ob *OrderBook) removeBidPrice(price int64) {
	for i, p := range ob.bidHeap {
		if p == price {
			heap.Remove(&ob.bidHeap, i)
			return
		}
	}
}

func (ob *OrderBook) removeAskPrice(price int64) {
	for i, p := range ob.askHeap {
		if p == price {
			heap.Remove(&ob.askHeap, i)
			return
		}
	}
}

// validateSubmission rejects malformed quantities and non-positive
// limit prices outright, then defers to the attached market (if any)
// for tick/lot alignment and size/notional bounds. A MARKET order's
// price is not yet known at submission time, so only its quantity is
// checked against the market; LIMIT, IOC and FOK orders carry a
// user-supplied price and get the full check.
func (ob *OrderBook) validateSubmission(price int64, qty uint64, typ Type) error {
	if qty == 0 {
		return fmt.Errorf("orderbook: quantity must be positive")
	}
	if typ == Limit && price <= 0 {
		return fmt.Errorf("orderbook: limit price must be positive")
	}
	if ob.market == nil {
		return nil
	}
	checkPrice := price
	if typ == Market {
		checkPrice = 0
	}
	return ob.market.ValidateOrder(checkPrice, int64(qty))
}

// crosses reports whether an order at price on side would match the
// opposing best price.
func crosses(side Side, price, oppositePrice int64) bool {
	if side == Buy {
		return price >= oppositePrice
	}
	return price <= oppositePrice
}

// fillableQuantity sums resting quantity on the opposite side at prices
// that would cross limitPrice, stopping early once it reaches need. Used
// only for the FOK pre-check: the book is never mutated by this walk, so
// a rejected FOK order leaves no partial trades behind.
func (ob *OrderBook) fillableQuantity(side Side, limitPrice int64, need uint64) uint64 {
	var total uint64
	for price, l := range ob.oppositeLevels(side) {
		if !crosses(side, limitPrice, price) {
			continue
		}
		total += l.TotalQuantity
		if total >= need {
			return total
		}
	}
	return total
}

// AddOrder submits a new order with no owner label and returns its
// assigned ID. The ID is returned even when the order is ultimately
// rejected or cancelled so a caller can correlate the OrderUpdate
// callback.
func (ob *OrderBook) AddOrder(price int64, qty uint64, side Side, typ Type) (uint64, error) {
	return ob.addOrderOwned(price, qty, side, typ, common.Address{})
}

// AddOrderAs is AddOrder with an explicit owner label, used by the agent
// environment and observation surface to track which orders belong to
// which participant. This is an identity label only — no signature or
// authentication is performed (non-goal).
func (ob *OrderBook) AddOrderAs(price int64, qty uint64, side Side, typ Type, owner common.Address) (uint64, error) {
	return ob.addOrderOwned(price, qty, side, typ, owner)
}

func (ob *OrderBook) addOrderOwned(price int64, qty uint64, side Side, typ Type, owner common.Address) (uint64, error) {
	if ob.inCallback {
		return 0, ErrReentrant
	}

	ob.nextID++
	id := ob.nextID
	now := ob.now()

	if err := ob.validateSubmission(price, qty, typ); err != nil {
		ob.notifyOrder(OrderUpdate{ID: id, Price: price, Quantity: qty, Side: side, Type: typ, Status: Rejected, Timestamp: now})
		ob.notifyState()
		return id, nil
	}

	o := ob.orderPool.allocate()
	o.ID = id
	o.Price = price
	o.Quantity = qty
	o.Side = side
	o.Type = typ
	o.Status = New
	o.Timestamp = now
	o.Owner = owner

	if typ == Market {
		best, ok := ob.bestOpposite(side)
		if !ok {
			o.Status = Rejected
			ob.notifyOrder(o.toUpdate())
			ob.orderPool.release(o)
			ob.notifyState()
			return id, nil
		}
		o.Price = best
	}

	if typ == FOK {
		if ob.fillableQuantity(side, o.Price, qty) < qty {
			o.Status = Rejected
			ob.notifyOrder(o.toUpdate())
			ob.orderPool.release(o)
			ob.notifyState()
			return id, nil
		}
	}

	ob.ordersByID[id] = o
	ob.matchOrder(o)

	if typ == Limit && o.Remaining() > 0 && o.Status != Cancelled {
		level := ob.getOrCreateLevel(o.Price, o.Side)
		level.add(o)
		ob.notifyOrder(o.toUpdate())
		ob.notifyState()
		return id, nil
	}

	if o.Remaining() > 0 {
		// Market/IOC/FOK residual never rests.
		o.Status = Cancelled
	}

	// A fully filled order already got its final Filled update from
	// executeTrade; only a cancelled residual needs one here. Either way
	// the order leaves ordersByID and goes back to the pool, so its
	// update must be captured before release zeroes the record.
	needsUpdate := o.Status == Cancelled
	upd := o.toUpdate()
	delete(ob.ordersByID, id)
	ob.orderPool.release(o)
	if needsUpdate {
		ob.notifyOrder(upd)
	}
	ob.notifyState()
	return id, nil
}

// matchOrder runs the matching loop for incoming against resting
// opposite-side liquidity, in strictly ascending (for a buy) or
// descending (for a sell) best price order, FIFO within a price level.
func (ob *OrderBook) matchOrder(incoming *Order) {
	for incoming.Remaining() > 0 {
		bestPrice, ok := ob.bestOpposite(incoming.Side)
		if !ok || !crosses(incoming.Side, incoming.Price, bestPrice) {
			break
		}
		level := ob.oppositeLevels(incoming.Side)[bestPrice]
		passive := level.best()
		if passive == nil {
			ob.removeLevelIfEmpty(bestPrice, oppositeSide(incoming.Side))
			continue
		}

		matchQty := min64(incoming.Remaining(), passive.Remaining())
		ob.executeTrade(level, passive, incoming, matchQty)
	}

	if (incoming.Type == IOC || incoming.Type == Market) && incoming.Remaining() > 0 && !incoming.fullyFilled() {
		incoming.Status = Cancelled
	}
}

func oppositeSide(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// executeTrade fills passive (resting, at its own price) against
// aggressive (incoming) for quantity, updates both orders, the level's
// aggregate, the recent-trade ring and VWAP sums, and emits trade/order
// callbacks in causal order — the trade fires before either party's
// resulting OrderUpdate.
func (ob *OrderBook) executeTrade(level *PriceLevel, passive, aggressive *Order, quantity uint64) {
	priorRemaining := passive.Remaining()

	passive.FilledQuantity += quantity
	aggressive.FilledQuantity += quantity

	if passive.fullyFilled() {
		passive.Status = Filled
	} else {
		passive.Status = PartiallyFilled
	}
	if aggressive.fullyFilled() {
		aggressive.Status = Filled
	} else {
		aggressive.Status = PartiallyFilled
	}

	level.updateAfterPartialFill(passive, priorRemaining)

	var buyID, sellID uint64
	if passive.Side == Buy {
		buyID, sellID = passive.ID, aggressive.ID
	} else {
		buyID, sellID = aggressive.ID, passive.ID
	}

	trade := Trade{BuyID: buyID, SellID: sellID, Price: passive.Price, Quantity: quantity, Timestamp: ob.now()}
	ob.recordTrade(trade)

	ob.notifyTrade(trade)
	ob.notifyOrder(passive.toUpdate())
	ob.notifyOrder(aggressive.toUpdate())

	if passive.fullyFilled() {
		level.remove(passive)
		delete(ob.ordersByID, passive.ID)
		ob.orderPool.release(passive)
		ob.removeLevelIfEmpty(level.Price, passive.Side)
	}
}

func (ob *OrderBook) recordTrade(t Trade) {
	idx := ob.recentHead % maxRecentTrades
	ob.recentPrices[idx] = t.Price
	ob.recentQtys[idx] = t.Quantity
	ob.recentHead++
	if ob.recentCount < maxRecentTrades {
		ob.recentCount++
	}
	ob.cumVolume += t.Quantity
	ob.cumNotional += t.Price * int64(t.Quantity)
}

// CancelOrder removes a resting (or partially resting) order. Returns
// false if id is unknown.
func (ob *OrderBook) CancelOrder(id uint64) (bool, error) {
	if ob.inCallback {
		return false, ErrReentrant
	}
	o, ok := ob.ordersByID[id]
	if !ok {
		return false, nil
	}

	if o.Remaining() > 0 {
		if l, exists := ob.levels(o.Side)[o.Price]; exists {
			l.remove(o)
			ob.removeLevelIfEmpty(o.Price, o.Side)
		}
	}

	o.Status = Cancelled
	ob.notifyOrder(o.toUpdate())
	delete(ob.ordersByID, id)
	ob.orderPool.release(o)
	ob.notifyState()
	return true, nil
}

// ModifyOrder cancels the existing order and submits a replacement with
// the same side, type and owner. The replacement gets a fresh ID and
// therefore loses time priority — this is cancel-and-replace, not a
// priority-preserving in-place quantity edit.
func (ob *OrderBook) ModifyOrder(id uint64, newPrice int64, newQty uint64) (uint64, bool, error) {
	o, ok := ob.ordersByID[id]
	if !ok {
		return 0, false, nil
	}
	side, typ, owner := o.Side, o.Type, o.Owner

	if cancelled, err := ob.CancelOrder(id); err != nil || !cancelled {
		return 0, false, err
	}
	newID, err := ob.addOrderOwned(newPrice, newQty, side, typ, owner)
	if err != nil {
		return 0, false, err
	}
	return newID, true, nil
}

func (ob *OrderBook) String() string {
	bid, okb := ob.BestBid()
	ask, oka := ob.BestAsk()
	return fmt.Sprintf("OrderBook{bid=%v(%v) ask=%v(%v)}", bid, okb, ask, oka)
}
