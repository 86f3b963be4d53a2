package orderbook

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Side is the direction of an order.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Type is the order's execution style.
type Type int8

const (
	Limit Type = iota
	Market
	IOC // Immediate-or-Cancel
	FOK // Fill-or-Kill
)

func (t Type) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}

// Status is the lifecycle state of an order.
type Status int8

const (
	New Status = iota
	PartiallyFilled
	Filled
	Cancelled
	Rejected
)

func (s Status) String() string {
	switch s {
	case New:
		return "NEW"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

func (s Status) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Order is a resident or transient book entry. Orders are pool-allocated;
// prev/next link the order into its resident PriceLevel's FIFO queue and
// double as the pool's free-list link while the order is not live.
type Order struct {
	ID             uint64
	Price          int64
	Quantity       uint64
	FilledQuantity uint64
	Side           Side
	Type           Type
	Status         Status
	Timestamp      int64 // ns, assigned at creation, observability only
	Owner          common.Address

	prev, next *Order
}

func (o *Order) Remaining() uint64 {
	return o.Quantity - o.FilledQuantity
}

func (o *Order) fullyFilled() bool {
	return o.FilledQuantity >= o.Quantity
}

// Trade is emitted for every match. BuyID/SellID are resolved by each
// party's side, not by arrival order; the aggressor is not labeled.
type Trade struct {
	BuyID     uint64
	SellID    uint64
	Price     int64
	Quantity  uint64
	Timestamp int64
}

// OrderUpdate is emitted whenever an order's resting state changes.
type OrderUpdate struct {
	ID             uint64
	Price          int64
	Quantity       uint64
	FilledQuantity uint64
	Side           Side
	Type           Type
	Status         Status
	Timestamp      int64
}

func (o *Order) toUpdate() OrderUpdate {
	return OrderUpdate{
		ID:             o.ID,
		Price:          o.Price,
		Quantity:       o.Quantity,
		FilledQuantity: o.FilledQuantity,
		Side:           o.Side,
		Type:           o.Type,
		Status:         o.Status,
		Timestamp:      o.Timestamp,
	}
}

// ErrReentrant is returned by AddOrder/CancelOrder/ModifyOrder when called
// from within a callback invoked synchronously by the engine itself.
var ErrReentrant = errors.New("orderbook: reentrant mutation from callback")
