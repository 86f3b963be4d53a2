// Package api exposes the engine's market state and order entry points
// over REST and WebSocket.
package api

// API response and request types for REST endpoints and WebSocket
// messages.

// PriceLevel is a [price, size] pair in a depth ladder.
type PriceLevel struct {
	Price int64  `json:"price"`
	Size  uint64 `json:"size"`
}

// BookSnapshot is the response body of GET /api/v1/book.
type BookSnapshot struct {
	BestBid   int64        `json:"bestBid"`
	BestAsk   int64        `json:"bestAsk"`
	Mid       int64        `json:"mid"`
	Spread    int64        `json:"spread"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp int64        `json:"timestamp"`
}

// StateSnapshot is the response body of GET /api/v1/state.
type StateSnapshot struct {
	BestBid            int64        `json:"bestBid"`
	BestAsk            int64        `json:"bestAsk"`
	Mid                int64        `json:"mid"`
	Spread             int64        `json:"spread"`
	BidDepth           []PriceLevel `json:"bidDepth"`
	AskDepth           []PriceLevel `json:"askDepth"`
	LastTradePrice     int64        `json:"lastTradePrice"`
	VWAP               float64      `json:"vwap"`
	PriceVolatility    float64      `json:"priceVolatility"`
	OrderFlowImbalance float64      `json:"orderFlowImbalance"`
	Timestamp          int64        `json:"timestamp"`
}

// SubmitOrderRequest is the payload for POST /api/v1/orders.
type SubmitOrderRequest struct {
	Side     string `json:"side"`     // "BUY" or "SELL"
	Type     string `json:"type"`     // "LIMIT", "MARKET", "IOC", "FOK"
	Price    int64  `json:"price"`    // ignored for MARKET
	Quantity uint64 `json:"quantity"`
	Owner    string `json:"owner,omitempty"` // hex address, optional identity label
}

// SubmitOrderResponse is the response from order submission.
type SubmitOrderResponse struct {
	OrderID  uint64 `json:"orderId"`
	Status   string `json:"status"`
	Filled   uint64 `json:"filled"`
	Quantity uint64 `json:"quantity"`
}

// CancelOrderRequest is the payload for POST /api/v1/orders/cancel.
type CancelOrderRequest struct {
	OrderID uint64 `json:"orderId"`
}

// CancelOrderResponse is the response from order cancellation.
type CancelOrderResponse struct {
	OrderID   uint64 `json:"orderId"`
	Cancelled bool   `json:"cancelled"`
}

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WSMessage is a generic type-tagged envelope. The hub does not wrap
// events in it: TradeEvent and StateUpdateEvent are sent as they are,
// each with its own type field.
type WSMessage struct {
	Type string      `json:"type"` // "trade" or "state_update"
	Data interface{} `json:"data"`
}

// WSSubscribeRequest is sent by a client to subscribe to channels.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// TradeEvent is broadcast on the "trade" channel for every fill.
type TradeEvent struct {
	Type      string `json:"type"`
	BuyID     uint64 `json:"buyId"`
	SellID    uint64 `json:"sellId"`
	Price     int64  `json:"price"`
	Quantity  uint64 `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

// StateUpdateEvent is broadcast on the "state" channel whenever the
// engine's market state changes.
type StateUpdateEvent struct {
	Type  string        `json:"type"`
	State StateSnapshot `json:"state"`
}
