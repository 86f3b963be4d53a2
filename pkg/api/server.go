package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

// Server exposes an orderbook.OrderBook over REST and WebSocket. The
// engine itself offers no internal concurrency guarantee (spec §5), so
// Server serializes every mutating request with mu before touching the
// book — the book's own invariants are never relied on to hold across
// concurrent callers.
type Server struct {
	book   *orderbook.OrderBook
	router *mux.Router
	hub    *Hub
	log    *zap.Logger

	mu sync.Mutex
}

// NewServer wraps book, registers the WebSocket broadcast callbacks,
// and builds the route table.
func NewServer(book *orderbook.OrderBook, log *zap.Logger) *Server {
	s := &Server{
		book:   book,
		router: mux.NewRouter(),
		hub:    NewHub(),
		log:    log,
	}

	book.RegisterTradeCallback(s.broadcastTrade)
	book.RegisterStateCallback(s.broadcastState)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/book", s.handleGetBook).Methods("GET")
	v1.HandleFunc("/state", s.handleGetState).Methods("GET")
	v1.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	v1.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the hub's broadcast loop and serves addr. It blocks until
// the HTTP server exits.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	})
	handler := c.Handler(s.router)

	s.log.Info("api server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, handler)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ms := s.book.MarketState()
	s.mu.Unlock()
	respondJSON(w, BookSnapshot{
		BestBid:   ms.BestBid,
		BestAsk:   ms.BestAsk,
		Mid:       ms.Mid,
		Spread:    ms.Spread,
		Bids:      toPriceLevels(ms.BidDepth),
		Asks:      toPriceLevels(ms.AskDepth),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ms := s.book.MarketState()
	s.mu.Unlock()
	respondJSON(w, stateSnapshotFrom(ms))
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid side", err.Error())
		return
	}
	typ, err := parseType(req.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid type", err.Error())
		return
	}

	var owner common.Address
	if req.Owner != "" {
		if !common.IsHexAddress(req.Owner) {
			respondError(w, http.StatusBadRequest, "invalid owner", "owner must be a hex address")
			return
		}
		owner = common.HexToAddress(req.Owner)
	}

	s.mu.Lock()
	id, err := s.book.AddOrderAs(req.Price, req.Quantity, side, typ, owner)
	upd, _ := s.book.GetOrder(id)
	s.mu.Unlock()
	if err != nil {
		respondError(w, http.StatusConflict, "order rejected", err.Error())
		return
	}

	respondJSON(w, SubmitOrderResponse{
		OrderID:  id,
		Status:   upd.Status.String(),
		Filled:   upd.FilledQuantity,
		Quantity: req.Quantity,
	})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	s.mu.Lock()
	ok, err := s.book.CancelOrder(req.OrderID)
	s.mu.Unlock()
	if err != nil {
		respondError(w, http.StatusConflict, "cancel rejected", err.Error())
		return
	}

	respondJSON(w, CancelOrderResponse{OrderID: req.OrderID, Cancelled: ok})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// broadcastTrade and broadcastState are registered on the engine's
// callback lists and push events to every subscribed WebSocket client.
func (s *Server) broadcastTrade(t orderbook.Trade) {
	s.hub.BroadcastToChannel("trade", TradeEvent{
		Type: "trade", BuyID: t.BuyID, SellID: t.SellID,
		Price: t.Price, Quantity: t.Quantity, Timestamp: t.Timestamp,
	})
}

func (s *Server) broadcastState(book *orderbook.OrderBook) {
	s.hub.BroadcastToChannel("state", StateUpdateEvent{
		Type: "state_update", State: stateSnapshotFrom(book.MarketState()),
	})
}

func stateSnapshotFrom(ms orderbook.MarketState) StateSnapshot {
	return StateSnapshot{
		BestBid:            ms.BestBid,
		BestAsk:            ms.BestAsk,
		Mid:                ms.Mid,
		Spread:             ms.Spread,
		BidDepth:           toPriceLevels(ms.BidDepth),
		AskDepth:           toPriceLevels(ms.AskDepth),
		LastTradePrice:     ms.LastTradePrice,
		VWAP:               ms.VWAP,
		PriceVolatility:    ms.PriceVolatility,
		OrderFlowImbalance: ms.OrderFlowImbalance,
		Timestamp:          time.Now().UnixMilli(),
	}
}

func toPriceLevels(views []orderbook.PriceLevelView) []PriceLevel {
	out := make([]PriceLevel, len(views))
	for i, v := range views {
		out[i] = PriceLevel{Price: v.Price, Size: v.Quantity}
	}
	return out
}

func parseSide(s string) (orderbook.Side, error) {
	switch s {
	case "BUY":
		return orderbook.Buy, nil
	case "SELL":
		return orderbook.Sell, nil
	default:
		return 0, errInvalidEnum("side", s)
	}
}

func parseType(s string) (orderbook.Type, error) {
	switch s {
	case "LIMIT":
		return orderbook.Limit, nil
	case "MARKET":
		return orderbook.Market, nil
	case "IOC":
		return orderbook.IOC, nil
	case "FOK":
		return orderbook.FOK, nil
	default:
		return 0, errInvalidEnum("type", s)
	}
}

type enumError struct {
	field, value string
}

func (e enumError) Error() string {
	return "unrecognized " + e.field + ": " + e.value
}

func errInvalidEnum(field, value string) error { return enumError{field, value} }

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: message})
}
