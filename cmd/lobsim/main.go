// Command lobsim wires the matching engine, the market parameters, an
// agent environment fed by synthetic order flow, and the observation
// surface together into a single running process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/uhyunpark/lobsim/params"
	"github.com/uhyunpark/lobsim/pkg/api"
	"github.com/uhyunpark/lobsim/pkg/app/agent"
	"github.com/uhyunpark/lobsim/pkg/app/core/market"
	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
	"github.com/uhyunpark/lobsim/pkg/app/flow"
	"github.com/uhyunpark/lobsim/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	mkt, err := market.New(
		cfg.Market.Symbol,
		cfg.Market.TickSize,
		cfg.Market.LotSize,
		cfg.Market.MinOrderSize,
		cfg.Market.MaxOrderSize,
		cfg.Market.MinNotional,
	)
	if err != nil {
		logger.Fatal("invalid market parameters", zap.Error(err))
	}
	logger.Info("market configured",
		zap.String("symbol", mkt.Symbol),
		zap.Int64("tick_size", mkt.TickSize),
		zap.Int64("lot_size", mkt.LotSize),
	)

	book := orderbook.New(
		orderbook.WithBlockSize(cfg.Engine.PoolBlockSize),
		orderbook.WithMarket(mkt),
	)

	book.RegisterOrderCallback(func(u orderbook.OrderUpdate) {
		logger.Debug("order_update",
			zap.Uint64("id", u.ID),
			zap.String("status", u.Status.String()),
			zap.Uint64("filled", u.FilledQuantity),
		)
	})
	book.RegisterTradeCallback(func(t orderbook.Trade) {
		logger.Info("trade",
			zap.Uint64("buy_id", t.BuyID),
			zap.Uint64("sell_id", t.SellID),
			zap.Int64("price", t.Price),
			zap.Uint64("quantity", t.Quantity),
		)
	})

	env := agent.New(book, cfg.Agent.InitialCash,
		agent.WithInventoryPenalty(cfg.Agent.InventoryPenaltyCoef),
		agent.WithSpreadCaptureReward(cfg.Agent.SpreadCaptureReward),
		agent.WithDefaultQuantity(cfg.Agent.DefaultQuantity),
	)
	_ = env // available for an embedded strategy loop; nothing in this binary steps it (the API serves the book only)

	gen := flow.New(book, cfg.Flow.BasePrice,
		flow.WithVolatility(cfg.Flow.Volatility),
		flow.WithArrivalRate(cfg.Flow.ArrivalRate),
		flow.WithSpreadWidth(cfg.Flow.SpreadWidth),
		flow.WithMinSize(cfg.Flow.MinSize),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(book, logger)
	go func() {
		if err := server.Start(cfg.API.ListenAddr); err != nil {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	clock := util.RealClock{}
	tickMicros := uint64(cfg.Flow.TickInterval.Microseconds())
	logger.Info("flow generator starting",
		zap.Int64("base_price", cfg.Flow.BasePrice),
		zap.Float64("arrival_rate", cfg.Flow.ArrivalRate),
		zap.Duration("tick_interval", cfg.Flow.TickInterval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-clock.After(cfg.Flow.TickInterval):
			gen.Microseconds(tickMicros)
		}
	}
}
