// Package params holds runtime configuration for the engine, agent
// environment, and flow generator: an optional .env file loaded via
// godotenv, then environment variables override the defaults.
package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Engine holds the order-pool and matching-engine tunables.
type Engine struct {
	PoolBlockSize int
}

// Market holds the single-instrument trading parameters.
type Market struct {
	Symbol       string
	TickSize     int64
	LotSize      int64
	MinOrderSize int64
	MaxOrderSize int64
	MinNotional  int64
}

// Agent holds the reward-shaping and bookkeeping tunables for the agent
// environment.
type Agent struct {
	InitialCash          float64
	InventoryPenaltyCoef float64
	SpreadCaptureReward  float64
	DefaultQuantity      uint64
}

// Flow holds the synthetic order-flow generator's distribution
// parameters.
type Flow struct {
	BasePrice    int64
	Volatility   float64
	ArrivalRate  float64 // orders per microsecond
	SpreadWidth  float64
	MinSize      uint64
	TickInterval time.Duration
}

// API holds the observation surface's listen address.
type API struct {
	ListenAddr string
}

type Config struct {
	Engine Engine
	Market Market
	Agent  Agent
	Flow   Flow
	API    API
}

func Default() Config {
	return Config{
		Engine: Engine{
			PoolBlockSize: 4096,
		},
		Market: Market{
			Symbol:       "LOB-SIM",
			TickSize:     1,
			LotSize:      1,
			MinOrderSize: 1,
			MaxOrderSize: 0, // 0 = unbounded
			MinNotional:  0,
		},
		Agent: Agent{
			InitialCash:          1_000_000,
			InventoryPenaltyCoef: 0.01,
			SpreadCaptureReward:  1.0,
			DefaultQuantity:      100,
		},
		Flow: Flow{
			BasePrice:    10000,
			Volatility:   0.01,
			ArrivalRate:  100.0,
			SpreadWidth:  0.01,
			MinSize:      100,
			TickInterval: 100 * time.Millisecond,
		},
		API: API{
			ListenAddr: ":8080",
		},
	}
}

// LoadFromEnv loads configuration from an optional .env file and then
// environment variables, in that priority order, over the defaults.
// envPath == "" loads ".env" from the working directory if present.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("ENGINE_POOL_BLOCK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.PoolBlockSize = n
		}
	}

	if v := os.Getenv("MARKET_SYMBOL"); v != "" {
		cfg.Market.Symbol = v
	}
	if v := os.Getenv("MARKET_TICK_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.TickSize = n
		}
	}
	if v := os.Getenv("MARKET_LOT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.LotSize = n
		}
	}
	if v := os.Getenv("MARKET_MIN_ORDER_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.MinOrderSize = n
		}
	}
	if v := os.Getenv("MARKET_MAX_ORDER_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.MaxOrderSize = n
		}
	}
	if v := os.Getenv("MARKET_MIN_NOTIONAL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.MinNotional = n
		}
	}

	if v := os.Getenv("AGENT_INITIAL_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Agent.InitialCash = f
		}
	}
	if v := os.Getenv("AGENT_INVENTORY_PENALTY_COEF"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Agent.InventoryPenaltyCoef = f
		}
	}
	if v := os.Getenv("AGENT_DEFAULT_QUANTITY"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Agent.DefaultQuantity = n
		}
	}

	if v := os.Getenv("FLOW_BASE_PRICE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Flow.BasePrice = n
		}
	}
	if v := os.Getenv("FLOW_VOLATILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Flow.Volatility = f
		}
	}
	if v := os.Getenv("FLOW_ARRIVAL_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Flow.ArrivalRate = f
		}
	}
	if v := os.Getenv("FLOW_TICK_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Flow.TickInterval = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("API_LISTEN_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}

	return cfg
}
