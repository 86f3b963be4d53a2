// Package marketdata declares the upstream market-data shapes a
// seed-liquidity helper can consume. No concrete provider (REST poller,
// websocket relay) is implemented here — external market-data ingestion
// is out of scope; this exists only so a caller can depend on the
// interface.
package marketdata

// Quote is a top-of-book snapshot from an external venue or feed.
type Quote struct {
	Symbol    string
	BidPrice  int64
	AskPrice  int64
	BidSize   uint64
	AskSize   uint64
	Timestamp int64
}

// OHLCV is one bar of aggregated trade history.
type OHLCV struct {
	Symbol    string
	Timestamp int64
	Open      int64
	High      int64
	Low       int64
	Close     int64
	Volume    uint64
}

// Provider is implemented by any external market-data source a
// seed-liquidity helper or observation surface wants to read from. The
// bool return works like a map lookup's ok value — false means "not
// currently available," not an error.
type Provider interface {
	Quote(symbol string) (Quote, bool)
	OHLCV(symbol string, limit int) ([]OHLCV, bool)
	Name() string
}
