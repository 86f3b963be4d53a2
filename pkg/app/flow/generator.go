// Package flow generates synthetic order flow against an
// orderbook.OrderBook: a Poisson arrival process driving random limit
// orders around a moving base price.
package flow

import (
	"math"
	"math/rand"

	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

// Generator drives random LIMIT order submissions against a book. It is
// not safe for concurrent use — like the book it drives, exactly one
// goroutine should call Step/Microseconds.
type Generator struct {
	book *orderbook.OrderBook
	rng  *rand.Rand

	basePrice    int64
	volatility   float64 // stddev of the relative price offset
	arrivalRate  float64 // orders per microsecond
	spreadWidth  float64 // relative spread width; orders sit half of it away from basePrice
	minSize      uint64
	sizeScale    float64 // mean order size before the minSize floor
}

// Option configures a new Generator.
type Option func(*Generator)

func WithVolatility(v float64) Option { return func(g *Generator) { g.volatility = v } }
func WithArrivalRate(r float64) Option { return func(g *Generator) { g.arrivalRate = r } }
func WithSpreadWidth(w float64) Option { return func(g *Generator) { g.spreadWidth = w } }
func WithMinSize(n uint64) Option { return func(g *Generator) { g.minSize = n } }
func WithSizeScale(scale float64) Option { return func(g *Generator) { g.sizeScale = scale } }

// WithSeed fixes the generator's RNG seed, for reproducible tests and
// backtests.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a Generator seeding order flow around basePrice.
func New(book *orderbook.OrderBook, basePrice int64, opts ...Option) *Generator {
	g := &Generator{
		book:        book,
		rng:         rand.New(rand.NewSource(1)),
		basePrice:   basePrice,
		volatility:  0.01,
		arrivalRate: 100.0,
		spreadWidth: 0.01,
		minSize:     100,
		sizeScale:   1000,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) SetBasePrice(p int64)     { g.basePrice = p }
func (g *Generator) SetVolatility(v float64)  { g.volatility = v }
func (g *Generator) SetArrivalRate(r float64) { g.arrivalRate = r }
func (g *Generator) SetSpreadWidth(w float64) { g.spreadWidth = w }

// Step submits numOrders random orders: a Bernoulli side, a price drawn
// from a normal distribution around basePrice scaled by volatility and
// offset by half the spread width, and an exponential order size
// floored at minSize.
func (g *Generator) Step(numOrders int) {
	for i := 0; i < numOrders; i++ {
		side := orderbook.Buy
		if g.rng.Float64() >= 0.5 {
			side = orderbook.Sell
		}

		priceOffset := g.rng.NormFloat64() * g.volatility
		price := g.basePrice + int64(priceOffset*float64(g.basePrice))

		halfSpread := int64(g.spreadWidth * float64(g.basePrice) / 2)
		if side == orderbook.Buy {
			price -= halfSpread
		} else {
			price += halfSpread
		}
		if price <= 0 {
			price = 1
		}

		// ExpFloat64 has mean 1, so scaling by sizeScale makes it the
		// mean order size before the minSize floor is applied.
		size := uint64(g.rng.ExpFloat64() * g.sizeScale)
		if size < g.minSize {
			size = g.minSize
		}

		g.book.AddOrder(price, size, side, orderbook.Limit)
	}
}

// Microseconds simulates microseconds of wall-clock order flow: the
// expected order count is arrivalRate*microseconds, and the actual
// count is drawn from a Poisson distribution around that mean.
func (g *Generator) Microseconds(microseconds uint64) {
	expected := g.arrivalRate * float64(microseconds)
	n := g.poisson(expected)
	g.Step(n)
}

// poisson draws a single sample from Poisson(mean) using Knuth's
// multiplication algorithm — adequate for the moderate rates a flow
// generator uses; for very large means it falls back to a normal
// approximation to avoid an unbounded loop.
func (g *Generator) poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean > 500 {
		n := int(math.Round(mean + math.Sqrt(mean)*g.rng.NormFloat64()))
		if n < 0 {
			n = 0
		}
		return n
	}
	L := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		k++
		p *= g.rng.Float64()
		if p <= L {
			return k - 1
		}
	}
}
