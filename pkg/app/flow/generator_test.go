package flow

import (
	"testing"

	"github.com/uhyunpark/lobsim/pkg/app/core/orderbook"
)

func TestStepSubmitsRequestedOrderCount(t *testing.T) {
	book := orderbook.New()
	// A crossing order also emits updates for the resting orders it
	// trades against, so count distinct order IDs, not updates.
	seen := make(map[uint64]bool)
	book.RegisterOrderCallback(func(u orderbook.OrderUpdate) { seen[u.ID] = true })

	g := New(book, 10000, WithSeed(42))
	g.Step(25)

	if len(seen) != 25 {
		t.Fatalf("expected updates for 25 distinct orders, got %d", len(seen))
	}
}

func TestStepOrdersRespectMinSizeFloor(t *testing.T) {
	book := orderbook.New()
	g := New(book, 10000, WithSeed(7), WithMinSize(500))

	var minSeen uint64 = 1 << 62
	book.RegisterOrderCallback(func(u orderbook.OrderUpdate) {
		if u.Status == orderbook.Rejected {
			return
		}
		if u.Quantity < minSeen {
			minSeen = u.Quantity
		}
	})
	g.Step(50)

	if minSeen < 500 {
		t.Fatalf("expected every generated order to respect the 500 minimum size, saw %d", minSeen)
	}
}

func TestMicrosecondsIsDeterministicWithFixedSeed(t *testing.T) {
	book1 := orderbook.New()
	g1 := New(book1, 10000, WithSeed(99), WithArrivalRate(5))
	var n1 int
	book1.RegisterOrderCallback(func(orderbook.OrderUpdate) { n1++ })
	g1.Microseconds(10)

	book2 := orderbook.New()
	g2 := New(book2, 10000, WithSeed(99), WithArrivalRate(5))
	var n2 int
	book2.RegisterOrderCallback(func(orderbook.OrderUpdate) { n2++ })
	g2.Microseconds(10)

	if n1 != n2 {
		t.Fatalf("expected identical seeds to produce identical order counts, got %d vs %d", n1, n2)
	}
}

func TestPoissonFallsBackForLargeMeans(t *testing.T) {
	g := New(orderbook.New(), 10000, WithSeed(1))
	n := g.poisson(10000)
	if n < 0 {
		t.Fatalf("poisson sample must be non-negative, got %d", n)
	}
}
