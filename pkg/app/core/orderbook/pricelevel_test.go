package orderbook

import "testing"

func newTestOrder(id uint64, qty uint64) *Order {
	return &Order{ID: id, Quantity: qty, Side: Buy, Type: Limit, Status: New}
}

func TestPriceLevelAddPreservesFIFOOrder(t *testing.T) {
	l := &PriceLevel{Price: 100}
	a, b, c := newTestOrder(1, 10), newTestOrder(2, 20), newTestOrder(3, 30)

	l.add(a)
	l.add(b)
	l.add(c)

	if l.OrderCount != 3 {
		t.Fatalf("expected OrderCount=3, got %d", l.OrderCount)
	}
	if l.TotalQuantity != 60 {
		t.Fatalf("expected TotalQuantity=60, got %d", l.TotalQuantity)
	}
	if l.best() != a {
		t.Fatalf("expected head of queue to be the first-added order")
	}
}

func TestPriceLevelRemoveMiddleKeepsNeighborsLinked(t *testing.T) {
	l := &PriceLevel{Price: 100}
	a, b, c := newTestOrder(1, 10), newTestOrder(2, 20), newTestOrder(3, 30)
	l.add(a)
	l.add(b)
	l.add(c)

	l.remove(b)

	if l.OrderCount != 2 {
		t.Fatalf("expected OrderCount=2 after removing middle order, got %d", l.OrderCount)
	}
	if a.next != c || c.prev != a {
		t.Fatalf("removing the middle order did not relink its neighbors")
	}
	if l.TotalQuantity != 40 {
		t.Fatalf("expected TotalQuantity=40 after removal, got %d", l.TotalQuantity)
	}
}

func TestPriceLevelRemoveHeadAndTailUpdatesBounds(t *testing.T) {
	l := &PriceLevel{Price: 100}
	a, b := newTestOrder(1, 10), newTestOrder(2, 20)
	l.add(a)
	l.add(b)

	l.remove(a)
	if l.head != b {
		t.Fatalf("removing head should promote the next order")
	}

	l.remove(b)
	if !l.empty() {
		t.Fatalf("expected level to be empty after removing all orders")
	}
	if l.head != nil || l.tail != nil {
		t.Fatalf("expected head/tail to be nil once the level is empty")
	}
}

func TestPriceLevelUpdateAfterPartialFill(t *testing.T) {
	l := &PriceLevel{Price: 100}
	a := newTestOrder(1, 100)
	l.add(a)

	priorRemaining := a.Remaining()
	a.FilledQuantity = 40
	l.updateAfterPartialFill(a, priorRemaining)

	if l.TotalQuantity != 60 {
		t.Fatalf("expected TotalQuantity=60 after partial fill, got %d", l.TotalQuantity)
	}
}
