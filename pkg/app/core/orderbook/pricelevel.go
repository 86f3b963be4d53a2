package orderbook

// PriceLevel is an intrusive FIFO queue of orders resting at a single
// price: a doubly-linked list with O(1) add, remove and partial-fill
// update. A level
// exists iff its queue is non-empty; OrderBook creates one on the first
// order at a price and frees it back to the pool once OrderCount
// reaches zero.
type PriceLevel struct {
	Price         int64
	TotalQuantity uint64
	OrderCount    int

	head, tail *Order

	poolNext *PriceLevel // free-list link while pooled
}

// add appends order to the tail of the queue, preserving time priority.
func (l *PriceLevel) add(o *Order) {
	if l.tail != nil {
		l.tail.next = o
		o.prev = l.tail
		o.next = nil
		l.tail = o
	} else {
		l.head, l.tail = o, o
		o.prev, o.next = nil, nil
	}
	l.TotalQuantity += o.Remaining()
	l.OrderCount++
}

// remove unlinks order from the queue given only its own prev/next
// pointers — no scan of the queue is needed.
func (l *PriceLevel) remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	l.TotalQuantity -= o.Remaining()
	l.OrderCount--
	o.prev, o.next = nil, nil
}

// updateAfterPartialFill adjusts the level's aggregate quantity after o's
// remaining quantity changed from priorRemaining to its current value.
func (l *PriceLevel) updateAfterPartialFill(o *Order, priorRemaining uint64) {
	l.TotalQuantity = l.TotalQuantity - priorRemaining + o.Remaining()
}

func (l *PriceLevel) empty() bool {
	return l.OrderCount == 0
}

// best returns the head of the queue — the time-priority winner.
func (l *PriceLevel) best() *Order {
	return l.head
}
