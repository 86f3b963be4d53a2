package orderbook

import "testing"

func BenchmarkOrderBookAddOrderNoMatch(b *testing.B) {
	ob := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := int64(100 + i%50)
		ob.AddOrder(price, 10, Sell, Limit)
	}
}

func BenchmarkOrderBookAddOrderWithMatch(b *testing.B) {
	ob := New()
	for i := 0; i < 1000; i++ {
		ob.AddOrder(int64(100+i%50), 10, Sell, Limit)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ob.AddOrder(int64(100+i%50), 5, Buy, Limit)
	}
}

func BenchmarkOrderBookCancel(b *testing.B) {
	ob := New()
	ids := make([]uint64, b.N)
	for i := 0; i < b.N; i++ {
		id, _ := ob.AddOrder(int64(100+i%50), 10, Sell, Limit)
		ids[i] = id
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ob.CancelOrder(ids[i])
	}
}

func BenchmarkMarketStateSnapshot(b *testing.B) {
	ob := New()
	for i := 0; i < 200; i++ {
		ob.AddOrder(int64(100-i%50), 10, Buy, Limit)
		ob.AddOrder(int64(200+i%50), 10, Sell, Limit)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ob.MarketState()
	}
}
