// Package market holds the single-instrument trading parameters the
// engine validates incoming orders against: tick and lot alignment,
// and order-size and notional bounds. No margin or funding accounting.
package market

import "fmt"

// Market carries the tick/lot precision and order-size bounds for one
// instrument. Prices are always integer ticks; quantities are always
// integer lots — neither the engine nor this package ever handles
// fractional units.
type Market struct {
	Symbol string

	// TickSize is the minimum price increment, in ticks (always 1 for
	// the engine's own integer price domain; kept as a field so a host
	// can enforce a coarser grid, e.g. TickSize=2 to forbid odd ticks).
	TickSize int64

	// LotSize is the minimum quantity increment, in lots.
	LotSize int64

	MinOrderSize int64
	MaxOrderSize int64

	// MinNotional is the minimum order value (price * quantity) in
	// quote-asset ticks, guarding against dust orders.
	MinNotional int64
}

// New constructs a Market and validates it.
func New(symbol string, tickSize, lotSize, minOrderSize, maxOrderSize, minNotional int64) (*Market, error) {
	m := &Market{
		Symbol:       symbol,
		TickSize:     tickSize,
		LotSize:      lotSize,
		MinOrderSize: minOrderSize,
		MaxOrderSize: maxOrderSize,
		MinNotional:  minNotional,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the market's own parameters for internal sanity,
// independent of any particular order.
func (m *Market) Validate() error {
	if m.Symbol == "" {
		return fmt.Errorf("market: symbol cannot be empty")
	}
	if m.TickSize <= 0 {
		return fmt.Errorf("market: tick size must be positive")
	}
	if m.LotSize <= 0 {
		return fmt.Errorf("market: lot size must be positive")
	}
	if m.MinOrderSize < 0 || m.MaxOrderSize < 0 {
		return fmt.Errorf("market: order size bounds cannot be negative")
	}
	if m.MaxOrderSize > 0 && m.MinOrderSize > m.MaxOrderSize {
		return fmt.Errorf("market: min order size exceeds max order size")
	}
	if m.MinNotional < 0 {
		return fmt.Errorf("market: min notional cannot be negative")
	}
	return nil
}

// ValidateOrder rejects an order that violates tick/lot alignment or the
// market's size bounds, before the engine ever attempts to match it.
func (m *Market) ValidateOrder(price, quantity int64) error {
	if price < 0 {
		return fmt.Errorf("market: price cannot be negative")
	}
	if price != 0 && price%m.TickSize != 0 {
		return fmt.Errorf("market: price %d is not a multiple of tick size %d", price, m.TickSize)
	}
	if quantity <= 0 {
		return fmt.Errorf("market: quantity must be positive")
	}
	if quantity%m.LotSize != 0 {
		return fmt.Errorf("market: quantity %d is not a multiple of lot size %d", quantity, m.LotSize)
	}
	if quantity < m.MinOrderSize {
		return fmt.Errorf("market: quantity %d below minimum order size %d", quantity, m.MinOrderSize)
	}
	if m.MaxOrderSize > 0 && quantity > m.MaxOrderSize {
		return fmt.Errorf("market: quantity %d exceeds maximum order size %d", quantity, m.MaxOrderSize)
	}
	if m.MinNotional > 0 && price > 0 && price*quantity < m.MinNotional {
		return fmt.Errorf("market: notional %d below minimum %d", price*quantity, m.MinNotional)
	}
	return nil
}
