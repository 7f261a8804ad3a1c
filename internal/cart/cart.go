package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrStockExceeded   = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item is not in the cart")
)

// Item is one cart line. Quantity stays within [1, StockSnapshot] and
// Subtotal always equals Quantity * UnitPrice.
type Item struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	StockSnapshot int             `json:"stock_snapshot"`
}

// Cart is the in-progress sale of one session. It is not safe for concurrent
// use; Service serialises access per session.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

func stockExceeded(name string, want, have int) error {
	return fmt.Errorf("%w: %s (requested %d, in stock %d)", ErrStockExceeded, name, want, have)
}

// AddItem puts one more unit of p in the cart, bounded by p.Stock.
func (c *Cart) AddItem(p model.Product) error {
	if i := c.index(p.ID); i >= 0 {
		it := &c.items[i]
		if it.Quantity+1 > p.Stock {
			return stockExceeded(it.ProductName, it.Quantity+1, p.Stock)
		}
		it.Quantity++
		it.StockSnapshot = p.Stock
		it.Subtotal = lineSubtotal(it.Quantity, it.UnitPrice)
		return nil
	}
	if p.Stock < 1 {
		return stockExceeded(p.Name, 1, p.Stock)
	}
	c.items = append(c.items, Item{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Quantity:      1,
		UnitPrice:     p.SellPrice,
		Subtotal:      p.SellPrice,
		StockSnapshot: p.Stock,
	})
	return nil
}

// AdjustQuantity moves a line's quantity by delta. A result below 1 is
// rejected rather than removing the line.
func (c *Cart) AdjustQuantity(productID uuid.UUID, delta int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	it := &c.items[i]
	q := it.Quantity + delta
	if q < 1 {
		return ErrInvalidQuantity
	}
	if q > it.StockSnapshot {
		return stockExceeded(it.ProductName, q, it.StockSnapshot)
	}
	it.Quantity = q
	it.Subtotal = lineSubtotal(q, it.UnitPrice)
	return nil
}

func (c *Cart) RemoveItem(productID uuid.UUID) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Total sums the line subtotals on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal)
	}
	return total
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) index(productID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func lineSubtotal(q int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(q)))
}

type cartJSON struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(cartJSON{Items: items, Total: c.Total(), Count: len(items)})
}

// UnmarshalJSON restores a stored cart, dropping lines that no longer satisfy
// the quantity bounds and recomputing every subtotal.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.items = c.items[:0]
	for _, it := range raw.Items {
		if it.Quantity < 1 || it.Quantity > it.StockSnapshot {
			continue
		}
		it.Subtotal = lineSubtotal(it.Quantity, it.UnitPrice)
		c.items = append(c.items, it)
	}
	return nil
}
